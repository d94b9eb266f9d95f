// Command simulate plays a tournament with random scores and prints the final standings
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/justinjudd/courtplay"
	"github.com/justinjudd/courtplay/models"
	"github.com/justinjudd/courtplay/tournament"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		format   = flag.String("format", "single-elimination", "round-robin, single-elimination, double-elimination, pool-play or ladder")
		kind     = flag.String("kind", "team", "individual or team")
		players  = flag.Int("n", 8, "number of participants")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		sessions = flag.Int("sessions", 3, "ladder sessions to play")
		verbose  = flag.Bool("v", false, "debug logging")
		settings models.Settings
	)
	flag.IntVar(&settings.Rounds, "rounds", 3, "round robin rounds")
	flag.IntVar(&settings.Courts, "courts", 2, "courts available")
	flag.IntVar(&settings.NumPools, "pools", 2, "number of pools")
	flag.IntVar(&settings.PoolSize, "pool-size", 4, "sides per pool")
	flag.IntVar(&settings.AdvanceCount, "advance", 2, "sides advancing from each pool")
	flag.IntVar(&settings.PointsToWin, "points", 11, "points to win a game: 11, 15 or 21")
	flag.BoolVar(&settings.WinByTwo, "win-by-two", true, "games must be won by two")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var f models.Format
	if err := f.UnmarshalText([]byte(*format)); err != nil {
		log.Fatal().Err(err).Msg("bad -format")
	}
	var k models.ParticipantKind
	if err := k.UnmarshalText([]byte(*kind)); err != nil {
		log.Fatal().Err(err).Msg("bad -kind")
	}

	roster := make(models.Roster, *players)
	for i := range roster {
		roster[i] = models.Participant{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Player %d", i+1)}
	}

	rng := tournament.NewRandomSource(*seed)
	st, warnings, err := tournament.NewState(f, k, roster, settings, rng)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to generate schedule")
	}
	for _, w := range warnings {
		log.Warn().Str("kind", w.Kind).Int("count", w.Count).Msg(w.Message)
	}

	ctx := context.Background()
	if f == models.FormatLadder {
		var moves []tournament.Movement
		st, moves, err = courtplay.PlayLadder(ctx, st, *sessions, rng)
		for _, mv := range moves {
			for _, c := range mv.Courts {
				log.Info().Int("session", mv.Session).Int("court", c.Court).Str("up", c.MovesUp).Str("down", c.MovesDown).Msg("movement")
			}
		}
	} else {
		st, err = courtplay.PlayOut(ctx, st, rng)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}

	if st.Champion != nil {
		fmt.Printf("Champion: %s\n\n", st.Champion.DisplayName(st.Participants))
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tName\tW\tL\tPts\t+/-\tWin %")
	for _, r := range tournament.Calculate(st.Participants, st.Matches) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%+d\t%.0f%%\n", r.Rank, r.Name, r.Wins, r.Losses, r.Points, r.PointDiff, r.WinPercentage*100)
	}
	tw.Flush()
	fmt.Printf("\nseed %d, %d matches\n", *seed, len(st.Matches))
}
