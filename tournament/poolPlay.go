package tournament

import (
	"math"

	"github.com/justinjudd/courtplay/models"
	"github.com/rs/zerolog/log"
)

func checkPoolSettings(settings models.Settings, sides int) error {
	if settings.NumPools < 1 {
		return models.Invalid("numPools", "at least one pool is needed, got %d", settings.NumPools)
	}
	if settings.PoolSize < 2 {
		return models.Invalid("poolSize", "a pool needs room for at least 2 teams, got %d", settings.PoolSize)
	}
	if settings.Courts < 1 {
		return models.Invalid("courts", "at least one court is needed, got %d", settings.Courts)
	}
	if settings.AdvanceCount < 1 || settings.AdvanceCount > settings.PoolSize {
		return models.Invalid("advanceCount", "must be between 1 and the pool size %d, got %d", settings.PoolSize, settings.AdvanceCount)
	}
	if settings.NumPools*settings.AdvanceCount < 2 {
		return models.Invalid("advanceCount", "the bracket needs at least 2 qualifiers, %d pool(s) x %d gives %d", settings.NumPools, settings.AdvanceCount, settings.NumPools*settings.AdvanceCount)
	}
	if sides < 2 {
		return models.Invalid("participants", "pool play needs at least 2 teams, got %d", sides)
	}
	if sides > settings.NumPools*settings.PoolSize {
		return models.Invalid("participants", "%d teams do not fit in %d pool(s) of %d", sides, settings.NumPools, settings.PoolSize)
	}
	return nil
}

// PoolPlay deals the sides into pools, plays a round robin inside every pool and packs the pool
// games into rounds of at most settings.Courts games. The bracket is created once all pools finish.
func PoolPlay(participants models.Roster, kind models.ParticipantKind, settings models.Settings, rng RandomSource) (Schedule, error) {
	sides := buildSides(Shuffled(rng, participants), kind)
	if err := checkPoolSettings(settings, len(sides)); err != nil {
		return Schedule{}, err
	}

	pools := make([][]*models.Side, settings.NumPools)
	for i, s := range sides {
		pools[i%settings.NumPools] = append(pools[i%settings.NumPools], s)
	}

	var pending []models.Match
	for p, pool := range pools {
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				pending = append(pending, models.Match{
					Bracket: models.BracketPool,
					Pool:    p + 1,
					Team1:   pool[i].Clone(),
					Team2:   pool[j].Clone(),
				})
			}
		}
	}

	matches := packPoolRounds(pending, settings.Courts, &idSeq{next: 1})
	log.Debug().
		Int("sides", len(sides)).
		Int("pools", settings.NumPools).
		Int("matches", len(matches)).
		Msg("pool play schedule built")
	return Schedule{Matches: matches, Phase: models.PhasePools, Pools: pools}, nil
}

// packPoolRounds assigns rounds and courts. Every round scans the unscheduled games from the back and
// takes each one whose players are all still free, until the courts are full.
func packPoolRounds(pending []models.Match, courts int, ids *idSeq) []models.Match {
	var out []models.Match
	for round := 1; len(pending) > 0; round++ {
		used := map[string]bool{}
		court := 0
		for i := len(pending) - 1; i >= 0 && court < courts; i-- {
			m := pending[i]
			members := append(m.Team1.Members(), m.Team2.Members()...)
			busy := false
			for _, id := range members {
				if used[id] {
					busy = true
					break
				}
			}
			if busy {
				continue
			}
			for _, id := range members {
				used[id] = true
			}
			court++
			m.ID = ids.take()
			m.Round = round
			m.Court = court
			out = append(out, m)
			pending = append(pending[:i], pending[i+1:]...)
		}
	}
	return out
}

// poolSides lists the sides of every pool by pool number. States without a recorded deal fall back
// to the pool matches, in order of first appearance.
func poolSides(st *models.State) map[int][]*models.Side {
	pools := map[int][]*models.Side{}
	if len(st.Pools) > 0 {
		for i, pool := range st.Pools {
			pools[i+1] = pool
		}
		return pools
	}
	seen := map[string]bool{}
	for i := range st.Matches {
		m := &st.Matches[i]
		if m.Bracket != models.BracketPool {
			continue
		}
		for _, s := range []*models.Side{m.Team1, m.Team2} {
			if s == nil || seen[s.Key()] {
				continue
			}
			seen[s.Key()] = true
			pools[m.Pool] = append(pools[m.Pool], s)
		}
	}
	return pools
}

// AdvanceToBracket ranks every pool, takes the top settings.AdvanceCount sides of each and
// cross-seeds them into a single elimination bracket appended to the match list
func AdvanceToBracket(st models.State) (models.State, error) {
	next := st.Clone()
	if _, err := advanceToBracket(&next); err != nil {
		return st, err
	}
	return next, nil
}

func advanceToBracket(st *models.State) ([]models.Match, error) {
	if st.Format != models.FormatPoolPlay {
		return nil, models.IllegalState("only pool play tournaments advance to a bracket, this is %v", st.Format)
	}
	if st.Phase != models.PhasePools {
		return nil, models.IllegalState("the bracket has already been generated")
	}
	for i := range st.Matches {
		if m := &st.Matches[i]; m.Bracket == models.BracketPool && !m.Completed {
			return nil, models.IllegalState("pool match %d is not completed", m.ID)
		}
	}

	pools := poolSides(st)
	ranked := make([][]*models.Side, st.Settings.NumPools)
	for p := 1; p <= st.Settings.NumPools; p++ {
		ranked[p-1] = rankPool(pools[p], Calculate(st.Participants, st.Matches, InPool(p)), st.Settings.AdvanceCount)
	}

	seeded := crossSeed(ranked)
	bracket, err := buildBracket(seeded, models.BracketMain, &idSeq{next: st.NextMatchID()})
	if err != nil {
		return nil, err
	}
	st.Matches = append(st.Matches, bracket...)
	st.Phase = models.PhaseBracket

	log.Debug().
		Int("qualifiers", len(seeded)).
		Int("byes", ByesNeeded(len(seeded))).
		Msg("pool play advanced to bracket")
	return bracket, nil
}

// rankPool orders a pool's sides by the best standing of any of their members and keeps the top n
func rankPool(sides []*models.Side, table []Standing, n int) []*models.Side {
	place := map[string]int{}
	for _, row := range table {
		place[row.ParticipantID] = row.Rank
	}
	best := func(s *models.Side) int {
		r := math.MaxInt32
		for _, id := range s.Members() {
			if p, ok := place[id]; ok && p < r {
				r = p
			}
		}
		return r
	}

	ordered := append([]*models.Side(nil), sides...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && best(ordered[j]) < best(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	return ordered
}

type qualifier struct {
	side *models.Side
	pool int
	tier int
}

// crossSeed lines up pool qualifiers for the bracket: all pool winners first, then all runners up and
// so on, with every other tier reversed. Sides from the same pool are then kept apart in the first round.
func crossSeed(ranked [][]*models.Side) []*models.Side {
	tiers := 0
	for _, pool := range ranked {
		if len(pool) > tiers {
			tiers = len(pool)
		}
	}

	var seeds []qualifier
	for t := 0; t < tiers; t++ {
		var tier []qualifier
		for p, pool := range ranked {
			if t < len(pool) {
				tier = append(tier, qualifier{pool[t], p, t})
			}
		}
		if t%2 == 1 {
			for i, j := 0, len(tier)-1; i < j; i, j = i+1, j-1 {
				tier[i], tier[j] = tier[j], tier[i]
			}
		}
		seeds = append(seeds, tier...)
	}

	n := len(seeds)
	size := NextPowerOfTwo(n)
	for i := 0; i < size/2; i++ {
		j := size - 1 - i
		if j >= n || seeds[i].pool != seeds[j].pool {
			continue
		}
		for k := range seeds {
			if k == i || k == j || seeds[k].tier != seeds[j].tier || seeds[k].pool == seeds[i].pool {
				continue
			}
			// k's current opponent must not end up facing a pool mate either
			if o := size - 1 - k; o < n && o != i && o != j && seeds[o].pool == seeds[j].pool {
				continue
			}
			seeds[j], seeds[k] = seeds[k], seeds[j]
			break
		}
	}

	out := make([]*models.Side, n)
	for i, q := range seeds {
		out[i] = q.side
	}
	return out
}
