package tournament

import (
	"fmt"

	"github.com/justinjudd/courtplay/models"
	"github.com/rs/zerolog/log"
)

// EventKind names something that happened while a score was processed
type EventKind string

const (
	EventMatchCompleted     EventKind = "match-completed"
	EventMatchReopened      EventKind = "match-reopened"
	EventSideAdvanced       EventKind = "side-advanced"
	EventSideDropped        EventKind = "side-dropped"
	EventSideRetracted      EventKind = "side-retracted"
	EventByeSettled         EventKind = "bye-settled"
	EventResetActivated     EventKind = "reset-activated"
	EventResetCleared       EventKind = "reset-cleared"
	EventBracketGenerated   EventKind = "bracket-generated"
	EventSessionFinished    EventKind = "session-finished"
	EventSessionReopened    EventKind = "session-reopened"
	EventTournamentFinished EventKind = "tournament-finished"
	EventChampionCleared    EventKind = "champion-cleared"
)

type Event struct {
	Kind    EventKind    `json:"kind"`
	MatchID int          `json:"matchId,omitempty"`
	Side    *models.Side `json:"side,omitempty"`
}

// Update is the result of a score edit: the new state, whether the edited match is now complete,
// and everything the edit caused downstream
type Update struct {
	State     models.State `json:"state"`
	Completed bool         `json:"completed"`
	Events    []Event      `json:"events,omitempty"`
}

// ScoreField selects which side's score an incremental edit changes
type ScoreField int

const (
	FieldScore1 ScoreField = 1
	FieldScore2 ScoreField = 2
)

// CompleteMatch records a full score line. A score that does not finish the game under the
// tournament's scoring rules is stored but leaves the match open.
func CompleteMatch(st models.State, matchID, score1, score2 int) (Update, error) {
	if score1 < 0 || score2 < 0 {
		return Update{}, models.Invalid("score", "scores cannot be negative, got %d-%d", score1, score2)
	}
	return edit(st, matchID, func(m *models.Match) {
		m.Score1 = models.IntPtr(score1)
		m.Score2 = models.IntPtr(score2)
	})
}

// HandleScoreChange changes one score field, as a scorekeeper typing into a score box would. A nil
// value clears the field. The entered value is clamped against the opposing score, or against zero
// while the opposing field is empty, and the match completes on its own once the score line is a
// finished game.
func HandleScoreChange(st models.State, matchID int, field ScoreField, value *int) (Update, error) {
	if field != FieldScore1 && field != FieldScore2 {
		return Update{}, models.Invalid("field", "unknown score field %d", field)
	}
	return edit(st, matchID, func(m *models.Match) {
		own, other := &m.Score1, m.Score2
		if field == FieldScore2 {
			own, other = &m.Score2, m.Score1
		}
		if value == nil {
			*own = nil
			return
		}
		opp := 0
		if other != nil {
			opp = *other
		}
		*own = models.IntPtr(CapScore(*value, opp, st.Settings))
	})
}

// Playable lists the matches that can be scored right now
func Playable(st models.State) []models.Match {
	p := &processor{st: &st}
	var out []models.Match
	for i := range st.Matches {
		m := &st.Matches[i]
		if m.Completed || !models.IsPlayable(m) || p.editable(m) != nil {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}

func edit(st models.State, matchID int, change func(*models.Match)) (Update, error) {
	next := st.Clone()
	p := &processor{st: &next, d: newDraw(next.Matches)}
	m := p.d.byMatchID(matchID)
	if m == nil {
		return Update{}, fmt.Errorf("%w: match %d", models.ErrNotFound, matchID)
	}
	if err := p.editable(m); err != nil {
		return Update{}, err
	}

	before := m.Clone()
	change(m)
	if sameScore(before.Score1, m.Score1) && sameScore(before.Score2, m.Score2) {
		return Update{State: next, Completed: m.Completed}, nil
	}
	if err := p.apply(m, &before); err != nil {
		return Update{}, err
	}

	// the match list may have grown, look the match up again
	done := next.Match(matchID).Completed
	log.Debug().Int("match", matchID).Bool("completed", done).Int("events", len(p.events)).Msg("score processed")
	return Update{State: next, Completed: done, Events: p.events}, nil
}

func sameScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type processor struct {
	st     *models.State
	d      *draw
	events []Event
}

func (p *processor) emit(kind EventKind, m *models.Match, side *models.Side) {
	e := Event{Kind: kind, Side: side.Clone()}
	if m != nil {
		e.MatchID = m.ID
	}
	p.events = append(p.events, e)
}

func locked(m *models.Match, why string) error {
	return fmt.Errorf("%w: match %d %s", models.ErrMatchLocked, m.ID, why)
}

func (p *processor) editable(m *models.Match) error {
	switch {
	case m.IsBye:
		return models.IllegalState("match %d is a bye", m.ID)
	case !m.Ready():
		return models.IllegalState("match %d is still waiting for its sides", m.ID)
	case m.Bracket == models.BracketPool && p.st.Phase != models.PhasePools:
		return locked(m, "belongs to finished pool play")
	case m.Bracket == models.BracketLadder && m.Session != p.st.Session:
		return locked(m, "belongs to an earlier session")
	}
	return nil
}

func (p *processor) apply(m *models.Match, before *models.Match) error {
	wasComplete := before.Completed
	nowComplete := m.Score1 != nil && m.Score2 != nil && IsGameComplete(*m.Score1, *m.Score2, p.st.Settings)

	if wasComplete {
		p.credit(before, -1)
	}
	if nowComplete {
		winner := m.Team1
		if *m.Score2 > *m.Score1 {
			winner = m.Team2
		}
		m.Completed = true
		m.Winner = winner.Clone()
		p.credit(m, 1)
		p.emit(EventMatchCompleted, m, m.Winner)
	} else {
		m.Completed = false
		m.Winner = nil
		if wasComplete {
			p.emit(EventMatchReopened, m, nil)
		}
	}

	var err error
	switch {
	case nowComplete && !wasComplete:
		err = p.advance(m)
	case nowComplete && !before.Winner.Equals(m.Winner):
		err = p.correct(m, before)
	case !nowComplete && wasComplete:
		err = p.retract(m, before)
	}
	if err != nil {
		return err
	}
	return p.updatePhase(m.Bracket)
}

// credit adds (sign 1) or takes back (sign -1) a result from every member of both sides
func (p *processor) credit(m *models.Match, sign int) {
	if m.Winner == nil || m.Score1 == nil || m.Score2 == nil {
		return
	}
	loser := m.Team1
	if m.Winner.Equals(m.Team1) {
		loser = m.Team2
	}
	high, low := max(*m.Score1, *m.Score2), min(*m.Score1, *m.Score2)
	for _, id := range m.Winner.Members() {
		if pt := p.st.Participants.Get(id); pt != nil {
			pt.Wins = max(0, pt.Wins+sign)
			pt.Points = max(0, pt.Points+sign*high)
		}
	}
	for _, id := range loser.Members() {
		if pt := p.st.Participants.Get(id); pt != nil {
			pt.Losses = max(0, pt.Losses+sign)
			pt.Points = max(0, pt.Points+sign*low)
		}
	}
}

// advance moves the sides of a freshly completed match on through the draw
func (p *processor) advance(m *models.Match) error {
	winner, loser := m.Winner, m.Loser()
	switch m.Bracket {
	case models.BracketMain:
		next := p.d.advanceTarget(m)
		if next == nil {
			p.crown(winner)
			return nil
		}
		return p.send(next, winner, false, EventSideAdvanced)
	case models.BracketWinners:
		if err := p.send(p.d.advanceTarget(m), winner, false, EventSideAdvanced); err != nil {
			return err
		}
		if err := p.send(p.d.dropTarget(m), loser, true, EventSideDropped); err != nil {
			return err
		}
		return p.settle()
	case models.BracketLosers:
		if err := p.send(p.d.advanceTarget(m), winner, true, EventSideAdvanced); err != nil {
			return err
		}
		return p.settle()
	case models.BracketGrandFinal:
		if winner.Equals(m.Team2) {
			return p.activateReset(m)
		}
		p.crown(winner)
	case models.BracketReset:
		p.crown(winner)
	}
	return nil
}

func (p *processor) send(target *models.Match, side *models.Side, losersSide bool, kind EventKind) error {
	if target == nil {
		return models.IllegalState("no match to move %s into", side.Key())
	}
	if err := p.d.place(target, side, losersSide); err != nil {
		return err
	}
	p.emit(kind, target, side)
	return nil
}

func (p *processor) settle() error {
	settled, err := p.d.settleLosersByes()
	for _, m := range settled {
		p.emit(EventByeSettled, m, m.Winner)
	}
	return err
}

func (p *processor) activateReset(final *models.Match) error {
	reset := p.d.only(models.BracketReset)
	if reset == nil {
		return models.IllegalState("double elimination draw has no reset match")
	}
	reset.Team1 = final.Team1.Clone()
	reset.Team2 = final.Team2.Clone()
	p.emit(EventResetActivated, reset, nil)
	return nil
}

func (p *processor) crown(side *models.Side) {
	p.st.Champion = side.Clone()
	p.emit(EventTournamentFinished, nil, side)
}

func (p *processor) uncrown() {
	if p.st.Champion == nil {
		return
	}
	p.st.Champion = nil
	p.emit(EventChampionCleared, nil, nil)
}

// correct handles a completed match whose winner changed: the old winner and loser are swapped for
// the new ones wherever they had already been moved to
func (p *processor) correct(m *models.Match, before *models.Match) error {
	oldWinner, oldLoser := before.Winner, before.Loser()
	newWinner, newLoser := m.Winner, m.Loser()
	switch m.Bracket {
	case models.BracketMain:
		next := p.d.advanceTarget(m)
		if next == nil {
			p.crown(newWinner)
			return nil
		}
		return p.replace(next, oldWinner, newWinner)
	case models.BracketWinners:
		if err := p.replace(p.d.advanceTarget(m), oldWinner, newWinner); err != nil {
			return err
		}
		return p.replace(p.d.dropTarget(m), oldLoser, newLoser)
	case models.BracketLosers:
		return p.replace(p.d.advanceTarget(m), oldWinner, newWinner)
	case models.BracketGrandFinal:
		if newWinner.Equals(m.Team2) {
			p.uncrown()
			return p.activateReset(m)
		}
		if err := p.clearReset(); err != nil {
			return err
		}
		p.crown(newWinner)
	case models.BracketReset:
		p.crown(newWinner)
	}
	return nil
}

// retract takes back everything a match that is no longer complete had sent on
func (p *processor) retract(m *models.Match, before *models.Match) error {
	oldWinner, oldLoser := before.Winner, before.Loser()
	switch m.Bracket {
	case models.BracketMain:
		next := p.d.advanceTarget(m)
		if next == nil {
			p.uncrown()
			return nil
		}
		return p.remove(next, oldWinner)
	case models.BracketWinners:
		if err := p.remove(p.d.advanceTarget(m), oldWinner); err != nil {
			return err
		}
		return p.remove(p.d.dropTarget(m), oldLoser)
	case models.BracketLosers:
		return p.remove(p.d.advanceTarget(m), oldWinner)
	case models.BracketGrandFinal:
		if err := p.clearReset(); err != nil {
			return err
		}
		p.uncrown()
	case models.BracketReset:
		p.uncrown()
	}
	return nil
}

func (p *processor) clearReset() error {
	reset := p.d.only(models.BracketReset)
	if reset == nil || (reset.Team1 == nil && reset.Team2 == nil) {
		return nil
	}
	if reset.Completed {
		return locked(reset, "already has a result")
	}
	reset.Team1, reset.Team2 = nil, nil
	reset.Score1, reset.Score2 = nil, nil
	p.emit(EventResetCleared, reset, nil)
	return nil
}

func slotOf(m *models.Match, side *models.Side) **models.Side {
	if side == nil {
		return nil
	}
	switch {
	case m.Team1.Equals(side):
		return &m.Team1
	case m.Team2.Equals(side):
		return &m.Team2
	}
	return nil
}

// replace swaps old for side in target. A walkover is rewritten and followed, a played match is locked.
func (p *processor) replace(target *models.Match, old, side *models.Side) error {
	if target == nil {
		return nil
	}
	if target.Completed && !target.IsBye {
		return locked(target, "already has a result")
	}
	s := slotOf(target, old)
	if s == nil {
		return models.IllegalState("match %d does not hold %s", target.ID, old.Key())
	}
	*s = side.Clone()
	p.emit(EventSideAdvanced, target, side)
	if !target.IsBye {
		return nil
	}
	target.Winner = side.Clone()
	return p.replace(p.d.advanceTarget(target), old, side)
}

// remove takes old out of target. A walkover that loses its only side is reopened and followed.
func (p *processor) remove(target *models.Match, old *models.Side) error {
	if target == nil {
		return nil
	}
	if target.Completed && !target.IsBye {
		return locked(target, "already has a result")
	}
	s := slotOf(target, old)
	if s == nil {
		return models.IllegalState("match %d does not hold %s", target.ID, old.Key())
	}
	*s = nil
	p.emit(EventSideRetracted, target, old)
	if !target.IsBye {
		return nil
	}
	target.IsBye = false
	target.Completed = false
	target.Winner = nil
	return p.remove(p.d.advanceTarget(target), old)
}

// updatePhase moves pool play on to its bracket and ladder sessions to their results once every
// match of the phase is complete
func (p *processor) updatePhase(bracket models.Bracket) error {
	switch {
	case bracket == models.BracketPool && p.st.Phase == models.PhasePools:
		for i := range p.st.Matches {
			if m := &p.st.Matches[i]; m.Bracket == models.BracketPool && !m.Completed {
				return nil
			}
		}
		generated, err := advanceToBracket(p.st)
		if err != nil {
			return err
		}
		p.d = newDraw(p.st.Matches)
		if len(generated) > 0 {
			p.emit(EventBracketGenerated, &generated[0], nil)
		}
	case bracket == models.BracketLadder:
		done := true
		for i := range p.st.Matches {
			if m := &p.st.Matches[i]; m.Bracket == models.BracketLadder && m.Session == p.st.Session && !m.Completed {
				done = false
				break
			}
		}
		switch {
		case done && p.st.Phase == models.PhasePlaying:
			p.st.Phase = models.PhaseSessionResults
			p.emit(EventSessionFinished, nil, nil)
		case !done && p.st.Phase == models.PhaseSessionResults:
			p.st.Phase = models.PhasePlaying
			p.emit(EventSessionReopened, nil, nil)
		}
	}
	return nil
}
