package models

// Participant is a roster entry. Stats are only changed by the match completion processor
type Participant struct {
	ID      string          `json:"id"`
	Kind    ParticipantKind `json:"kind"`
	Name    string          `json:"name"`
	Partner string          `json:"partner,omitempty"`
	Wins    int             `json:"wins"`
	Losses  int             `json:"losses"`
	Points  int             `json:"points"`
}

func (p *Participant) DisplayName() string {
	if p.Kind == KindTeam && p.Partner != "" {
		return p.Name + " / " + p.Partner
	}
	return p.Name
}

// Roster is the ordered participant list of a tournament
type Roster []Participant

// Get returns a pointer into the roster so callers can update stats in place
func (r Roster) Get(id string) *Participant {
	for i := range r {
		if r[i].ID == id {
			return &r[i]
		}
	}
	return nil
}

func (r Roster) IDs() []string {
	ids := make([]string, len(r))
	for i, p := range r {
		ids[i] = p.ID
	}
	return ids
}

// Reset clears every stat, used when a schedule is regenerated
func (r Roster) Reset() {
	for i := range r {
		r[i].Wins, r[i].Losses, r[i].Points = 0, 0, 0
	}
}
