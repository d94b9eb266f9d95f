package models

import (
	"sort"
	"strings"
)

// SideKind is the tag of a Side
type SideKind int32

const (
	SideSingle SideKind = iota
	SidePair
)

// Side is one slot of a match. A single side is one player or one fixed team, a pair side is two
// individual players playing doubles together. A match never mixes the two.
type Side struct {
	Kind    SideKind `json:"kind"`
	Players []string `json:"players"`
}

// Single creates a side made of one participant
func Single(id string) *Side {
	return &Side{Kind: SideSingle, Players: []string{id}}
}

// Pair creates a doubles side made of two participants
func Pair(a, b string) *Side {
	return &Side{Kind: SidePair, Players: []string{a, b}}
}

// Members returns the participant ids making up the side
func (s *Side) Members() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.Players))
	copy(out, s.Players)
	return out
}

func (s *Side) Contains(id string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.Players {
		if p == id {
			return true
		}
	}
	return false
}

// Key is an order independent identity for the side
func (s *Side) Key() string {
	if s == nil {
		return ""
	}
	ids := s.Members()
	sort.Strings(ids)
	return strings.Join(ids, "+")
}

func (s *Side) Equals(o *Side) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Key() == o.Key()
}

func (s *Side) Clone() *Side {
	if s == nil {
		return nil
	}
	return &Side{Kind: s.Kind, Players: s.Members()}
}

// DisplayName joins the member names, "Alice & Bob" for doubles
func (s *Side) DisplayName(roster Roster) string {
	if s == nil {
		return "TBD"
	}
	names := make([]string, 0, len(s.Players))
	for _, id := range s.Players {
		if p := roster.Get(id); p != nil {
			names = append(names, p.DisplayName())
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, " & ")
}
