package election

import (
	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/math/curve"
)

// CiphertextTally is the homomorphic sum of every cast ballot, per selection.
type CiphertextTally struct {
	ID       string
	Contests []CiphertextTallyContest
	// Cast records the ids of the ballots already folded in.
	Cast map[string]bool
}

// CiphertextTallyContest holds the running sums of one contest.
type CiphertextTallyContest struct {
	ContestID  string
	Selections []CiphertextTallySelection
}

// CiphertextTallySelection holds the running sum of one selection.
type CiphertextTallySelection struct {
	SelectionID string
	Ciphertext  elgamal.Ciphertext
}

// NewCiphertextTally returns an empty tally shaped after the manifest.
func NewCiphertextTally(id string, m *Manifest) *CiphertextTally {
	t := &CiphertextTally{
		ID:       id,
		Contests: make([]CiphertextTallyContest, len(m.Contests)),
		Cast:     make(map[string]bool),
	}
	for i, c := range m.Contests {
		t.Contests[i].ContestID = c.ID
		t.Contests[i].Selections = make([]CiphertextTallySelection, len(c.Selections))
		for j, s := range c.Selections {
			t.Contests[i].Selections[j].SelectionID = s.ID
		}
	}
	return t
}

// Selection returns the running sum of a selection.
func (t *CiphertextTally) Selection(contestID, selectionID string) (*CiphertextTallySelection, bool) {
	for i := range t.Contests {
		if t.Contests[i].ContestID != contestID {
			continue
		}
		for j := range t.Contests[i].Selections {
			if t.Contests[i].Selections[j].SelectionID == selectionID {
				return &t.Contests[i].Selections[j], true
			}
		}
	}
	return nil, false
}

// Count returns the number of ballots in the tally.
func (t *CiphertextTally) Count() int {
	return len(t.Cast)
}

// Copy returns a deep copy of t.
func (t *CiphertextTally) Copy() *CiphertextTally {
	out := &CiphertextTally{
		ID:       t.ID,
		Contests: make([]CiphertextTallyContest, len(t.Contests)),
		Cast:     make(map[string]bool, len(t.Cast)),
	}
	for i, c := range t.Contests {
		out.Contests[i] = CiphertextTallyContest{
			ContestID:  c.ContestID,
			Selections: append([]CiphertextTallySelection(nil), c.Selections...),
		}
	}
	for id := range t.Cast {
		out.Cast[id] = true
	}
	return out
}

// PlaintextTally is the published result of an election.
type PlaintextTally struct {
	ID       string
	Contests []PlaintextTallyContest
}

// PlaintextTallyContest holds the decrypted counts of one contest.
type PlaintextTallyContest struct {
	ContestID  string
	Selections []PlaintextTallySelection
}

// PlaintextTallySelection is the decrypted count of one selection, with
// Value = Tally·G kept for verification.
type PlaintextTallySelection struct {
	SelectionID string
	Tally       int
	Value       curve.Point
}

// Count returns the decrypted count of a selection.
func (p *PlaintextTally) Count(contestID, selectionID string) (int, bool) {
	for _, c := range p.Contests {
		if c.ContestID != contestID {
			continue
		}
		for _, s := range c.Selections {
			if s.SelectionID == selectionID {
				return s.Tally, true
			}
		}
	}
	return 0, false
}
