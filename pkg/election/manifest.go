package election

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/election/pkg/hash"
)

const manifestDomain = "github.com/luxfi/election manifest"

// Manifest describes what is voted on: contests, their options, and the
// ballot styles that group contests for voters.
type Manifest struct {
	ElectionID   string        `json:"election_id"`
	Name         string        `json:"name,omitempty"`
	Contests     []Contest     `json:"contests"`
	BallotStyles []BallotStyle `json:"ballot_styles,omitempty"`
}

// Contest is a single question.
type Contest struct {
	ID           string      `json:"id"`
	Name         string      `json:"name,omitempty"`
	VotesAllowed int         `json:"votes_allowed,omitempty"`
	Selections   []Selection `json:"selections"`
}

// Selection is one option of a contest. Selection ids are unique across the election.
type Selection struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// BallotStyle lists the contests presented to a group of voters.
type BallotStyle struct {
	ID         string   `json:"id"`
	ContestIDs []string `json:"contest_ids"`
}

// complete fills in the defaults a hand-written manifest may omit:
// one vote per contest and a single style holding every contest.
func (m Manifest) complete() Manifest {
	out := m
	out.Contests = make([]Contest, len(m.Contests))
	for i, c := range m.Contests {
		if c.VotesAllowed == 0 {
			c.VotesAllowed = 1
		}
		c.Selections = append([]Selection(nil), c.Selections...)
		out.Contests[i] = c
	}
	if len(m.BallotStyles) == 0 {
		style := BallotStyle{ID: m.ElectionID + "-style"}
		for _, c := range m.Contests {
			style.ContestIDs = append(style.ContestIDs, c.ID)
		}
		out.BallotStyles = []BallotStyle{style}
	} else {
		out.BallotStyles = make([]BallotStyle, len(m.BallotStyles))
		for i, s := range m.BallotStyles {
			s.ContestIDs = append([]string(nil), s.ContestIDs...)
			out.BallotStyles[i] = s
		}
	}
	return out
}

// Validate checks that the manifest is internally consistent.
func (m *Manifest) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidElectionDescription, fmt.Sprintf(format, args...))
	}
	if m.ElectionID == "" {
		return invalid("missing election id")
	}
	if len(m.Contests) == 0 {
		return invalid("no contests")
	}
	contests := make(map[string]bool, len(m.Contests))
	selections := make(map[string]bool)
	for _, c := range m.Contests {
		if c.ID == "" {
			return invalid("contest without id")
		}
		if contests[c.ID] {
			return invalid("duplicate contest %q", c.ID)
		}
		contests[c.ID] = true
		if len(c.Selections) == 0 {
			return invalid("contest %q has no selections", c.ID)
		}
		if c.VotesAllowed < 1 || c.VotesAllowed > len(c.Selections) {
			return invalid("contest %q allows %d votes for %d selections", c.ID, c.VotesAllowed, len(c.Selections))
		}
		for _, s := range c.Selections {
			if s.ID == "" {
				return invalid("selection without id in contest %q", c.ID)
			}
			if selections[s.ID] {
				return invalid("duplicate selection %q", s.ID)
			}
			selections[s.ID] = true
		}
	}
	if len(m.BallotStyles) == 0 {
		return invalid("no ballot styles")
	}
	styles := make(map[string]bool, len(m.BallotStyles))
	for _, s := range m.BallotStyles {
		if s.ID == "" || styles[s.ID] {
			return invalid("missing or duplicate ballot style id %q", s.ID)
		}
		styles[s.ID] = true
		if len(s.ContestIDs) == 0 {
			return invalid("ballot style %q has no contests", s.ID)
		}
		for _, id := range s.ContestIDs {
			if !contests[id] {
				return invalid("ballot style %q references unknown contest %q", s.ID, id)
			}
		}
	}
	return nil
}

// Contest returns the contest with the given id.
func (m *Manifest) Contest(id string) (*Contest, bool) {
	for i := range m.Contests {
		if m.Contests[i].ID == id {
			return &m.Contests[i], true
		}
	}
	return nil, false
}

// BallotStyle returns the ballot style with the given id.
func (m *Manifest) BallotStyle(id string) (*BallotStyle, bool) {
	for i := range m.BallotStyles {
		if m.BallotStyles[i].ID == id {
			return &m.BallotStyles[i], true
		}
	}
	return nil, false
}

// ContestsFor returns the contests of a ballot style, in manifest order.
func (m *Manifest) ContestsFor(styleID string) ([]Contest, error) {
	style, ok := m.BallotStyle(styleID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown ballot style %q", ErrInvalidBallot, styleID)
	}
	wanted := make(map[string]bool, len(style.ContestIDs))
	for _, id := range style.ContestIDs {
		wanted[id] = true
	}
	out := make([]Contest, 0, len(style.ContestIDs))
	for _, c := range m.Contests {
		if wanted[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// Hash returns a digest of the canonical CBOR encoding of the manifest.
func (m *Manifest) Hash() ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	data, err := em.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("election: encode manifest: %w", err)
	}
	return hash.New(manifestDomain).WriteBytes(data).Sum(), nil
}
