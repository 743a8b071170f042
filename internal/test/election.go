package test

import (
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/protocol"
	"github.com/stretchr/testify/require"
)

const (
	ElectionID = "test-election"
	ContestID  = "question"
	OptionA    = "option-a"
	OptionB    = "option-b"
)

// Manifest returns a one contest election with two options.
func Manifest() election.Manifest {
	return election.Manifest{
		ElectionID: ElectionID,
		Name:       "Test Election",
		Contests: []election.Contest{{
			ID:           ContestID,
			Name:         "Question",
			VotesAllowed: 1,
			Selections: []election.Selection{
				{ID: OptionA, Name: "A"},
				{ID: OptionB, Name: "B"},
			},
		}},
	}
}

// Creation returns a create_election payload for Manifest and the given roster.
func Creation(ids party.IDSlice, quorum int) *election.Creation {
	trustees := make([]election.Trustee, len(ids))
	for i, id := range ids {
		trustees[i] = election.Trustee{Name: id}
	}
	return &election.Creation{
		Description: Manifest(),
		Trustees:    trustees,
		Scheme: election.Scheme{
			Name:       "electionguard",
			Parameters: election.SchemeParameters{Quorum: quorum},
		},
	}
}

// Message encodes content as a message of the given type.
func Message(tb T, typ string, content interface{}) *protocol.Message {
	tb.Helper()
	msg, err := protocol.NewMessage(typ, content)
	require.NoError(tb, err)
	return msg
}

// Vote returns the selections of a ballot for one option of the test contest.
func Vote(option string) map[string]map[string]bool {
	return map[string]map[string]bool{
		ContestID: {
			OptionA: option == OptionA,
			OptionB: option == OptionB,
		},
	}
}

// Ceremony is the outcome of a key ceremony run directly against a
// collaborator, without any state machine.
type Ceremony struct {
	Config *election.Config
	Shares map[party.ID]*election.KeyShare
	Sets   map[party.ID]*election.PublicKeySet
}

// KeyCeremony generates key material for every trustee of creation and
// returns the finalized configuration.
func KeyCeremony(tb T, crypto election.Crypto, creation *election.Creation) *Ceremony {
	tb.Helper()
	config, err := election.NewConfig(creation)
	require.NoError(tb, err)

	c := &Ceremony{
		Shares: make(map[party.ID]*election.KeyShare),
		Sets:   make(map[party.ID]*election.PublicKeySet),
	}
	keys := make([]curve.Point, 0, len(config.Guardians))
	for _, id := range config.Guardians {
		share, set, err := crypto.GenerateKeyShare(id, config.Guardians.SequenceOrder(id), config.NumberOfGuardians, config.Quorum)
		require.NoError(tb, err)
		c.Shares[id] = share
		c.Sets[id] = set
		keys = append(keys, set.Key)
	}
	joint, err := crypto.CombineJointKey(keys)
	require.NoError(tb, err)
	c.Config = config.WithJointKey(joint)
	return c
}
