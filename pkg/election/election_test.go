package election_test

import (
	"testing"

	"github.com/luxfi/election/internal/test"
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	ids := test.PartyIDs(3)
	config, err := election.NewConfig(test.Creation(ids, 2))
	require.NoError(t, err)

	assert.Equal(t, ids, config.Guardians)
	assert.Equal(t, 3, config.NumberOfGuardians)
	assert.Equal(t, 2, config.Quorum)
	assert.NotEmpty(t, config.ManifestHash)
	assert.False(t, config.HasJointKey())

	// a single default style covering every contest
	require.Len(t, config.Manifest.BallotStyles, 1)
	assert.Equal(t, []string{test.ContestID}, config.Manifest.BallotStyles[0].ContestIDs)
}

func TestNewConfigRejects(t *testing.T) {
	ids := test.PartyIDs(3)
	cases := map[string]func(c *election.Creation){
		"no election id":      func(c *election.Creation) { c.Description.ElectionID = "" },
		"no contests":         func(c *election.Creation) { c.Description.Contests = nil },
		"single guardian":     func(c *election.Creation) { c.Trustees = c.Trustees[:1] },
		"quorum too large":    func(c *election.Creation) { c.Scheme.Parameters.Quorum = 4 },
		"zero quorum":         func(c *election.Creation) { c.Scheme.Parameters.Quorum = 0 },
		"duplicate guardian":  func(c *election.Creation) { c.Trustees[1] = c.Trustees[0] },
		"empty guardian name": func(c *election.Creation) { c.Trustees[2].Name = "" },
		"duplicate selection": func(c *election.Creation) {
			c.Description.Contests[0].Selections[1].ID = test.OptionA
		},
		"too many votes allowed": func(c *election.Creation) { c.Description.Contests[0].VotesAllowed = 3 },
		"unknown style contest": func(c *election.Creation) {
			c.Description.BallotStyles = []election.BallotStyle{{ID: "s", ContestIDs: []string{"nope"}}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := test.Creation(ids, 2)
			mutate(c)
			_, err := election.NewConfig(c)
			assert.ErrorIs(t, err, election.ErrInvalidElectionDescription)
		})
	}

	_, err := election.NewConfig(nil)
	assert.ErrorIs(t, err, election.ErrInvalidElectionDescription)
}

func TestManifestHash(t *testing.T) {
	a := test.Manifest()
	b := test.Manifest()
	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Contests[0].Selections[0].Name = "changed"
	hb, err = b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestWithJointKey(t *testing.T) {
	config, err := election.NewConfig(test.Creation(test.PartyIDs(2), 2))
	require.NoError(t, err)

	key := curve.ScalarFromUint64(42).ActOnBase()
	final := config.WithJointKey(key)

	assert.False(t, config.HasJointKey())
	require.True(t, final.HasJointKey())
	assert.True(t, final.JointKey.Equal(key))
	assert.True(t, final.SameElection(final.ExtendedBaseHash))

	other := config.WithJointKey(curve.ScalarFromUint64(43).ActOnBase())
	assert.False(t, final.SameElection(other.ExtendedBaseHash))
	assert.False(t, config.SameElection(final.ExtendedBaseHash))
}

func TestContestsFor(t *testing.T) {
	m := test.Manifest()
	m.Contests = append(m.Contests, election.Contest{
		ID:           "second",
		VotesAllowed: 1,
		Selections:   []election.Selection{{ID: "yes"}, {ID: "no"}},
	})
	m.BallotStyles = []election.BallotStyle{
		{ID: "all", ContestIDs: []string{"second", test.ContestID}},
		{ID: "only-second", ContestIDs: []string{"second"}},
	}
	require.NoError(t, m.Validate())

	contests, err := m.ContestsFor("all")
	require.NoError(t, err)
	require.Len(t, contests, 2)
	assert.Equal(t, test.ContestID, contests[0].ID, "manifest order")

	contests, err = m.ContestsFor("only-second")
	require.NoError(t, err)
	require.Len(t, contests, 1)

	_, err = m.ContestsFor("missing")
	assert.ErrorIs(t, err, election.ErrInvalidBallot)
}

func TestTallyCopy(t *testing.T) {
	m := test.Manifest()
	tally := election.NewCiphertextTally("tally", &m)
	assert.Equal(t, 0, tally.Count())

	sel, ok := tally.Selection(test.ContestID, test.OptionA)
	require.True(t, ok)
	assert.True(t, sel.Ciphertext.Pad.IsIdentity())

	cp := tally.Copy()
	sel.Ciphertext.Data = curve.Generator()
	tally.Cast["b1"] = true

	copied, ok := cp.Selection(test.ContestID, test.OptionA)
	require.True(t, ok)
	assert.True(t, copied.Ciphertext.Data.IsIdentity())
	assert.Equal(t, 0, cp.Count())

	_, ok = tally.Selection(test.ContestID, "missing")
	assert.False(t, ok)
}

func TestGuardianIDs(t *testing.T) {
	ids := party.IDSlice{"c", "a", "b"}
	assert.Equal(t, ids, test.Creation(ids, 1).GuardianIDs())
}

func TestTrusteeVerificationCovers(t *testing.T) {
	ids := test.PartyIDs(3)
	verification := func(owner party.ID) election.PartialKeyVerification {
		return election.PartialKeyVerification{OwnerID: owner, DesignatedID: ids[0], VerifierID: ids[0], Verified: true}
	}

	tests := []struct {
		name          string
		verifications []election.PartialKeyVerification
		covers        bool
	}{
		{"all others", []election.PartialKeyVerification{verification(ids[1]), verification(ids[2])}, true},
		{"empty", nil, false},
		{"partial", []election.PartialKeyVerification{verification(ids[1])}, false},
		{"duplicate", []election.PartialKeyVerification{verification(ids[1]), verification(ids[1])}, false},
		{"self", []election.PartialKeyVerification{verification(ids[0]), verification(ids[1])}, false},
		{"stranger", []election.PartialKeyVerification{verification(ids[1]), verification("mallory")}, false},
		{"wrong recipient", []election.PartialKeyVerification{
			verification(ids[1]),
			{OwnerID: ids[2], DesignatedID: ids[1], VerifierID: ids[0], Verified: true},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &election.TrusteeVerification{GuardianID: ids[0], Verifications: tt.verifications}
			assert.Equal(t, tt.covers, ack.Covers(ids))
		})
	}
}
