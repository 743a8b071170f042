package electionguard_test

import (
	"testing"

	"github.com/luxfi/election/internal/test"
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/electionguard"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ballot(id, option string) *election.PlaintextBallot {
	b := &election.PlaintextBallot{
		BallotID: id,
		StyleID:  test.ElectionID + "-style",
		Contests: []election.PlaintextContest{{ContestID: test.ContestID}},
	}
	for _, sel := range []string{test.OptionA, test.OptionB} {
		vote := 0
		if sel == option {
			vote = 1
		}
		b.Contests[0].Selections = append(b.Contests[0].Selections, election.PlaintextSelection{SelectionID: sel, Vote: vote})
	}
	return b
}

func decrypt(t *testing.T, suite *electionguard.Suite, c *test.Ceremony, tally *election.CiphertextTally) map[string]int {
	t.Helper()
	out := make(map[string]int)
	for _, contest := range tally.Contests {
		for i := range contest.Selections {
			sel := &contest.Selections[i]
			shares := make(map[party.ID]election.GuardianShare)
			for id, share := range c.Shares {
				s, err := suite.ComputeDecryptionShare(share, sel, c.Config)
				require.NoError(t, err)
				shares[id] = election.GuardianShare{PublicKey: c.Sets[id].Key, Share: *s}
			}
			plain, err := suite.CombineDecryptionShares(shares, sel, c.Config.ExtendedBaseHash)
			require.NoError(t, err)
			assert.True(t, curve.ScalarFromUint64(uint64(plain.Tally)).ActOnBase().Equal(plain.Value))
			out[sel.SelectionID] = plain.Tally
		}
	}
	return out
}

func TestKeyCeremony(t *testing.T) {
	suite := electionguard.New()
	ids := test.PartyIDs(3)
	c := test.KeyCeremony(t, suite, test.Creation(ids, 2))

	for _, id := range ids {
		set := c.Sets[id]
		require.NoError(t, suite.VerifyPublicKeySet(set))
		assert.Len(t, set.Commitments, 2)
		assert.True(t, c.Shares[id].PublicKey().Equal(set.Key))
	}

	tampered := *c.Sets[ids[0]]
	tampered.OwnerID = ids[1]
	assert.ErrorIs(t, suite.VerifyPublicKeySet(&tampered), election.ErrCryptographicOperation)

	tampered = *c.Sets[ids[0]]
	tampered.Key = c.Sets[ids[1]].Key
	assert.ErrorIs(t, suite.VerifyPublicKeySet(&tampered), election.ErrCryptographicOperation)

	_, _, err := suite.GenerateKeyShare("x", 4, 3, 2)
	assert.ErrorIs(t, err, election.ErrCryptographicOperation)
}

func TestPartialKeyBackups(t *testing.T) {
	suite := electionguard.New()
	ids := test.PartyIDs(3)
	c := test.KeyCeremony(t, suite, test.Creation(ids, 2))

	for _, owner := range ids {
		for _, target := range ids.Remove(owner) {
			backup, err := suite.SharePartialKeyBackup(c.Shares[owner], c.Sets[target])
			require.NoError(t, err)
			assert.Equal(t, target, backup.DesignatedID)

			v, err := suite.VerifyPartialKeyBackup(c.Shares[target], backup, c.Sets[owner])
			require.NoError(t, err)
			assert.True(t, v.Verified, "%s -> %s", owner, target)
			assert.Equal(t, target, v.VerifierID)
		}
	}

	// a backup checked against the wrong sender commitments fails verification
	a, b, other := ids[0], ids[1], ids[2]
	backup, err := suite.SharePartialKeyBackup(c.Shares[a], c.Sets[b])
	require.NoError(t, err)
	wrongSender := *c.Sets[other]
	wrongSender.OwnerID = a
	v, err := suite.VerifyPartialKeyBackup(c.Shares[b], backup, &wrongSender)
	require.NoError(t, err)
	assert.False(t, v.Verified)

	// a backup addressed to someone else cannot be opened
	_, err = suite.VerifyPartialKeyBackup(c.Shares[other], backup, c.Sets[a])
	assert.ErrorIs(t, err, election.ErrCryptographicOperation)

	backup.Coordinate.Data[0] ^= 1
	_, err = suite.VerifyPartialKeyBackup(c.Shares[b], backup, c.Sets[a])
	assert.ErrorIs(t, err, election.ErrCryptographicOperation)
}

func TestEncryptValidate(t *testing.T) {
	suite := electionguard.New()
	c := test.KeyCeremony(t, suite, test.Creation(test.PartyIDs(2), 2))

	encrypted, err := suite.EncryptBallot(ballot("b1", test.OptionA), c.Config, false)
	require.NoError(t, err)
	require.NoError(t, suite.ValidateBallot(encrypted, c.Config))

	// a blank ballot is valid
	blank, err := suite.EncryptBallot(ballot("b2", ""), c.Config, false)
	require.NoError(t, err)
	require.NoError(t, suite.ValidateBallot(blank, c.Config))

	// swapped ciphertexts break the proofs
	swapped := *encrypted
	swapped.Contests = []election.CiphertextContest{encrypted.Contests[0]}
	sels := append([]election.CiphertextSelection(nil), encrypted.Contests[0].Selections...)
	sels[0].Ciphertext, sels[1].Ciphertext = sels[1].Ciphertext, sels[0].Ciphertext
	swapped.Contests[0].Selections = sels
	assert.ErrorIs(t, suite.ValidateBallot(&swapped, c.Config), election.ErrInvalidBallot)

	// a ballot for another election is rejected
	other := test.KeyCeremony(t, suite, test.Creation(test.PartyIDs(2), 2))
	assert.ErrorIs(t, suite.ValidateBallot(encrypted, other.Config), election.ErrInvalidBallot)
}

func TestEncryptRejects(t *testing.T) {
	suite := electionguard.New()
	c := test.KeyCeremony(t, suite, test.Creation(test.PartyIDs(2), 2))

	config, err := election.NewConfig(test.Creation(test.PartyIDs(2), 2))
	require.NoError(t, err)
	_, err = suite.EncryptBallot(ballot("b", test.OptionA), config, false)
	assert.ErrorIs(t, err, election.ErrMissingJointKey)

	overVote := ballot("b", test.OptionA)
	overVote.Contests[0].Selections[1].Vote = 1
	_, err = suite.EncryptBallot(overVote, c.Config, false)
	assert.ErrorIs(t, err, election.ErrInvalidBallot)

	badVote := ballot("b", test.OptionA)
	badVote.Contests[0].Selections[0].Vote = 2
	_, err = suite.EncryptBallot(badVote, c.Config, false)
	assert.ErrorIs(t, err, election.ErrInvalidBallot)

	unknown := ballot("b", test.OptionA)
	unknown.Contests[0].Selections[0].SelectionID = "option-z"
	_, err = suite.EncryptBallot(unknown, c.Config, false)
	assert.ErrorIs(t, err, election.ErrInvalidBallot)

	style := ballot("b", test.OptionA)
	style.StyleID = "missing"
	_, err = suite.EncryptBallot(style, c.Config, false)
	assert.ErrorIs(t, err, election.ErrInvalidBallot)
}

func TestDeterministicEncryption(t *testing.T) {
	suite := electionguard.New()
	c := test.KeyCeremony(t, suite, test.Creation(test.PartyIDs(2), 2))

	a, err := suite.EncryptBallot(ballot("b1", test.OptionB), c.Config, true)
	require.NoError(t, err)
	b, err := suite.EncryptBallot(ballot("b1", test.OptionB), c.Config, true)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	d, err := suite.EncryptBallot(ballot("b2", test.OptionB), c.Config, true)
	require.NoError(t, err)
	assert.False(t, a.Contests[0].Selections[0].Ciphertext.Equal(d.Contests[0].Selections[0].Ciphertext))
}

func TestTallyRoundTrip(t *testing.T) {
	suite := electionguard.New()
	c := test.KeyCeremony(t, suite, test.Creation(test.PartyIDs(3), 3))
	tally := election.NewCiphertextTally("tally", &c.Config.Manifest)

	votes := []string{test.OptionA, test.OptionB, test.OptionA, "", test.OptionA}
	for i, v := range votes {
		encrypted, err := suite.EncryptBallot(ballot(string(rune('a'+i)), v), c.Config, false)
		require.NoError(t, err)
		require.NoError(t, suite.AccumulateTally(encrypted, tally))
		// folding the same ballot twice has no effect
		require.NoError(t, suite.AccumulateTally(encrypted, tally))
	}
	assert.Equal(t, len(votes), tally.Count())

	counts := decrypt(t, suite, c, tally)
	assert.Equal(t, map[string]int{test.OptionA: 3, test.OptionB: 1}, counts)
}

func TestAccumulateRejectsUnknownSelection(t *testing.T) {
	suite := electionguard.New()
	c := test.KeyCeremony(t, suite, test.Creation(test.PartyIDs(2), 2))
	tally := election.NewCiphertextTally("tally", &c.Config.Manifest)
	before := tally.Copy()

	encrypted, err := suite.EncryptBallot(ballot("b1", test.OptionA), c.Config, false)
	require.NoError(t, err)
	encrypted.Contests[0].Selections[1].SelectionID = "option-z"

	assert.ErrorIs(t, suite.AccumulateTally(encrypted, tally), election.ErrInvalidBallot)
	assert.Equal(t, before, tally)
}

func TestCombineRejectsBadShare(t *testing.T) {
	suite := electionguard.New()
	ids := test.PartyIDs(2)
	c := test.KeyCeremony(t, suite, test.Creation(ids, 2))
	tally := election.NewCiphertextTally("tally", &c.Config.Manifest)
	encrypted, err := suite.EncryptBallot(ballot("b1", test.OptionA), c.Config, false)
	require.NoError(t, err)
	require.NoError(t, suite.AccumulateTally(encrypted, tally))

	sel, _ := tally.Selection(test.ContestID, test.OptionA)
	shares := make(map[party.ID]election.GuardianShare)
	for _, id := range ids {
		s, err := suite.ComputeDecryptionShare(c.Shares[id], sel, c.Config)
		require.NoError(t, err)
		shares[id] = election.GuardianShare{PublicKey: c.Sets[id].Key, Share: *s}
	}
	bad := shares[ids[0]]
	bad.Share.Share = bad.Share.Share.Add(curve.Generator())
	shares[ids[0]] = bad

	_, err = suite.CombineDecryptionShares(shares, sel, c.Config.ExtendedBaseHash)
	assert.ErrorIs(t, err, election.ErrCryptographicOperation)
}

func TestDiscreteLogBound(t *testing.T) {
	suite := &electionguard.Suite{MaxTally: 1}
	c := test.KeyCeremony(t, suite, test.Creation(test.PartyIDs(2), 2))
	tally := election.NewCiphertextTally("tally", &c.Config.Manifest)
	for _, id := range []string{"b1", "b2"} {
		encrypted, err := suite.EncryptBallot(ballot(id, test.OptionA), c.Config, false)
		require.NoError(t, err)
		require.NoError(t, suite.AccumulateTally(encrypted, tally))
	}

	sel, _ := tally.Selection(test.ContestID, test.OptionA)
	shares := make(map[party.ID]election.GuardianShare)
	for id, share := range c.Shares {
		s, err := suite.ComputeDecryptionShare(share, sel, c.Config)
		require.NoError(t, err)
		shares[id] = election.GuardianShare{PublicKey: c.Sets[id].Key, Share: *s}
	}
	_, err := suite.CombineDecryptionShares(shares, sel, c.Config.ExtendedBaseHash)
	assert.ErrorIs(t, err, election.ErrCryptographicOperation)
}
