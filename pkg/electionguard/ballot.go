package electionguard

import (
	"bytes"
	"fmt"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/sample"
	"github.com/luxfi/election/pkg/zk"
)

const ballotNonceDomain = "github.com/luxfi/election ballot nonces"

func proofContext(extendedBaseHash []byte, objectID string) [][]byte {
	return [][]byte{extendedBaseHash, []byte(objectID)}
}

// votesFor indexes the plaintext votes of a contest by selection id and
// rejects selections the manifest does not know.
func votesFor(contest *election.Contest, plain *election.PlaintextContest) (map[string]int, error) {
	votes := make(map[string]int)
	if plain == nil {
		return votes, nil
	}
	known := make(map[string]bool, len(contest.Selections))
	for _, s := range contest.Selections {
		known[s.ID] = true
	}
	for _, s := range plain.Selections {
		if !known[s.SelectionID] {
			return nil, ballotError("unknown selection %q in contest %q", s.SelectionID, contest.ID)
		}
		if s.Vote != 0 && s.Vote != 1 {
			return nil, ballotError("selection %q has vote %d", s.SelectionID, s.Vote)
		}
		votes[s.SelectionID] = s.Vote
	}
	return votes, nil
}

// EncryptBallot implements election.Crypto.
func (s *Suite) EncryptBallot(ballot *election.PlaintextBallot, config *election.Config, deterministic bool) (*election.CiphertextBallot, error) {
	if !config.HasJointKey() {
		return nil, election.ErrMissingJointKey
	}
	if ballot == nil || ballot.BallotID == "" {
		return nil, ballotError("missing ballot id")
	}
	contests, err := config.Manifest.ContestsFor(ballot.StyleID)
	if err != nil {
		return nil, err
	}
	plain := make(map[string]*election.PlaintextContest, len(ballot.Contests))
	for i := range ballot.Contests {
		plain[ballot.Contests[i].ContestID] = &ballot.Contests[i]
	}
	for id := range plain {
		found := false
		for _, c := range contests {
			found = found || c.ID == id
		}
		if !found {
			return nil, ballotError("contest %q is not part of style %q", id, ballot.StyleID)
		}
	}

	key := *config.JointKey
	rng := s.rand()
	if deterministic {
		rng = sample.Source(true, ballotNonceDomain, key.Bytes(), []byte(ballot.BallotID))
	}

	out := &election.CiphertextBallot{
		BallotID:         ballot.BallotID,
		StyleID:          ballot.StyleID,
		ManifestHash:     append([]byte(nil), config.ManifestHash...),
		ExtendedBaseHash: append([]byte(nil), config.ExtendedBaseHash...),
		Contests:         make([]election.CiphertextContest, len(contests)),
	}
	for i := range contests {
		contest := &contests[i]
		votes, err := votesFor(contest, plain[contest.ID])
		if err != nil {
			return nil, err
		}
		total, nonceSum := 0, curve.NewScalar()
		selections := make([]election.CiphertextSelection, len(contest.Selections))
		for j, sel := range contest.Selections {
			vote := votes[sel.ID]
			nonce, err := sample.Scalar(rng)
			if err != nil {
				return nil, cryptoError("sample nonce: %v", err)
			}
			ct := elgamal.Encrypt(uint64(vote), nonce, key)
			proof, err := zk.ProveRange(ct, nonce, vote, 1, key, rng, proofContext(config.ExtendedBaseHash, sel.ID)...)
			if err != nil {
				return nil, cryptoError("prove selection %q: %v", sel.ID, err)
			}
			selections[j] = election.CiphertextSelection{SelectionID: sel.ID, Ciphertext: ct, Proof: proof}
			total += vote
			nonceSum = nonceSum.Add(nonce)
		}
		if total > contest.VotesAllowed {
			return nil, ballotError("contest %q has %d votes, %d allowed", contest.ID, total, contest.VotesAllowed)
		}
		encrypted := election.CiphertextContest{ContestID: contest.ID, Selections: selections}
		proof, err := zk.ProveRange(encrypted.Sum(), nonceSum, total, contest.VotesAllowed, key, rng, proofContext(config.ExtendedBaseHash, contest.ID)...)
		if err != nil {
			return nil, cryptoError("prove contest %q: %v", contest.ID, err)
		}
		encrypted.Proof = proof
		out.Contests[i] = encrypted
	}
	return out, nil
}

// ValidateBallot implements election.Crypto.
func (s *Suite) ValidateBallot(ballot *election.CiphertextBallot, config *election.Config) error {
	if !config.HasJointKey() {
		return election.ErrMissingJointKey
	}
	if ballot == nil || ballot.BallotID == "" {
		return ballotError("missing ballot id")
	}
	if !bytes.Equal(ballot.ManifestHash, config.ManifestHash) || !config.SameElection(ballot.ExtendedBaseHash) {
		return ballotError("ballot %q was encrypted for another election", ballot.BallotID)
	}
	contests, err := config.Manifest.ContestsFor(ballot.StyleID)
	if err != nil {
		return err
	}
	if len(ballot.Contests) != len(contests) {
		return ballotError("ballot %q has %d contests, style %q has %d", ballot.BallotID, len(ballot.Contests), ballot.StyleID, len(contests))
	}
	key := *config.JointKey
	for i, contest := range contests {
		encrypted := &ballot.Contests[i]
		if encrypted.ContestID != contest.ID || len(encrypted.Selections) != len(contest.Selections) {
			return ballotError("contest %d of ballot %q does not match %q", i, ballot.BallotID, contest.ID)
		}
		for j, sel := range contest.Selections {
			es := &encrypted.Selections[j]
			if es.SelectionID != sel.ID {
				return ballotError("selection %d of contest %q does not match %q", j, contest.ID, sel.ID)
			}
			if !es.Proof.Verify(es.Ciphertext, 1, key, proofContext(config.ExtendedBaseHash, sel.ID)...) {
				return ballotError("invalid proof for selection %q", sel.ID)
			}
		}
		if !encrypted.Proof.Verify(encrypted.Sum(), contest.VotesAllowed, key, proofContext(config.ExtendedBaseHash, contest.ID)...) {
			return ballotError("invalid proof for contest %q", contest.ID)
		}
	}
	return nil
}

// AccumulateTally implements election.Crypto. Ballots already in the tally are skipped.
func (s *Suite) AccumulateTally(ballot *election.CiphertextBallot, tally *election.CiphertextTally) error {
	if ballot == nil || tally == nil {
		return fmt.Errorf("%w: missing ballot or tally", election.ErrInvalidBallot)
	}
	if tally.Cast[ballot.BallotID] {
		return nil
	}
	type addition struct {
		target *election.CiphertextTallySelection
		value  elgamal.Ciphertext
	}
	// resolve every target first so that a bad ballot leaves tally untouched
	var additions []addition
	for _, c := range ballot.Contests {
		for _, sel := range c.Selections {
			target, ok := tally.Selection(c.ContestID, sel.SelectionID)
			if !ok {
				return ballotError("tally has no selection %q in contest %q", sel.SelectionID, c.ContestID)
			}
			additions = append(additions, addition{target, sel.Ciphertext})
		}
	}
	for _, a := range additions {
		a.target.Ciphertext = a.target.Ciphertext.Add(a.value)
	}
	if tally.Cast == nil {
		tally.Cast = make(map[string]bool)
	}
	tally.Cast[ballot.BallotID] = true
	return nil
}
