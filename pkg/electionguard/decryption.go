package electionguard

import (
	"sort"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/zk"
)

func shareContext(extendedBaseHash []byte, selectionID string, guardian party.ID) [][]byte {
	return [][]byte{extendedBaseHash, []byte(selectionID), []byte(guardian)}
}

// ComputeDecryptionShare implements election.Crypto.
func (s *Suite) ComputeDecryptionShare(share *election.KeyShare, selection *election.CiphertextTallySelection, config *election.Config) (*election.SelectionShare, error) {
	if !config.HasJointKey() {
		return nil, election.ErrMissingJointKey
	}
	if share == nil || selection == nil {
		return nil, cryptoError("missing key share or selection")
	}
	secret := share.Secret()
	pad := selection.Ciphertext.Pad
	partial := secret.Act(pad)
	proof, err := zk.ProveChaumPedersen(secret, share.PublicKey(), pad, partial, s.rand(),
		shareContext(config.ExtendedBaseHash, selection.SelectionID, share.GuardianID)...)
	if err != nil {
		return nil, cryptoError("prove share for %q: %v", selection.SelectionID, err)
	}
	return &election.SelectionShare{
		SelectionID: selection.SelectionID,
		GuardianID:  share.GuardianID,
		Share:       partial,
		Proof:       *proof,
	}, nil
}

// VerifyDecryptionShare implements election.Crypto.
func (s *Suite) VerifyDecryptionShare(share *election.GuardianShare, selection *election.CiphertextTallySelection, extendedBaseHash []byte) error {
	if share == nil || selection == nil {
		return cryptoError("missing share or selection")
	}
	if share.Share.SelectionID != selection.SelectionID {
		return cryptoError("share of %q is for %q, not %q", share.Share.GuardianID, share.Share.SelectionID, selection.SelectionID)
	}
	if !share.Share.Proof.Verify(share.PublicKey, selection.Ciphertext.Pad, share.Share.Share,
		shareContext(extendedBaseHash, selection.SelectionID, share.Share.GuardianID)...) {
		return cryptoError("invalid decryption proof from %q for %q", share.Share.GuardianID, selection.SelectionID)
	}
	return nil
}

// CombineDecryptionShares implements election.Crypto.
func (s *Suite) CombineDecryptionShares(shares map[party.ID]election.GuardianShare, selection *election.CiphertextTallySelection, extendedBaseHash []byte) (*election.PlaintextTallySelection, error) {
	if selection == nil || len(shares) == 0 {
		return nil, cryptoError("no shares to combine")
	}
	ids := make([]party.ID, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	mask := curve.Identity()
	for _, id := range ids {
		gs := shares[id]
		if gs.Share.GuardianID != id {
			return nil, cryptoError("share keyed by %q was made by %q", id, gs.Share.GuardianID)
		}
		if err := s.VerifyDecryptionShare(&gs, selection, extendedBaseHash); err != nil {
			return nil, err
		}
		mask = mask.Add(gs.Share.Share)
	}
	value := selection.Ciphertext.Data.Sub(mask)
	tally, err := elgamal.DiscreteLog(value, s.maxTally())
	if err != nil {
		return nil, cryptoError("decrypt %q: %v", selection.SelectionID, err)
	}
	return &election.PlaintextTallySelection{
		SelectionID: selection.SelectionID,
		Tally:       tally,
		Value:       value,
	}, nil
}
