package electionguard

import (
	"encoding/binary"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/math/polynomial"
	"github.com/luxfi/election/pkg/math/sample"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/zk"
)

func coefficientContext(owner party.ID, index int) []byte {
	b := make([]byte, 8, 8+len(owner))
	binary.BigEndian.PutUint64(b, uint64(index))
	return append(b, owner...)
}

func backupContext(owner, designated party.ID) []byte {
	return []byte(string(owner) + "\x00" + string(designated))
}

// GenerateKeyShare implements election.Crypto.
func (s *Suite) GenerateKeyShare(id party.ID, order, n, k int) (*election.KeyShare, *election.PublicKeySet, error) {
	if id == "" || order < 1 || order > n || k < 1 || k > n {
		return nil, nil, cryptoError("invalid key share parameters for %q: order %d, n %d, k %d", id, order, n, k)
	}
	poly, err := polynomial.New(k-1, s.rand())
	if err != nil {
		return nil, nil, cryptoError("sample polynomial: %v", err)
	}
	commitments := poly.Commitments()
	proofs := make([]zk.Schnorr, len(commitments))
	for i, c := range commitments {
		proof, err := zk.ProveSchnorr(poly.Coefficients[i], c, s.rand(), coefficientContext(id, i))
		if err != nil {
			return nil, nil, cryptoError("prove coefficient %d: %v", i, err)
		}
		proofs[i] = *proof
	}
	share := &election.KeyShare{
		GuardianID:    id,
		SequenceOrder: order,
		Quorum:        k,
		Coefficients:  poly.Coefficients,
	}
	set := &election.PublicKeySet{
		OwnerID:       id,
		SequenceOrder: order,
		Key:           commitments[0],
		Commitments:   commitments,
		Proofs:        proofs,
	}
	return share, set, nil
}

// VerifyPublicKeySet implements election.Crypto.
func (s *Suite) VerifyPublicKeySet(set *election.PublicKeySet) error {
	if set == nil || len(set.Commitments) == 0 {
		return cryptoError("empty public key set")
	}
	if len(set.Proofs) != len(set.Commitments) {
		return cryptoError("key set of %q has %d proofs for %d commitments", set.OwnerID, len(set.Proofs), len(set.Commitments))
	}
	if !set.Key.Equal(set.Commitments[0]) {
		return cryptoError("key of %q does not match its first commitment", set.OwnerID)
	}
	for i := range set.Commitments {
		if !set.Proofs[i].Verify(set.Commitments[i], coefficientContext(set.OwnerID, i)) {
			return cryptoError("invalid proof for coefficient %d of %q", i, set.OwnerID)
		}
	}
	return nil
}

// CombineJointKey implements election.Crypto.
func (s *Suite) CombineJointKey(keys []curve.Point) (curve.Point, error) {
	joint, err := elgamal.CombinePublicKeys(keys)
	if err != nil {
		return curve.Point{}, cryptoError("%v", err)
	}
	return joint, nil
}

// SharePartialKeyBackup implements election.Crypto.
func (s *Suite) SharePartialKeyBackup(share *election.KeyShare, target *election.PublicKeySet) (*election.PartialKeyBackup, error) {
	if share == nil || target == nil {
		return nil, cryptoError("missing key share or target")
	}
	value := (&polynomial.Polynomial{Coefficients: share.Coefficients}).Evaluate(polynomial.Coordinate(target.SequenceOrder))
	nonce, err := sample.Scalar(s.rand())
	if err != nil {
		return nil, cryptoError("sample nonce: %v", err)
	}
	plaintext := value.Bytes()
	sealed, err := elgamal.Seal(plaintext[:], target.Key, nonce, backupContext(share.GuardianID, target.OwnerID))
	if err != nil {
		return nil, cryptoError("seal backup for %q: %v", target.OwnerID, err)
	}
	return &election.PartialKeyBackup{
		OwnerID:                 share.GuardianID,
		DesignatedID:            target.OwnerID,
		DesignatedSequenceOrder: target.SequenceOrder,
		Coordinate:              *sealed,
	}, nil
}

// VerifyPartialKeyBackup implements election.Crypto. A backup that opens but
// does not match the sender's commitments yields Verified = false; a backup
// that cannot be opened at all is an error.
func (s *Suite) VerifyPartialKeyBackup(share *election.KeyShare, backup *election.PartialKeyBackup, sender *election.PublicKeySet) (*election.PartialKeyVerification, error) {
	if share == nil || backup == nil || sender == nil {
		return nil, cryptoError("missing key share, backup or sender keys")
	}
	if backup.DesignatedID != share.GuardianID || backup.OwnerID != sender.OwnerID {
		return nil, cryptoError("backup from %q to %q does not match verifier %q", backup.OwnerID, backup.DesignatedID, share.GuardianID)
	}
	plaintext, err := backup.Coordinate.Open(share.Secret(), backupContext(backup.OwnerID, backup.DesignatedID))
	if err != nil {
		return nil, cryptoError("open backup from %q: %v", backup.OwnerID, err)
	}
	var value curve.Scalar
	if err := value.UnmarshalBinary(plaintext); err != nil {
		return nil, cryptoError("decode backup from %q: %v", backup.OwnerID, err)
	}
	expected := polynomial.EvaluateCommitments(sender.Commitments, polynomial.Coordinate(share.SequenceOrder))
	return &election.PartialKeyVerification{
		OwnerID:      backup.OwnerID,
		DesignatedID: backup.DesignatedID,
		VerifierID:   share.GuardianID,
		Verified:     backup.DesignatedSequenceOrder == share.SequenceOrder && value.ActOnBase().Equal(expected),
	}, nil
}
