package election

import (
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
)

// Crypto is the cryptographic collaborator of the protocol state machines.
// Implementations must not modify their arguments except where documented,
// so that a failed call leaves the caller's state untouched.
type Crypto interface {
	// GenerateKeyShare creates the key material of the guardian with the
	// given 1-based sequence order, for n guardians and quorum k.
	GenerateKeyShare(id party.ID, order, n, k int) (*KeyShare, *PublicKeySet, error)
	// VerifyPublicKeySet checks the proofs attached to a published key set.
	VerifyPublicKeySet(set *PublicKeySet) error
	// CombineJointKey combines the guardians' public keys.
	CombineJointKey(keys []curve.Point) (curve.Point, error)

	// SharePartialKeyBackup computes the backup of share for the target guardian.
	SharePartialKeyBackup(share *KeyShare, target *PublicKeySet) (*PartialKeyBackup, error)
	// VerifyPartialKeyBackup opens a backup addressed to share's owner and
	// checks it against the sender's commitments.
	VerifyPartialKeyBackup(share *KeyShare, backup *PartialKeyBackup, sender *PublicKeySet) (*PartialKeyVerification, error)

	// EncryptBallot encrypts a plaintext ballot under the config's joint key.
	EncryptBallot(ballot *PlaintextBallot, config *Config, deterministic bool) (*CiphertextBallot, error)
	// ValidateBallot checks that a ballot belongs to the election and that every proof holds.
	ValidateBallot(ballot *CiphertextBallot, config *Config) error
	// AccumulateTally folds a ballot into tally in place.
	AccumulateTally(ballot *CiphertextBallot, tally *CiphertextTally) error

	// ComputeDecryptionShare partially decrypts one tally selection.
	ComputeDecryptionShare(share *KeyShare, selection *CiphertextTallySelection, config *Config) (*SelectionShare, error)
	// VerifyDecryptionShare checks one guardian's share against its public key.
	VerifyDecryptionShare(share *GuardianShare, selection *CiphertextTallySelection, extendedBaseHash []byte) error
	// CombineDecryptionShares verifies every guardian's share and decrypts the selection.
	CombineDecryptionShares(shares map[party.ID]GuardianShare, selection *CiphertextTallySelection, extendedBaseHash []byte) (*PlaintextTallySelection, error)
}
