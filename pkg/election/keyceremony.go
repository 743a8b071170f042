package election

import (
	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/zk"
)

// KeyShare is a guardian's private key material: the coefficients of its
// secret polynomial. The constant term is its election secret key.
type KeyShare struct {
	GuardianID    party.ID
	SequenceOrder int
	Quorum        int
	Coefficients  []curve.Scalar
}

// Secret returns the guardian's election secret key.
func (k *KeyShare) Secret() curve.Scalar {
	if len(k.Coefficients) == 0 {
		return curve.NewScalar()
	}
	return k.Coefficients[0]
}

// PublicKey returns the guardian's election public key.
func (k *KeyShare) PublicKey() curve.Point {
	return k.Secret().ActOnBase()
}

// PublicKeySet is what a guardian publishes in trustee_election_keys.
type PublicKeySet struct {
	OwnerID       party.ID
	SequenceOrder int
	Key           curve.Point
	Commitments   []curve.Point
	Proofs        []zk.Schnorr
}

// PartialKeyBackup is the value of the owner's polynomial at the designated
// guardian's coordinate, sealed to the designated guardian's key.
type PartialKeyBackup struct {
	OwnerID                 party.ID
	DesignatedID            party.ID
	DesignatedSequenceOrder int
	Coordinate              elgamal.HashedCiphertext
}

// PartialKeyVerification records whether a backup matched its owner's commitments.
type PartialKeyVerification struct {
	OwnerID      party.ID
	DesignatedID party.ID
	VerifierID   party.ID
	Verified     bool
}
