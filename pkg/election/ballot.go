package election

import (
	"github.com/luxfi/election/pkg/elgamal"
	"github.com/luxfi/election/pkg/zk"
)

// PlaintextBallot is a voter's choices before encryption, in manifest order.
type PlaintextBallot struct {
	BallotID string
	StyleID  string
	Contests []PlaintextContest
}

// PlaintextContest holds the choices for one contest.
type PlaintextContest struct {
	ContestID  string
	Selections []PlaintextSelection
}

// PlaintextSelection is 1 when the option is selected and 0 otherwise.
type PlaintextSelection struct {
	SelectionID string
	Vote        int
}

// CiphertextBallot is an encrypted ballot as cast to the coordinator.
type CiphertextBallot struct {
	BallotID         string
	StyleID          string
	ManifestHash     []byte
	ExtendedBaseHash []byte
	Contests         []CiphertextContest
}

// CiphertextContest carries the encrypted selections of a contest and a
// proof that their sum does not exceed the votes allowed.
type CiphertextContest struct {
	ContestID  string
	Selections []CiphertextSelection
	Proof      *zk.Range
}

// Sum returns the encryption of the number of selected options.
func (c *CiphertextContest) Sum() elgamal.Ciphertext {
	var out elgamal.Ciphertext
	for _, s := range c.Selections {
		out = out.Add(s.Ciphertext)
	}
	return out
}

// CiphertextSelection is an encrypted 0 or 1 with its proof.
type CiphertextSelection struct {
	SelectionID string
	Ciphertext  elgamal.Ciphertext
	Proof       *zk.Range
}
