package election

import (
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/zk"
)

// SelectionShare is one guardian's partial decryption s_i·Pad of a tally selection.
type SelectionShare struct {
	SelectionID string
	GuardianID  party.ID
	Share       curve.Point
	Proof       zk.ChaumPedersen
}

// ContestShare groups a guardian's selection shares for one contest.
type ContestShare struct {
	ContestID  string
	Selections []SelectionShare
}

// GuardianShare pairs a selection share with the key it must be checked against.
type GuardianShare struct {
	PublicKey curve.Point
	Share     SelectionShare
}
