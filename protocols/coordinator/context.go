package coordinator

import (
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
)

// Context is everything the coordinator accumulates over an election.
type Context struct {
	Config *election.Config
	// PublicKeys holds the verified election key of every guardian.
	PublicKeys map[party.ID]curve.Point
	Tally      *election.CiphertextTally
	Shares     map[party.ID]*election.TrusteeShare
	Result     *election.PlaintextTally
}

func (c *Context) guardianKeys() []curve.Point {
	keys := make([]curve.Point, 0, len(c.Config.Guardians))
	for _, id := range c.Config.Guardians {
		keys = append(keys, c.PublicKeys[id])
	}
	return keys
}
