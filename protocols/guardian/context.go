package guardian

import (
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
)

// Context is the guardian's private record of the election.
type Context struct {
	ID     party.ID
	Config *election.Config
	Share  *election.KeyShare
	// PublicKeys holds the verified key sets of every guardian, own included.
	PublicKeys map[party.ID]*election.PublicKeySet
	// Backups holds the backups other guardians made for this one, by sender.
	Backups       map[party.ID]*election.PartialKeyBackup
	Verifications map[party.ID]*election.PartialKeyVerification
}

func (c *Context) others() party.IDSlice {
	return c.Config.Guardians.Remove(c.ID)
}

func (c *Context) guardianKeys() []curve.Point {
	keys := make([]curve.Point, 0, len(c.Config.Guardians))
	for _, id := range c.Config.Guardians {
		keys = append(keys, c.PublicKeys[id].Key)
	}
	return keys
}
