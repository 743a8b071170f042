// Package guardian implements a trustee of an election. A guardian takes
// part in the key ceremony, backs up its key share to the other guardians,
// and publishes its share of the decryption of the final tally.
package guardian

import (
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/protocol"
)

// Role names guardians in snapshots and logs.
const Role = "guardian"

// Guardian is one trustee actor. It is safe for concurrent use.
type Guardian struct {
	m *protocol.Machine[Context]
}

func newGuardian(id party.ID, opts ...protocol.Option) *Guardian {
	env := protocol.NewEnv(opts...)
	env.Log = env.Log.WithName(Role)
	if id != "" {
		env.Log = env.Log.WithValues("guardian", id)
	}
	return &Guardian{
		m: protocol.NewMachine[Context](Role, &awaitCreateElection{}, &Context{ID: id}, env, states...),
	}
}

// New returns the guardian id, waiting for create_election.
func New(id party.ID, opts ...protocol.Option) *Guardian {
	return newGuardian(id, opts...)
}

// Restore returns a guardian resumed from a snapshot, key share included.
func Restore(data []byte, opts ...protocol.Option) (*Guardian, error) {
	g := newGuardian("", opts...)
	if err := g.m.Restore(data); err != nil {
		return nil, err
	}
	return g, nil
}

// ID returns the guardian's id.
func (g *Guardian) ID() (id party.ID) {
	g.m.View(func(_ string, ctx *Context) { id = ctx.ID })
	return
}

// Process handles one message and returns the message to broadcast, if any.
// Messages the current phase does not expect are ignored.
func (g *Guardian) Process(msg *protocol.Message) (*protocol.Message, error) {
	return g.m.Process(msg)
}

// CanAccept reports whether msg would be handled in the current phase.
func (g *Guardian) CanAccept(msg *protocol.Message) bool {
	return g.m.CanAccept(msg)
}

// Snapshot encodes the guardian. The snapshot holds the secret key share.
func (g *Guardian) Snapshot() ([]byte, error) {
	return g.m.Snapshot()
}

// Phase returns the name of the current phase.
func (g *Guardian) Phase() string {
	return g.m.Phase()
}

// Done reports whether the guardian has submitted its decryption share.
func (g *Guardian) Done() bool {
	return g.m.Done()
}

// PublicKey returns the guardian's election public key once it is generated.
func (g *Guardian) PublicKey() (key curve.Point, ok bool) {
	g.m.View(func(_ string, ctx *Context) {
		if ctx.Share != nil {
			key, ok = ctx.Share.PublicKey(), true
		}
	})
	return
}

// Config returns the election configuration, or nil before create_election.
func (g *Guardian) Config() (config *election.Config) {
	g.m.View(func(_ string, ctx *Context) {
		if ctx.Config != nil {
			cp := *ctx.Config
			config = &cp
		}
	})
	return
}
