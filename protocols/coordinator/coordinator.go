// Package coordinator implements the bulletin board of an election. It
// drives the key ceremony to the joint key, collects and validates ballots
// into the encrypted tally, and combines the guardians' decryption shares
// into the published result.
package coordinator

import (
	"errors"
	"fmt"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/protocol"
)

// Role names the coordinator in snapshots and logs.
const Role = "coordinator"

var (
	// ErrTallyNotOpen is returned by direct ballot operations outside the voting phases.
	ErrTallyNotOpen = errors.New("coordinator: tally is not open")
	// ErrNoResult is returned by Result before the tally is published.
	ErrNoResult = errors.New("coordinator: tally not published")
)

// Coordinator is the bulletin board actor. It is safe for concurrent use.
type Coordinator struct {
	m *protocol.Machine[Context]
}

// New returns a coordinator waiting for create_election.
func New(opts ...protocol.Option) *Coordinator {
	env := protocol.NewEnv(opts...)
	env.Log = env.Log.WithName(Role)
	return &Coordinator{
		m: protocol.NewMachine[Context](Role, &awaitCreateElection{}, &Context{}, env, states...),
	}
}

// Restore returns a coordinator resumed from a snapshot.
func Restore(data []byte, opts ...protocol.Option) (*Coordinator, error) {
	c := New(opts...)
	if err := c.m.Restore(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Process handles one message and returns the message to broadcast, if any.
// Messages the current phase does not expect are ignored.
func (c *Coordinator) Process(msg *protocol.Message) (*protocol.Message, error) {
	return c.m.Process(msg)
}

// CanAccept reports whether msg would be handled in the current phase.
func (c *Coordinator) CanAccept(msg *protocol.Message) bool {
	return c.m.CanAccept(msg)
}

// Snapshot encodes the coordinator.
func (c *Coordinator) Snapshot() ([]byte, error) {
	return c.m.Snapshot()
}

// Phase returns the name of the current phase.
func (c *Coordinator) Phase() string {
	return c.m.Phase()
}

// Config returns the election configuration, or nil before create_election.
func (c *Coordinator) Config() (config *election.Config) {
	c.m.View(func(_ string, ctx *Context) {
		if ctx.Config != nil {
			cp := *ctx.Config
			config = &cp
		}
	})
	return
}

// RecordBallot validates a ballot and folds it into the tally without going
// through a cast message. It is allowed until start_tally is processed.
func (c *Coordinator) RecordBallot(b *election.CiphertextBallot) error {
	if b == nil {
		return fmt.Errorf("%w: missing ballot", election.ErrInvalidBallot)
	}
	return c.m.Do(func(phase string, ctx *Context) error {
		if phase != CollectBallots && phase != AwaitStartTally {
			return fmt.Errorf("%w: phase %s", ErrTallyNotOpen, phase)
		}
		return recordBallot(c.m.Env(), ctx, b)
	})
}

// CastTally returns a copy of the encrypted tally.
func (c *Coordinator) CastTally() (*election.CiphertextTally, error) {
	var (
		tally *election.CiphertextTally
		err   error
	)
	c.m.View(func(phase string, ctx *Context) {
		if ctx.Tally == nil {
			err = fmt.Errorf("%w: phase %s", ErrTallyNotOpen, phase)
			return
		}
		tally = ctx.Tally.Copy()
	})
	return tally, err
}

// Result returns the published plaintext tally.
func (c *Coordinator) Result() (*election.PlaintextTally, error) {
	var result *election.PlaintextTally
	c.m.View(func(_ string, ctx *Context) {
		if ctx.Result == nil {
			return
		}
		result = &election.PlaintextTally{ID: ctx.Result.ID}
		for _, contest := range ctx.Result.Contests {
			result.Contests = append(result.Contests, election.PlaintextTallyContest{
				ContestID:  contest.ContestID,
				Selections: append([]election.PlaintextTallySelection(nil), contest.Selections...),
			})
		}
	})
	if result == nil {
		return nil, ErrNoResult
	}
	return result, nil
}

// IsFresh reports whether no election has been created yet.
func (c *Coordinator) IsFresh() bool {
	return c.Phase() == AwaitCreateElection
}

// IsKeyCeremonyDone reports whether the joint key has been published.
func (c *Coordinator) IsKeyCeremonyDone() (done bool) {
	c.m.View(func(_ string, ctx *Context) { done = ctx.Config.HasJointKey() })
	return
}

// IsTallyDone reports whether the plaintext tally has been published.
func (c *Coordinator) IsTallyDone() bool {
	return c.m.Done()
}
