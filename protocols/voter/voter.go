// Package voter implements a voter of an election: it learns the election
// and its joint key from the bulletin board and encrypts ballots under it.
package voter

import (
	"fmt"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/protocol"
)

// Role names voters in snapshots and logs.
const Role = "voter"

// Phases of a voter, in order.
const (
	AwaitCreateElection = "AwaitCreateElection"
	AwaitJointKey       = "AwaitJointKey"
	Ready               = "Ready"
)

// Context is what a voter knows about its election.
type Context struct {
	BallotID string
	// StyleID is the voter's ballot style. Empty selects the first style of
	// the manifest once it is known.
	StyleID string
	Config  *election.Config
}

type state = protocol.State[Context]

var states = []func() state{
	func() state { return &awaitCreateElection{} },
	func() state { return &awaitJointKey{} },
	func() state { return &ready{} },
}

type awaitCreateElection struct{}

func (*awaitCreateElection) Name() string      { return AwaitCreateElection }
func (*awaitCreateElection) Accepts() []string { return []string{election.TypeCreateElection} }

func (*awaitCreateElection) Transition(_ protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var creation election.Creation
	if err := msg.Decode(&creation); err != nil {
		return nil, nil, err
	}
	config, err := election.NewConfig(&creation)
	if err != nil {
		return nil, nil, err
	}
	if ctx.StyleID == "" {
		ctx.StyleID = config.Manifest.BallotStyles[0].ID
	} else if _, ok := config.Manifest.BallotStyle(ctx.StyleID); !ok {
		return nil, nil, fmt.Errorf("%w: unknown ballot style %q", election.ErrInvalidElectionDescription, ctx.StyleID)
	}
	ctx.Config = config
	return nil, &awaitJointKey{}, nil
}

type awaitJointKey struct{}

func (*awaitJointKey) Name() string      { return AwaitJointKey }
func (*awaitJointKey) Accepts() []string { return []string{election.TypeEndKeyCeremony} }

func (*awaitJointKey) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var joint election.JointElectionKey
	if err := msg.Decode(&joint); err != nil {
		return nil, nil, err
	}
	if joint.JointKey.IsIdentity() {
		return nil, nil, fmt.Errorf("%w: joint key is the identity", election.ErrCryptographicOperation)
	}
	ctx.Config = ctx.Config.WithJointKey(joint.JointKey)
	env.Log.V(1).Info("joint key received", "ballot", ctx.BallotID)
	return nil, &ready{}, nil
}

type ready struct{}

func (*ready) Name() string      { return Ready }
func (*ready) Accepts() []string { return nil }

func (*ready) Transition(protocol.Env, *protocol.Message, *Context) (*protocol.Message, state, error) {
	return nil, nil, nil
}

// Voter holds one ballot of an election. It is safe for concurrent use.
type Voter struct {
	m *protocol.Machine[Context]
}

func newVoter(ctx *Context, opts ...protocol.Option) *Voter {
	env := protocol.NewEnv(opts...)
	env.Log = env.Log.WithName(Role)
	return &Voter{
		m: protocol.NewMachine[Context](Role, &awaitCreateElection{}, ctx, env, states...),
	}
}

// New returns a voter casting ballotID with the given ballot style. An
// empty styleID selects the first style of the election.
func New(ballotID, styleID string, opts ...protocol.Option) *Voter {
	return newVoter(&Context{BallotID: ballotID, StyleID: styleID}, opts...)
}

// Restore returns a voter resumed from a snapshot.
func Restore(data []byte, opts ...protocol.Option) (*Voter, error) {
	v := newVoter(&Context{}, opts...)
	if err := v.m.Restore(data); err != nil {
		return nil, err
	}
	return v, nil
}

// Process handles one message. Voters never reply.
func (v *Voter) Process(msg *protocol.Message) (*protocol.Message, error) {
	return v.m.Process(msg)
}

// CanAccept reports whether msg would be handled in the current phase.
func (v *Voter) CanAccept(msg *protocol.Message) bool {
	return v.m.CanAccept(msg)
}

// Snapshot encodes the voter.
func (v *Voter) Snapshot() ([]byte, error) {
	return v.m.Snapshot()
}

// Phase returns the name of the current phase.
func (v *Voter) Phase() string {
	return v.m.Phase()
}

// BallotID returns the id of the voter's ballot.
func (v *Voter) BallotID() (id string) {
	v.m.View(func(_ string, ctx *Context) { id = ctx.BallotID })
	return
}

// EncryptBallot encrypts the voter's choices, given as selected flags per
// selection id per contest id. Contests of the voter's style that are
// missing from selections are left blank. With deterministic set the
// encryption is reproducible from the joint key and the ballot id.
func (v *Voter) EncryptBallot(selections map[string]map[string]bool, deterministic bool) (*election.CiphertextBallot, error) {
	var (
		ballot *election.PlaintextBallot
		config *election.Config
		err    error
	)
	v.m.View(func(_ string, ctx *Context) {
		if !ctx.Config.HasJointKey() {
			err = election.ErrMissingJointKey
			return
		}
		config = ctx.Config
		ballot, err = plaintextBallot(ctx, selections)
	})
	if err != nil {
		return nil, err
	}
	return v.m.Env().Crypto.EncryptBallot(ballot, config, deterministic)
}

// Cast encrypts the voter's choices and wraps the ballot in a cast message.
func (v *Voter) Cast(selections map[string]map[string]bool, deterministic bool) (*protocol.Message, error) {
	ballot, err := v.EncryptBallot(selections, deterministic)
	if err != nil {
		return nil, err
	}
	return protocol.NewMessage(election.TypeCast, ballot)
}

// plaintextBallot lays the choices out in manifest order.
func plaintextBallot(ctx *Context, selections map[string]map[string]bool) (*election.PlaintextBallot, error) {
	contests, err := ctx.Config.Manifest.ContestsFor(ctx.StyleID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]*election.Contest, len(contests))
	for i := range contests {
		known[contests[i].ID] = &contests[i]
	}
	for contestID, chosen := range selections {
		contest, ok := known[contestID]
		if !ok {
			return nil, fmt.Errorf("%w: contest %q is not on ballot style %q", election.ErrInvalidBallot, contestID, ctx.StyleID)
		}
		for selectionID := range chosen {
			found := false
			for _, s := range contest.Selections {
				found = found || s.ID == selectionID
			}
			if !found {
				return nil, fmt.Errorf("%w: unknown selection %q in contest %q", election.ErrInvalidBallot, selectionID, contestID)
			}
		}
	}

	ballot := &election.PlaintextBallot{
		BallotID: ctx.BallotID,
		StyleID:  ctx.StyleID,
		Contests: make([]election.PlaintextContest, len(contests)),
	}
	for i, contest := range contests {
		ballot.Contests[i] = election.PlaintextContest{
			ContestID:  contest.ID,
			Selections: make([]election.PlaintextSelection, len(contest.Selections)),
		}
		for j, s := range contest.Selections {
			vote := 0
			if selections[contest.ID][s.ID] {
				vote = 1
			}
			ballot.Contests[i].Selections[j] = election.PlaintextSelection{SelectionID: s.ID, Vote: vote}
		}
	}
	return ballot, nil
}
