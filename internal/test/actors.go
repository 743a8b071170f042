package test

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/protocol"
	"github.com/luxfi/election/protocols/coordinator"
	"github.com/luxfi/election/protocols/guardian"
	"github.com/luxfi/election/protocols/voter"
	"github.com/stretchr/testify/require"
)

// Election wires a coordinator and its guardians to one network.
type Election struct {
	IDs         party.IDSlice
	Creation    *election.Creation
	Coordinator *coordinator.Coordinator
	Guardians   []*guardian.Guardian
	Network     *Network

	opts     []protocol.Option
	setup    []*protocol.Message
	jointKey *protocol.Message
}

// NewElection returns n guardians with quorum k and a coordinator, all
// waiting for create_election.
func NewElection(n, k int, log logr.Logger, opts ...protocol.Option) *Election {
	opts = append([]protocol.Option{protocol.WithLogger(log)}, opts...)
	e := &Election{
		IDs:         PartyIDs(n),
		Coordinator: coordinator.New(opts...),
		Network:     NewNetwork(log.WithName("network")),
		opts:        opts,
	}
	e.Creation = Creation(e.IDs, k)
	e.Network.Join(coordinator.Role, e.Coordinator)
	for _, id := range e.IDs {
		g := guardian.New(id, opts...)
		e.Guardians = append(e.Guardians, g)
		e.Network.Join(string(id), g)
	}
	return e
}

// Send broadcasts msgs and everything they cause.
func (e *Election) Send(tb T, msgs ...*protocol.Message) []*protocol.Message {
	tb.Helper()
	out, err := e.Network.Broadcast(context.Background(), msgs...)
	require.NoError(tb, err)
	return out
}

// KeyCeremony creates the election and runs the key ceremony to the
// published joint key.
func (e *Election) KeyCeremony(tb T) *election.JointElectionKey {
	tb.Helper()
	create := Message(tb, election.TypeCreateElection, e.Creation)
	out := e.Send(tb, create, Message(tb, election.TypeStartKeyCeremony, nil))
	end := Last(out, election.TypeEndKeyCeremony)
	require.NotNil(tb, end, "no joint key published")
	e.setup = []*protocol.Message{create}
	e.jointKey = end

	var joint election.JointElectionKey
	require.NoError(tb, end.Decode(&joint))
	return &joint
}

// Voter returns a voter that has seen the election and its joint key.
func (e *Election) Voter(tb T, ballotID string) *voter.Voter {
	tb.Helper()
	require.NotNil(tb, e.jointKey, "key ceremony has not run")
	v := voter.New(ballotID, "", e.opts...)
	for _, msg := range append(e.setup, e.jointKey) {
		_, err := v.Process(msg)
		require.NoError(tb, err)
	}
	return v
}

// Tally closes voting and runs the decryption to the published tally.
func (e *Election) Tally(tb T) *election.PlaintextTally {
	tb.Helper()
	out := e.Send(tb,
		Message(tb, election.TypeEndVote, nil),
		Message(tb, election.TypeStartTally, nil),
	)
	end := Last(out, election.TypeEndTally)
	require.NotNil(tb, end, "no tally published")
	var result election.PlaintextTally
	require.NoError(tb, end.Decode(&result))
	return &result
}

// OpenVoting opens the coordinator's tally.
func (e *Election) OpenVoting(tb T) {
	tb.Helper()
	e.Send(tb, Message(tb, election.TypeStartVote, nil))
}
