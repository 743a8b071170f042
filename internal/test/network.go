package test

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/luxfi/election/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// Actor is one participant attached to a Network.
type Actor interface {
	Process(msg *protocol.Message) (*protocol.Message, error)
}

// Network is an in-memory bulletin board: every message is delivered to
// every actor, including the one that produced it.
type Network struct {
	names  []string
	actors []Actor
	log    logr.Logger
}

// NewNetwork returns an empty network.
func NewNetwork(log logr.Logger) *Network {
	return &Network{log: log}
}

// Join attaches an actor under name.
func (n *Network) Join(name string, a Actor) {
	n.names = append(n.names, name)
	n.actors = append(n.actors, a)
}

// Broadcast delivers msgs, and every message they cause, until no actor has
// anything left to say. Each message is handed to all actors concurrently,
// and the next one is delivered only once all of them are done with it.
// It returns the produced messages in delivery order.
func (n *Network) Broadcast(ctx context.Context, msgs ...*protocol.Message) ([]*protocol.Message, error) {
	queue := append([]*protocol.Message(nil), msgs...)
	var produced []*protocol.Message
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return produced, err
		}
		msg := queue[0]
		queue = queue[1:]
		n.log.V(1).Info("deliver", "type", msg.Type, "size", len(msg.Content))

		out := make([]*protocol.Message, len(n.actors))
		g, _ := errgroup.WithContext(ctx)
		for i, a := range n.actors {
			i, a := i, a
			g.Go(func() error {
				reply, err := a.Process(msg)
				if err != nil {
					return fmt.Errorf("%s: %w", n.names[i], err)
				}
				out[i] = reply
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return produced, err
		}
		for _, reply := range out {
			if reply != nil {
				queue = append(queue, reply)
				produced = append(produced, reply)
			}
		}
	}
	return produced, nil
}

// Last returns the last produced message of the given type.
func Last(msgs []*protocol.Message, typ string) *protocol.Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == typ {
			return msgs[i]
		}
	}
	return nil
}
