package protocol

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Machine represents the execution of one actor's protocol.
// It holds the actor's context and current state and serializes every
// operation on them behind a mutex.
type Machine[C any] struct {
	role    string
	states  map[string]func() State[C]
	current State[C]
	context *C
	env     Env
	mtx     sync.Mutex
}

// NewMachine returns a machine for role, starting in initial with the given
// context. states must construct every state the machine can reach, so that
// snapshots can be restored.
func NewMachine[C any](role string, initial State[C], context *C, env Env, states ...func() State[C]) *Machine[C] {
	registry := make(map[string]func() State[C], len(states))
	for _, f := range states {
		registry[f().Name()] = f
	}
	return &Machine[C]{
		role:    role,
		states:  registry,
		current: initial,
		context: context,
		env:     env,
	}
}

// Role returns the role the machine was created for.
func (m *Machine[C]) Role() string {
	return m.role
}

// Env returns the collaborators of the machine.
func (m *Machine[C]) Env() Env {
	return m.env
}

// Phase returns the name of the current state.
func (m *Machine[C]) Phase() string {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.current.Name()
}

// Done reports whether the machine reached a state that accepts no messages.
func (m *Machine[C]) Done() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.current.Accepts()) == 0
}

// CanAccept checks whether or not a message can be accepted at the current point in the protocol.
func (m *Machine[C]) CanAccept(msg *Message) bool {
	if msg == nil {
		return false
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return accepts(m.current, msg.Type)
}

// Process handles one message. Messages the current state does not accept
// are ignored and yield (nil, nil). A transition either succeeds completely
// or leaves the machine exactly as it was.
//
// Process may be called concurrently but blocks until all previous calls have finished.
func (m *Machine[C]) Process(msg *Message) (*Message, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if msg == nil || !accepts(m.current, msg.Type) {
		return nil, nil
	}

	from := m.current.Name()
	state, err := m.cloneState(m.current)
	if err != nil {
		return nil, err
	}
	context, err := clone(m.context)
	if err != nil {
		return nil, err
	}

	out, next, err := state.Transition(m.env, msg, context)
	if err != nil {
		m.env.Log.Error(err, "message rejected", "role", m.role, "state", from, "type", msg.Type)
		return nil, fmt.Errorf("%s: %s: %w", m.role, from, err)
	}

	m.context = context
	if next == nil {
		next = state
	}
	m.current = next
	if next.Name() != from {
		m.env.Log.V(1).Info("transition", "role", m.role, "from", from, "to", next.Name(), "type", msg.Type)
	}
	if out != nil {
		m.env.Log.V(1).Info("emit", "role", m.role, "type", out.Type, "size", len(out.Content))
	}
	return out, nil
}

// Do runs fn on a copy of the context and keeps the copy only if fn succeeds.
func (m *Machine[C]) Do(fn func(phase string, ctx *C) error) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	context, err := clone(m.context)
	if err != nil {
		return err
	}
	if err := fn(m.current.Name(), context); err != nil {
		return err
	}
	m.context = context
	return nil
}

// View runs fn on the live context. fn must not modify or retain it.
func (m *Machine[C]) View(fn func(phase string, ctx *C)) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	fn(m.current.Name(), m.context)
}

func (m *Machine[C]) cloneState(s State[C]) (State[C], error) {
	create, ok := m.states[s.Name()]
	if !ok {
		return nil, fmt.Errorf("protocol: %s: unregistered state %s", m.role, s.Name())
	}
	data, err := encoder.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to copy state %s: %w", s.Name(), err)
	}
	out := create()
	if err := cbor.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("protocol: failed to copy state %s: %w", s.Name(), err)
	}
	return out, nil
}

func clone[T any](v *T) (*T, error) {
	data, err := encoder.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to copy context: %w", err)
	}
	out := new(T)
	if err := cbor.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("protocol: failed to copy context: %w", err)
	}
	return out, nil
}
