package protocol

import (
	"github.com/go-logr/logr"
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/electionguard"
)

// State is one phase of an actor's protocol. Implementations are pointer
// types whose exported fields hold the phase-local data; they are encoded
// in snapshots and copied before every transition.
type State[C any] interface {
	// Name identifies the state within its role.
	Name() string
	// Accepts lists the message types the state handles. Every other type is ignored.
	Accepts() []string
	// Transition handles a message of an accepted type. It may update ctx,
	// may return one outgoing message, and returns the next state, or nil
	// to stay in the current one.
	Transition(env Env, msg *Message, ctx *C) (*Message, State[C], error)
}

// Env holds the collaborators of an actor. It is never part of a snapshot.
type Env struct {
	Crypto election.Crypto
	Log    logr.Logger
}

// Option configures an Env.
type Option func(*Env)

// WithCrypto sets the cryptographic collaborator.
func WithCrypto(c election.Crypto) Option {
	return func(e *Env) { e.Crypto = c }
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(e *Env) { e.Log = l }
}

// NewEnv applies opts over the defaults: the electionguard suite and a
// discarding logger.
func NewEnv(opts ...Option) Env {
	env := Env{Log: logr.Discard()}
	for _, opt := range opts {
		opt(&env)
	}
	if env.Crypto == nil {
		env.Crypto = electionguard.New()
	}
	return env
}

func accepts[C any](s State[C], typ string) bool {
	for _, t := range s.Accepts() {
		if t == typ {
			return true
		}
	}
	return false
}
