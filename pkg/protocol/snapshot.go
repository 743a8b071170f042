package protocol

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// SnapshotVersion is the version written into every snapshot.
const SnapshotVersion = 1

// ErrSnapshot is returned when a snapshot cannot be restored.
var ErrSnapshot = errors.New("protocol: invalid snapshot")

type snapshot struct {
	Version uint
	Role    string
	State   string
	Data    cbor.RawMessage
	Context cbor.RawMessage
}

// Snapshot encodes the machine's role, current state and context.
// Collaborators are not part of it.
func (m *Machine[C]) Snapshot() ([]byte, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	state, err := encoder.Marshal(m.current)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to encode state: %w", err)
	}
	context, err := encoder.Marshal(m.context)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to encode context: %w", err)
	}
	return encoder.Marshal(&snapshot{
		Version: SnapshotVersion,
		Role:    m.role,
		State:   m.current.Name(),
		Data:    state,
		Context: context,
	})
}

// Restore replaces the machine's state and context with those of a
// snapshot taken from a machine of the same role. On error the machine is
// left unchanged.
func (m *Machine[C]) Restore(data []byte) error {
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrSnapshot, s.Version)
	}
	if s.Role != m.role {
		return fmt.Errorf("%w: snapshot of a %s restored as %s", ErrSnapshot, s.Role, m.role)
	}
	create, ok := m.states[s.State]
	if !ok {
		return fmt.Errorf("%w: unknown %s state %q", ErrSnapshot, m.role, s.State)
	}
	state := create()
	if err := cbor.Unmarshal(s.Data, state); err != nil {
		return fmt.Errorf("%w: state %s: %v", ErrSnapshot, s.State, err)
	}
	context := new(C)
	if err := cbor.Unmarshal(s.Context, context); err != nil {
		return fmt.Errorf("%w: context: %v", ErrSnapshot, err)
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.current = state
	m.context = context
	return nil
}

// SnapshotInfo describes a snapshot without restoring it.
type SnapshotInfo struct {
	Version uint
	Role    string
	State   string
	Size    int
}

// Inspect reads the envelope of a snapshot.
func Inspect(data []byte) (*SnapshotInfo, error) {
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	return &SnapshotInfo{
		Version: s.Version,
		Role:    s.Role,
		State:   s.State,
		Size:    len(data),
	}, nil
}
