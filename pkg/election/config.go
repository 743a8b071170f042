// Package election holds the data exchanged during an election: the
// manifest and configuration, key ceremony records, ballots, tallies and
// decryption shares, and the interface to the cryptographic collaborator.
package election

import (
	"bytes"
	"fmt"

	"github.com/luxfi/election/pkg/hash"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
)

const extendedBaseHashDomain = "github.com/luxfi/election extended base hash"

// Creation is the payload of create_election.
type Creation struct {
	Description Manifest  `json:"description"`
	Trustees    []Trustee `json:"trustees"`
	Scheme      Scheme    `json:"scheme"`
}

// Trustee names one guardian of the roster.
type Trustee struct {
	Name party.ID `json:"name"`
}

// Scheme holds the threshold parameters of the election.
type Scheme struct {
	Name       string           `json:"name,omitempty"`
	Parameters SchemeParameters `json:"parameters"`
}

// SchemeParameters holds the decryption quorum.
type SchemeParameters struct {
	Quorum int `json:"quorum"`
}

// GuardianIDs returns the roster in the order the trustees were listed.
func (c *Creation) GuardianIDs() party.IDSlice {
	ids := make(party.IDSlice, len(c.Trustees))
	for i, t := range c.Trustees {
		ids[i] = t.Name
	}
	return ids
}

// Config is the election configuration shared by every role. It is never
// modified once built; WithJointKey returns a finalized copy.
type Config struct {
	Manifest          Manifest
	Guardians         party.IDSlice
	NumberOfGuardians int
	Quorum            int
	ManifestHash      []byte

	// Set once the key ceremony has completed.
	JointKey         *curve.Point
	ExtendedBaseHash []byte
}

// NewConfig validates a create_election payload and builds the configuration.
func NewConfig(c *Creation) (*Config, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: missing creation payload", ErrInvalidElectionDescription)
	}
	manifest := c.Description.complete()
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	guardians := c.GuardianIDs()
	if err := guardians.Valid(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidElectionDescription, err)
	}
	// every ceremony phase is driven by messages from other guardians
	if len(guardians) < 2 {
		return nil, fmt.Errorf("%w: at least 2 guardians are required", ErrInvalidElectionDescription)
	}
	quorum := c.Scheme.Parameters.Quorum
	if quorum < 1 || quorum > len(guardians) {
		return nil, fmt.Errorf("%w: quorum %d for %d guardians", ErrInvalidElectionDescription, quorum, len(guardians))
	}
	manifestHash, err := manifest.Hash()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidElectionDescription, err)
	}
	return &Config{
		Manifest:          manifest,
		Guardians:         guardians,
		NumberOfGuardians: len(guardians),
		Quorum:            quorum,
		ManifestHash:      manifestHash,
	}, nil
}

// WithJointKey returns a copy of c completed with the joint key and the
// extended base hash derived from it.
func (c *Config) WithJointKey(key curve.Point) *Config {
	out := *c
	out.Guardians = c.Guardians.Copy()
	out.JointKey = &key
	out.ExtendedBaseHash = hash.New(extendedBaseHashDomain).
		WriteBytes(c.ManifestHash).
		WriteUint64(uint64(c.NumberOfGuardians)).
		WriteUint64(uint64(c.Quorum)).
		WritePoint(key).
		Sum()
	return &out
}

// HasJointKey reports whether the key ceremony results are part of c.
func (c *Config) HasJointKey() bool {
	return c != nil && c.JointKey != nil
}

// SameElection reports whether extendedBaseHash identifies this election.
func (c *Config) SameElection(extendedBaseHash []byte) bool {
	return c.HasJointKey() && bytes.Equal(c.ExtendedBaseHash, extendedBaseHash)
}
