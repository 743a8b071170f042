// Package test holds fixtures and an in-memory network shared by the tests
// of every role.
package test

import (
	"fmt"

	"github.com/luxfi/election/pkg/party"
	"github.com/stretchr/testify/require"
)

// PartyIDs returns n guardian ids in roster order.
func PartyIDs(n int) party.IDSlice {
	ids := make(party.IDSlice, n)
	for i := range ids {
		ids[i] = party.ID(fmt.Sprintf("guardian-%d", i+1))
	}
	return ids
}

// T is what the helpers need from a test. Both *testing.T and GinkgoT()
// implement it.
type T interface {
	require.TestingT
	Helper()
}
