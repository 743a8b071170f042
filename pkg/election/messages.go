package election

import (
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
)

// Message types exchanged between the coordinator, guardians and voters.
const (
	TypeCreateElection      = "create_election"
	TypeStartKeyCeremony    = "start_key_ceremony"
	TypeTrusteeElectionKeys = "trustee_election_keys"
	TypeTrusteePartialKeys  = "trustee_partial_election_keys"
	TypeTrusteeVerification = "trustee_verification"
	TypeEndKeyCeremony      = "end_key_ceremony"
	TypeStartVote           = "start_vote"
	TypeCast                = "cast"
	TypeEndVote             = "end_vote"
	TypeStartTally          = "start_tally"
	TypeTallyCast           = "tally_cast"
	TypeTrusteeShare        = "trustee_share"
	TypeEndTally            = "end_tally"
)

// TrusteePartialKeys is the payload of trustee_partial_election_keys.
type TrusteePartialKeys struct {
	GuardianID  party.ID
	PartialKeys []PartialKeyBackup
}

// TrusteeVerification is the payload of trustee_verification.
type TrusteeVerification struct {
	GuardianID    party.ID
	Verifications []PartialKeyVerification
}

// Covers reports whether t holds exactly one verification of a backup made
// for its sender by every other guardian of roster.
func (t *TrusteeVerification) Covers(roster party.IDSlice) bool {
	others := roster.Remove(t.GuardianID)
	if len(t.Verifications) != len(others) {
		return false
	}
	seen := make(map[party.ID]bool, len(others))
	for _, v := range t.Verifications {
		if seen[v.OwnerID] || !others.Contains(v.OwnerID) || v.DesignatedID != t.GuardianID {
			return false
		}
		seen[v.OwnerID] = true
	}
	return true
}

// JointElectionKey is the payload of end_key_ceremony.
type JointElectionKey struct {
	JointKey curve.Point
}

// TrusteeShare is the payload of trustee_share.
type TrusteeShare struct {
	GuardianID party.ID
	PublicKey  curve.Point
	Contests   []ContestShare
}
