package election

import "errors"

var (
	// ErrInvalidElectionDescription is returned when create_election carries a
	// manifest, roster or quorum that cannot describe an election.
	ErrInvalidElectionDescription = errors.New("election: invalid election description")
	// ErrInvalidBallot is returned for a ballot that does not match the election.
	ErrInvalidBallot = errors.New("election: invalid ballot")
	// ErrMissingJointKey is returned when an operation needs the joint key before the key ceremony ended.
	ErrMissingJointKey = errors.New("election: missing joint key")
	// ErrCryptographicOperation wraps every failure of the cryptographic collaborator.
	ErrCryptographicOperation = errors.New("election: cryptographic operation failed")
)
