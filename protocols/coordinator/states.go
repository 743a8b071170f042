package coordinator

import (
	"fmt"
	"runtime"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/math/curve"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// Phases of the coordinator, in order.
const (
	AwaitCreateElection               = "AwaitCreateElection"
	AwaitStartKeyCeremony             = "AwaitStartKeyCeremony"
	CollectPublicKeys                 = "CollectPublicKeys"
	CollectPartialKeyVerificationAcks = "CollectPartialKeyVerificationAcks"
	CollectVerificationAcks           = "CollectVerificationAcks"
	AwaitStartVote                    = "AwaitStartVote"
	CollectBallots                    = "CollectBallots"
	AwaitStartTally                   = "AwaitStartTally"
	CollectDecryptionShares           = "CollectDecryptionShares"
	TallyPublished                    = "TallyPublished"
)

type state = protocol.State[Context]

var states = []func() state{
	func() state { return &awaitCreateElection{} },
	func() state { return &awaitStartKeyCeremony{} },
	func() state { return &collectPublicKeys{} },
	func() state { return &collectPartialKeyVerificationAcks{} },
	func() state { return &collectVerificationAcks{} },
	func() state { return &awaitStartVote{} },
	func() state { return &collectBallots{} },
	func() state { return &awaitStartTally{} },
	func() state { return &collectDecryptionShares{} },
	func() state { return &tallyPublished{} },
}

func unknownGuardian(env protocol.Env, ctx *Context, id party.ID, typ string) bool {
	if ctx.Config.Guardians.Contains(id) {
		return false
	}
	env.Log.Info("ignoring message from unknown guardian", "guardian", id, "type", typ)
	return true
}

type awaitCreateElection struct{}

func (*awaitCreateElection) Name() string      { return AwaitCreateElection }
func (*awaitCreateElection) Accepts() []string { return []string{election.TypeCreateElection} }

func (*awaitCreateElection) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var creation election.Creation
	if err := msg.Decode(&creation); err != nil {
		return nil, nil, err
	}
	config, err := election.NewConfig(&creation)
	if err != nil {
		return nil, nil, err
	}
	ctx.Config = config
	ctx.PublicKeys = make(map[party.ID]curve.Point, config.NumberOfGuardians)
	env.Log.Info("election created", "election", config.Manifest.ElectionID, "guardians", config.NumberOfGuardians, "quorum", config.Quorum)
	return nil, &awaitStartKeyCeremony{}, nil
}

type awaitStartKeyCeremony struct{}

func (*awaitStartKeyCeremony) Name() string      { return AwaitStartKeyCeremony }
func (*awaitStartKeyCeremony) Accepts() []string { return []string{election.TypeStartKeyCeremony} }

func (*awaitStartKeyCeremony) Transition(protocol.Env, *protocol.Message, *Context) (*protocol.Message, state, error) {
	return nil, &collectPublicKeys{}, nil
}

type collectPublicKeys struct{}

func (*collectPublicKeys) Name() string      { return CollectPublicKeys }
func (*collectPublicKeys) Accepts() []string { return []string{election.TypeTrusteeElectionKeys} }

func (*collectPublicKeys) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var set election.PublicKeySet
	if err := msg.Decode(&set); err != nil {
		return nil, nil, err
	}
	if unknownGuardian(env, ctx, set.OwnerID, msg.Type) {
		return nil, nil, nil
	}
	if _, ok := ctx.PublicKeys[set.OwnerID]; ok {
		return nil, nil, nil
	}
	if order := ctx.Config.Guardians.SequenceOrder(set.OwnerID); set.SequenceOrder != order {
		return nil, nil, fmt.Errorf("%w: %q claims sequence order %d, roster says %d",
			election.ErrCryptographicOperation, set.OwnerID, set.SequenceOrder, order)
	}
	if len(set.Commitments) != ctx.Config.Quorum {
		return nil, nil, fmt.Errorf("%w: %q committed to %d coefficients, quorum is %d",
			election.ErrCryptographicOperation, set.OwnerID, len(set.Commitments), ctx.Config.Quorum)
	}
	if err := env.Crypto.VerifyPublicKeySet(&set); err != nil {
		return nil, nil, err
	}
	ctx.PublicKeys[set.OwnerID] = set.Key
	if len(ctx.PublicKeys) < ctx.Config.NumberOfGuardians {
		return nil, nil, nil
	}
	return nil, &collectPartialKeyVerificationAcks{Received: make(map[party.ID]bool)}, nil
}

// collectPartialKeyVerificationAcks waits until every guardian has published
// its backups. The backups are sealed to their recipients and only checked
// for shape here.
type collectPartialKeyVerificationAcks struct {
	Received map[party.ID]bool
}

func (*collectPartialKeyVerificationAcks) Name() string { return CollectPartialKeyVerificationAcks }
func (*collectPartialKeyVerificationAcks) Accepts() []string {
	return []string{election.TypeTrusteePartialKeys}
}

func (s *collectPartialKeyVerificationAcks) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var keys election.TrusteePartialKeys
	if err := msg.Decode(&keys); err != nil {
		return nil, nil, err
	}
	if unknownGuardian(env, ctx, keys.GuardianID, msg.Type) || s.Received[keys.GuardianID] {
		return nil, nil, nil
	}
	if len(keys.PartialKeys) != ctx.Config.NumberOfGuardians-1 {
		return nil, nil, fmt.Errorf("%w: %q sent %d backups for %d guardians",
			protocol.ErrInvalidMessage, keys.GuardianID, len(keys.PartialKeys), ctx.Config.NumberOfGuardians)
	}
	for _, b := range keys.PartialKeys {
		if b.OwnerID != keys.GuardianID || b.DesignatedID == keys.GuardianID || !ctx.Config.Guardians.Contains(b.DesignatedID) {
			return nil, nil, fmt.Errorf("%w: %q sent a backup from %q to %q",
				protocol.ErrInvalidMessage, keys.GuardianID, b.OwnerID, b.DesignatedID)
		}
	}
	if s.Received == nil {
		s.Received = make(map[party.ID]bool)
	}
	s.Received[keys.GuardianID] = true
	if !ctx.Config.Guardians.Complete(s.Received) {
		return nil, nil, nil
	}
	return nil, &collectVerificationAcks{Received: make(map[party.ID]bool)}, nil
}

type collectVerificationAcks struct {
	Received map[party.ID]bool
}

func (*collectVerificationAcks) Name() string      { return CollectVerificationAcks }
func (*collectVerificationAcks) Accepts() []string { return []string{election.TypeTrusteeVerification} }

func (s *collectVerificationAcks) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var ack election.TrusteeVerification
	if err := msg.Decode(&ack); err != nil {
		return nil, nil, err
	}
	if unknownGuardian(env, ctx, ack.GuardianID, msg.Type) || s.Received[ack.GuardianID] {
		return nil, nil, nil
	}
	for _, v := range ack.Verifications {
		if v.VerifierID != ack.GuardianID {
			return nil, nil, fmt.Errorf("%w: %q forwarded a verification by %q",
				protocol.ErrInvalidMessage, ack.GuardianID, v.VerifierID)
		}
		if !v.Verified {
			return nil, nil, fmt.Errorf("%w: %q could not verify the backup from %q",
				election.ErrCryptographicOperation, v.VerifierID, v.OwnerID)
		}
	}
	if !ack.Covers(ctx.Config.Guardians) {
		return nil, nil, fmt.Errorf("%w: %q did not verify the backup of every other guardian",
			protocol.ErrInvalidMessage, ack.GuardianID)
	}
	if s.Received == nil {
		s.Received = make(map[party.ID]bool)
	}
	s.Received[ack.GuardianID] = true
	if !ctx.Config.Guardians.Complete(s.Received) {
		return nil, nil, nil
	}

	joint, err := env.Crypto.CombineJointKey(ctx.guardianKeys())
	if err != nil {
		return nil, nil, err
	}
	ctx.Config = ctx.Config.WithJointKey(joint)
	out, err := protocol.NewMessage(election.TypeEndKeyCeremony, &election.JointElectionKey{JointKey: joint})
	if err != nil {
		return nil, nil, err
	}
	env.Log.Info("key ceremony complete", "election", ctx.Config.Manifest.ElectionID, "joint_key", joint)
	return out, &awaitStartVote{}, nil
}

type awaitStartVote struct{}

func (*awaitStartVote) Name() string      { return AwaitStartVote }
func (*awaitStartVote) Accepts() []string { return []string{election.TypeStartVote} }

func (*awaitStartVote) Transition(_ protocol.Env, _ *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	ctx.Tally = election.NewCiphertextTally(ctx.Config.Manifest.ElectionID, &ctx.Config.Manifest)
	return nil, &collectBallots{}, nil
}

// recordBallot validates b and folds it into the running tally. A ballot
// already in the tally is a no-op.
func recordBallot(env protocol.Env, ctx *Context, b *election.CiphertextBallot) error {
	if ctx.Tally.Cast[b.BallotID] {
		env.Log.V(1).Info("ignoring duplicate ballot", "ballot", b.BallotID)
		return nil
	}
	if err := env.Crypto.ValidateBallot(b, ctx.Config); err != nil {
		return err
	}
	if err := env.Crypto.AccumulateTally(b, ctx.Tally); err != nil {
		return err
	}
	env.Log.V(1).Info("ballot cast", "ballot", b.BallotID, "count", ctx.Tally.Count())
	return nil
}

type collectBallots struct{}

func (*collectBallots) Name() string      { return CollectBallots }
func (*collectBallots) Accepts() []string { return []string{election.TypeCast, election.TypeEndVote} }

func (*collectBallots) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	if msg.Type == election.TypeEndVote {
		env.Log.Info("voting closed", "ballots", ctx.Tally.Count())
		return nil, &awaitStartTally{}, nil
	}
	var b election.CiphertextBallot
	if err := msg.Decode(&b); err != nil {
		return nil, nil, err
	}
	if err := recordBallot(env, ctx, &b); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

type awaitStartTally struct{}

func (*awaitStartTally) Name() string      { return AwaitStartTally }
func (*awaitStartTally) Accepts() []string { return []string{election.TypeStartTally} }

func (*awaitStartTally) Transition(_ protocol.Env, _ *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	out, err := protocol.NewMessage(election.TypeTallyCast, ctx.Tally)
	if err != nil {
		return nil, nil, err
	}
	ctx.Shares = make(map[party.ID]*election.TrusteeShare, ctx.Config.NumberOfGuardians)
	return out, &collectDecryptionShares{}, nil
}

type collectDecryptionShares struct{}

func (*collectDecryptionShares) Name() string      { return CollectDecryptionShares }
func (*collectDecryptionShares) Accepts() []string { return []string{election.TypeTrusteeShare} }

func (*collectDecryptionShares) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var share election.TrusteeShare
	if err := msg.Decode(&share); err != nil {
		return nil, nil, err
	}
	if unknownGuardian(env, ctx, share.GuardianID, msg.Type) {
		return nil, nil, nil
	}
	if _, ok := ctx.Shares[share.GuardianID]; ok {
		return nil, nil, nil
	}
	if err := verifyShare(env, ctx, &share); err != nil {
		return nil, nil, err
	}
	ctx.Shares[share.GuardianID] = &share
	if len(ctx.Shares) < ctx.Config.NumberOfGuardians {
		return nil, nil, nil
	}

	result, err := decryptTally(env, ctx)
	if err != nil {
		return nil, nil, err
	}
	ctx.Result = result
	out, err := protocol.NewMessage(election.TypeEndTally, result)
	if err != nil {
		return nil, nil, err
	}
	env.Log.Info("tally published", "election", ctx.Config.Manifest.ElectionID, "ballots", ctx.Tally.Count())
	return out, &tallyPublished{}, nil
}

type tallyPublished struct{}

func (*tallyPublished) Name() string      { return TallyPublished }
func (*tallyPublished) Accepts() []string { return nil }

func (*tallyPublished) Transition(protocol.Env, *protocol.Message, *Context) (*protocol.Message, state, error) {
	return nil, nil, nil
}

// verifyShare checks that share holds exactly one valid partial decryption
// for every selection of the tally, contests in tally order, under the key the
// guardian used in the ceremony.
func verifyShare(env protocol.Env, ctx *Context, share *election.TrusteeShare) error {
	if !share.PublicKey.Equal(ctx.PublicKeys[share.GuardianID]) {
		return fmt.Errorf("%w: %q shared with a key it did not use in the ceremony",
			election.ErrCryptographicOperation, share.GuardianID)
	}
	if len(share.Contests) != len(ctx.Tally.Contests) {
		return fmt.Errorf("%w: %q sent shares for %d contests, the tally has %d",
			protocol.ErrInvalidMessage, share.GuardianID, len(share.Contests), len(ctx.Tally.Contests))
	}
	for i, c := range share.Contests {
		tallied := &ctx.Tally.Contests[i]
		if c.ContestID != tallied.ContestID || len(c.Selections) != len(tallied.Selections) {
			return fmt.Errorf("%w: %q sent a share for contest %q that does not match the tally",
				protocol.ErrInvalidMessage, share.GuardianID, c.ContestID)
		}
		covered := make(map[string]bool, len(c.Selections))
		for j := range c.Selections {
			s := &c.Selections[j]
			selection, ok := ctx.Tally.Selection(c.ContestID, s.SelectionID)
			if !ok || covered[s.SelectionID] || s.GuardianID != share.GuardianID {
				return fmt.Errorf("%w: %q sent an unexpected share for %s/%s",
					protocol.ErrInvalidMessage, share.GuardianID, c.ContestID, s.SelectionID)
			}
			covered[s.SelectionID] = true
			gs := &election.GuardianShare{PublicKey: share.PublicKey, Share: *s}
			if err := env.Crypto.VerifyDecryptionShare(gs, selection, ctx.Config.ExtendedBaseHash); err != nil {
				return err
			}
		}
	}
	return nil
}

// decryptTally combines the shares of every guardian, selection by
// selection, keeping the order of the tally.
func decryptTally(env protocol.Env, ctx *Context) (*election.PlaintextTally, error) {
	bySelection := make(map[string]map[party.ID]election.GuardianShare)
	for id, share := range ctx.Shares {
		for _, c := range share.Contests {
			for _, s := range c.Selections {
				if bySelection[s.SelectionID] == nil {
					bySelection[s.SelectionID] = make(map[party.ID]election.GuardianShare, len(ctx.Shares))
				}
				bySelection[s.SelectionID][id] = election.GuardianShare{PublicKey: share.PublicKey, Share: s}
			}
		}
	}

	result := &election.PlaintextTally{
		ID:       ctx.Tally.ID,
		Contests: make([]election.PlaintextTallyContest, len(ctx.Tally.Contests)),
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range ctx.Tally.Contests {
		contest := &ctx.Tally.Contests[i]
		result.Contests[i] = election.PlaintextTallyContest{
			ContestID:  contest.ContestID,
			Selections: make([]election.PlaintextTallySelection, len(contest.Selections)),
		}
		for j := range contest.Selections {
			i, j, selection := i, j, &contest.Selections[j]
			g.Go(func() error {
				plain, err := env.Crypto.CombineDecryptionShares(bySelection[selection.SelectionID], selection, ctx.Config.ExtendedBaseHash)
				if err != nil {
					return err
				}
				result.Contests[i].Selections[j] = *plain
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
