package guardian

import (
	"fmt"
	"runtime"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// Phases of a guardian, in order.
const (
	AwaitCreateElection      = "AwaitCreateElection"
	AwaitStartKeyCeremony    = "AwaitStartKeyCeremony"
	CollectPublicKeys        = "CollectPublicKeys"
	CollectPartialKeyBackups = "CollectPartialKeyBackups"
	CollectVerificationAcks  = "CollectVerificationAcks"
	AwaitEndKeyCeremony      = "AwaitEndKeyCeremony"
	ComputeTallyShare        = "ComputeTallyShare"
	ShareSubmitted           = "ShareSubmitted"
)

type state = protocol.State[Context]

var states = []func() state{
	func() state { return &awaitCreateElection{} },
	func() state { return &awaitStartKeyCeremony{} },
	func() state { return &collectPublicKeys{} },
	func() state { return &collectPartialKeyBackups{} },
	func() state { return &collectVerificationAcks{} },
	func() state { return &awaitEndKeyCeremony{} },
	func() state { return &computeTallyShare{} },
	func() state { return &shareSubmitted{} },
}

// skip reports whether a message from id must be discarded: it is our own
// broadcast echoed back, or it comes from outside the roster.
func skip(env protocol.Env, ctx *Context, id party.ID, typ string) bool {
	if id == ctx.ID {
		return true
	}
	if !ctx.Config.Guardians.Contains(id) {
		env.Log.Info("ignoring message from unknown guardian", "guardian", id, "type", typ)
		return true
	}
	return false
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
	order := config.Guardians.SequenceOrder(ctx.ID)
	if order == 0 {
		return nil, nil, fmt.Errorf("%w: %q is not a trustee", election.ErrInvalidElectionDescription, ctx.ID)
	}
	share, set, err := env.Crypto.GenerateKeyShare(ctx.ID, order, config.NumberOfGuardians, config.Quorum)
	if err != nil {
		return nil, nil, err
	}
	ctx.Config = config
	ctx.Share = share
	ctx.PublicKeys = map[party.ID]*election.PublicKeySet{ctx.ID: set}
	ctx.Backups = make(map[party.ID]*election.PartialKeyBackup, config.NumberOfGuardians-1)
	ctx.Verifications = make(map[party.ID]*election.PartialKeyVerification, config.NumberOfGuardians-1)
	env.Log.Info("key share generated", "election", config.Manifest.ElectionID, "order", order)
	return nil, &awaitStartKeyCeremony{}, nil
}

type awaitStartKeyCeremony struct{}

func (*awaitStartKeyCeremony) Name() string      { return AwaitStartKeyCeremony }
func (*awaitStartKeyCeremony) Accepts() []string { return []string{election.TypeStartKeyCeremony} }

func (*awaitStartKeyCeremony) Transition(_ protocol.Env, _ *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	out, err := protocol.NewMessage(election.TypeTrusteeElectionKeys, ctx.PublicKeys[ctx.ID])
	if err != nil {
		return nil, nil, err
	}
	return out, &collectPublicKeys{}, nil
}

type collectPublicKeys struct{}

func (*collectPublicKeys) Name() string      { return CollectPublicKeys }
func (*collectPublicKeys) Accepts() []string { return []string{election.TypeTrusteeElectionKeys} }

func (*collectPublicKeys) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var set election.PublicKeySet
	if err := msg.Decode(&set); err != nil {
		return nil, nil, err
	}
	if skip(env, ctx, set.OwnerID, msg.Type) {
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
	ctx.PublicKeys[set.OwnerID] = &set
	if len(ctx.PublicKeys) < ctx.Config.NumberOfGuardians {
		return nil, nil, nil
	}

	backups := make([]election.PartialKeyBackup, 0, ctx.Config.NumberOfGuardians-1)
	for _, id := range ctx.others() {
		backup, err := env.Crypto.SharePartialKeyBackup(ctx.Share, ctx.PublicKeys[id])
		if err != nil {
			return nil, nil, err
		}
		backups = append(backups, *backup)
	}
	out, err := protocol.NewMessage(election.TypeTrusteePartialKeys, &election.TrusteePartialKeys{
		GuardianID:  ctx.ID,
		PartialKeys: backups,
	})
	if err != nil {
		return nil, nil, err
	}
	return out, &collectPartialKeyBackups{}, nil
}

type collectPartialKeyBackups struct{}

func (*collectPartialKeyBackups) Name() string      { return CollectPartialKeyBackups }
func (*collectPartialKeyBackups) Accepts() []string { return []string{election.TypeTrusteePartialKeys} }

func (*collectPartialKeyBackups) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var keys election.TrusteePartialKeys
	if err := msg.Decode(&keys); err != nil {
		return nil, nil, err
	}
	if skip(env, ctx, keys.GuardianID, msg.Type) {
		return nil, nil, nil
	}
	if _, ok := ctx.Backups[keys.GuardianID]; ok {
		return nil, nil, nil
	}
	var backup *election.PartialKeyBackup
	for i := range keys.PartialKeys {
		if keys.PartialKeys[i].DesignatedID == ctx.ID {
			backup = &keys.PartialKeys[i]
			break
		}
	}
	if backup == nil || backup.OwnerID != keys.GuardianID {
		return nil, nil, fmt.Errorf("%w: no backup from %q for %q", protocol.ErrInvalidMessage, keys.GuardianID, ctx.ID)
	}
	verification, err := env.Crypto.VerifyPartialKeyBackup(ctx.Share, backup, ctx.PublicKeys[keys.GuardianID])
	if err != nil {
		return nil, nil, err
	}
	if !verification.Verified {
		return nil, nil, fmt.Errorf("%w: backup from %q does not match its commitments",
			election.ErrCryptographicOperation, keys.GuardianID)
	}
	ctx.Backups[keys.GuardianID] = backup
	ctx.Verifications[keys.GuardianID] = verification
	if len(ctx.Backups) < ctx.Config.NumberOfGuardians-1 {
		return nil, nil, nil
	}

	ack := &election.TrusteeVerification{GuardianID: ctx.ID}
	for _, id := range ctx.others() {
		ack.Verifications = append(ack.Verifications, *ctx.Verifications[id])
	}
	out, err := protocol.NewMessage(election.TypeTrusteeVerification, ack)
	if err != nil {
		return nil, nil, err
	}
	return out, &collectVerificationAcks{Received: make(map[party.ID]bool)}, nil
}

// collectVerificationAcks waits for every other guardian to confirm the
// backups it received.
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
	if skip(env, ctx, ack.GuardianID, msg.Type) || s.Received[ack.GuardianID] {
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
	if !ctx.others().Complete(s.Received) {
		return nil, nil, nil
	}
	return nil, &awaitEndKeyCeremony{}, nil
}

type awaitEndKeyCeremony struct{}

func (*awaitEndKeyCeremony) Name() string      { return AwaitEndKeyCeremony }
func (*awaitEndKeyCeremony) Accepts() []string { return []string{election.TypeEndKeyCeremony} }

func (*awaitEndKeyCeremony) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var joint election.JointElectionKey
	if err := msg.Decode(&joint); err != nil {
		return nil, nil, err
	}
	expected, err := env.Crypto.CombineJointKey(ctx.guardianKeys())
	if err != nil {
		return nil, nil, err
	}
	if !joint.JointKey.Equal(expected) {
		return nil, nil, fmt.Errorf("%w: published joint key does not combine the ceremony keys",
			election.ErrCryptographicOperation)
	}
	ctx.Config = ctx.Config.WithJointKey(joint.JointKey)
	env.Log.Info("key ceremony complete", "election", ctx.Config.Manifest.ElectionID)
	return nil, &computeTallyShare{}, nil
}

type computeTallyShare struct{}

func (*computeTallyShare) Name() string      { return ComputeTallyShare }
func (*computeTallyShare) Accepts() []string { return []string{election.TypeTallyCast} }

func (*computeTallyShare) Transition(env protocol.Env, msg *protocol.Message, ctx *Context) (*protocol.Message, state, error) {
	var tally election.CiphertextTally
	if err := msg.Decode(&tally); err != nil {
		return nil, nil, err
	}
	contests, err := decryptionShares(env, ctx, &tally)
	if err != nil {
		return nil, nil, err
	}
	out, err := protocol.NewMessage(election.TypeTrusteeShare, &election.TrusteeShare{
		GuardianID: ctx.ID,
		PublicKey:  ctx.Share.PublicKey(),
		Contests:   contests,
	})
	if err != nil {
		return nil, nil, err
	}
	env.Log.Info("decryption share computed", "ballots", tally.Count())
	return out, &shareSubmitted{}, nil
}

type shareSubmitted struct{}

func (*shareSubmitted) Name() string      { return ShareSubmitted }
func (*shareSubmitted) Accepts() []string { return nil }

func (*shareSubmitted) Transition(protocol.Env, *protocol.Message, *Context) (*protocol.Message, state, error) {
	return nil, nil, nil
}

// decryptionShares partially decrypts every selection of tally, keeping its order.
func decryptionShares(env protocol.Env, ctx *Context, tally *election.CiphertextTally) ([]election.ContestShare, error) {
	for _, contest := range tally.Contests {
		manifest, ok := ctx.Config.Manifest.Contest(contest.ContestID)
		if !ok || len(manifest.Selections) != len(contest.Selections) {
			return nil, fmt.Errorf("%w: tally contest %q does not match the manifest", protocol.ErrInvalidMessage, contest.ContestID)
		}
		for j, selection := range contest.Selections {
			if selection.SelectionID != manifest.Selections[j].ID {
				return nil, fmt.Errorf("%w: tally selection %q does not match the manifest", protocol.ErrInvalidMessage, selection.SelectionID)
			}
		}
	}

	out := make([]election.ContestShare, len(tally.Contests))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range tally.Contests {
		contest := &tally.Contests[i]
		out[i] = election.ContestShare{
			ContestID:  contest.ContestID,
			Selections: make([]election.SelectionShare, len(contest.Selections)),
		}
		for j := range contest.Selections {
			i, j, selection := i, j, &contest.Selections[j]
			g.Go(func() error {
				share, err := env.Crypto.ComputeDecryptionShare(ctx.Share, selection, ctx.Config)
				if err != nil {
					return err
				}
				out[i].Selections[j] = *share
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
