package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/luxfi/election/internal/test"
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/party"
	"github.com/luxfi/election/pkg/protocol"
	"github.com/luxfi/election/protocols/coordinator"
	"github.com/luxfi/election/protocols/guardian"
	"github.com/luxfi/election/protocols/voter"
	"github.com/spf13/cobra"
)

// snapshotter is implemented by every actor.
type snapshotter interface {
	Snapshot() ([]byte, error)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := newLogger()
	manifest, err := loadManifest(manifestFile)
	if err != nil {
		return err
	}
	if quorum == 0 {
		quorum = guardians
	}
	ballots, err := plannedBallots(&manifest)
	if err != nil {
		return err
	}

	ids := make(party.IDSlice, guardians)
	for i := range ids {
		ids[i] = party.ID(fmt.Sprintf("guardian-%d", i+1))
	}
	creation := &election.Creation{
		Description: manifest,
		Scheme: election.Scheme{
			Name:       "electionguard",
			Parameters: election.SchemeParameters{Quorum: quorum},
		},
	}
	for _, id := range ids {
		creation.Trustees = append(creation.Trustees, election.Trustee{Name: id})
	}

	opts := []protocol.Option{protocol.WithLogger(log)}
	c := coordinator.New(opts...)
	network := test.NewNetwork(log.WithName("network"))
	network.Join(coordinator.Role, c)
	actors := map[string]snapshotter{coordinator.Role: c}
	for _, id := range ids {
		g := guardian.New(id, opts...)
		network.Join(string(id), g)
		actors[string(id)] = g
	}

	fmt.Printf("\n=== Election Simulation ===\n")
	fmt.Printf("Election: %s\n", manifest.ElectionID)
	fmt.Printf("Guardians: %d\n", guardians)
	fmt.Printf("Quorum: %d\n", quorum)
	fmt.Printf("Ballots: %d\n", len(ballots))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	create, err := protocol.NewMessage(election.TypeCreateElection, creation)
	if err != nil {
		return err
	}
	out, err := broadcast(ctx, network, create, election.TypeStartKeyCeremony)
	if err != nil {
		return fmt.Errorf("key ceremony failed: %w", err)
	}
	joint := test.Last(out, election.TypeEndKeyCeremony)
	if joint == nil {
		return fmt.Errorf("key ceremony did not publish a joint key")
	}
	fmt.Printf("Key ceremony: %v\n", time.Since(start))

	start = time.Now()
	if _, err := broadcast(ctx, network, nil, election.TypeStartVote); err != nil {
		return err
	}
	for _, selections := range ballots {
		if err := castBallot(ctx, network, log, opts, create, joint, selections); err != nil {
			return err
		}
	}
	fmt.Printf("Voting: %v\n", time.Since(start))

	start = time.Now()
	out, err = broadcast(ctx, network, nil, election.TypeEndVote, election.TypeStartTally)
	if err != nil {
		return fmt.Errorf("tally failed: %w", err)
	}
	if test.Last(out, election.TypeEndTally) == nil {
		return fmt.Errorf("tally was not published")
	}
	fmt.Printf("Tally: %v\n", time.Since(start))

	result, err := c.Result()
	if err != nil {
		return err
	}
	printResult(&manifest, result)

	if save {
		return saveSnapshots(actors)
	}
	return nil
}

// plannedBallots expands --votes and --blank into one selection map per ballot.
func plannedBallots(m *election.Manifest) ([]map[string]map[string]bool, error) {
	if len(votes) == 0 && blank == 0 {
		// one ballot for the first option of every contest
		selections := make(map[string]map[string]bool)
		for _, c := range m.Contests {
			if len(c.Selections) > 0 {
				selections[c.ID] = map[string]bool{c.Selections[0].ID: true}
			}
		}
		return []map[string]map[string]bool{selections}, nil
	}

	contestOf := make(map[string]string)
	for _, c := range m.Contests {
		for _, s := range c.Selections {
			contestOf[s.ID] = c.ID
		}
	}
	// sorted for reproducible ballot order
	selectionIDs := make([]string, 0, len(votes))
	for id := range votes {
		selectionIDs = append(selectionIDs, id)
	}
	sort.Strings(selectionIDs)

	var ballots []map[string]map[string]bool
	for _, id := range selectionIDs {
		contest, ok := contestOf[id]
		if !ok {
			return nil, fmt.Errorf("unknown selection %q", id)
		}
		for i := 0; i < votes[id]; i++ {
			ballots = append(ballots, map[string]map[string]bool{contest: {id: true}})
		}
	}
	for i := 0; i < blank; i++ {
		ballots = append(ballots, nil)
	}
	return ballots, nil
}

func castBallot(ctx context.Context, network *test.Network, log logr.Logger, opts []protocol.Option, create, joint *protocol.Message, selections map[string]map[string]bool) error {
	v := voter.New(uuid.NewString(), "", opts...)
	for _, msg := range []*protocol.Message{create, joint} {
		if _, err := v.Process(msg); err != nil {
			return fmt.Errorf("voter %s: %w", v.BallotID(), err)
		}
	}
	cast, err := v.Cast(selections, deterministic)
	if err != nil {
		return fmt.Errorf("voter %s: %w", v.BallotID(), err)
	}
	log.V(1).Info("casting ballot", "ballot", v.BallotID())
	_, err = network.Broadcast(ctx, cast)
	return err
}

// broadcast sends msg, if any, followed by empty messages of the given types.
func broadcast(ctx context.Context, network *test.Network, msg *protocol.Message, types ...string) ([]*protocol.Message, error) {
	var msgs []*protocol.Message
	if msg != nil {
		msgs = append(msgs, msg)
	}
	for _, typ := range types {
		m, err := protocol.NewMessage(typ, nil)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return network.Broadcast(ctx, msgs...)
}

func printResult(m *election.Manifest, result *election.PlaintextTally) {
	fmt.Printf("\n=== Results ===\n")
	for _, contest := range result.Contests {
		name := contest.ContestID
		if c, ok := m.Contest(contest.ContestID); ok && c.Name != "" {
			name = c.Name
		}
		fmt.Printf("%s\n", name)
		for _, s := range contest.Selections {
			fmt.Printf("  %-20s %d\n", s.SelectionID, s.Tally)
		}
	}
}

func saveSnapshots(actors map[string]snapshotter) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	for name, actor := range actors {
		data, err := actor.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", name, err)
		}
		path := filepath.Join(dataDir, name+".snapshot")
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
		fmt.Printf("Saved %s\n", path)
	}
	return nil
}
