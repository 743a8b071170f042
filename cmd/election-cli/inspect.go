package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/protocol"
	"github.com/luxfi/election/protocols/coordinator"
	"github.com/luxfi/election/protocols/guardian"
	"github.com/luxfi/election/protocols/voter"
	"github.com/spf13/cobra"
)

func runInspect(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tROLE\tPHASE\tVERSION\tSIZE")
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		info, err := protocol.Inspect(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := restore(info.Role, data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", path, info.Role, info.State, info.Version, info.Size)
	}
	return w.Flush()
}

// restore checks that a snapshot can be resumed by its role.
func restore(role string, data []byte) error {
	var err error
	switch role {
	case coordinator.Role:
		_, err = coordinator.Restore(data)
	case guardian.Role:
		_, err = guardian.Restore(data)
	case voter.Role:
		_, err = voter.Restore(data)
	default:
		err = fmt.Errorf("%w: unknown role %q", protocol.ErrSnapshot, role)
	}
	return err
}

func runInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Election Protocol Information ===")

	phases := []struct {
		role   string
		phases []string
	}{
		{coordinator.Role, []string{
			coordinator.AwaitCreateElection, coordinator.AwaitStartKeyCeremony, coordinator.CollectPublicKeys,
			coordinator.CollectPartialKeyVerificationAcks, coordinator.CollectVerificationAcks, coordinator.AwaitStartVote,
			coordinator.CollectBallots, coordinator.AwaitStartTally, coordinator.CollectDecryptionShares, coordinator.TallyPublished,
		}},
		{guardian.Role, []string{
			guardian.AwaitCreateElection, guardian.AwaitStartKeyCeremony, guardian.CollectPublicKeys,
			guardian.CollectPartialKeyBackups, guardian.CollectVerificationAcks, guardian.AwaitEndKeyCeremony,
			guardian.ComputeTallyShare, guardian.ShareSubmitted,
		}},
		{voter.Role, []string{voter.AwaitCreateElection, voter.AwaitJointKey, voter.Ready}},
	}
	for _, p := range phases {
		fmt.Fprintf(out, "\n%s:\n", p.role)
		for i, phase := range p.phases {
			fmt.Fprintf(out, "  %2d. %s\n", i+1, phase)
		}
	}

	fmt.Fprintln(out, "\nMessages:")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, m := range []struct{ typ, from, to string }{
		{election.TypeCreateElection, "external", "all"},
		{election.TypeStartKeyCeremony, "external", "coordinator, guardians"},
		{election.TypeTrusteeElectionKeys, "guardian", "coordinator, guardians"},
		{election.TypeTrusteePartialKeys, "guardian", "coordinator, guardians"},
		{election.TypeTrusteeVerification, "guardian", "coordinator, guardians"},
		{election.TypeEndKeyCeremony, "coordinator", "guardians, voters"},
		{election.TypeStartVote, "external", "coordinator"},
		{election.TypeCast, "voter", "coordinator"},
		{election.TypeEndVote, "external", "coordinator"},
		{election.TypeStartTally, "external", "coordinator"},
		{election.TypeTallyCast, "coordinator", "guardians"},
		{election.TypeTrusteeShare, "guardian", "coordinator"},
		{election.TypeEndTally, "coordinator", "external"},
	} {
		fmt.Fprintf(w, "  %s\t%s\t-> %s\n", m.typ, m.from, m.to)
	}
	return w.Flush()
}
