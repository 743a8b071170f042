package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataDir string
	verbose bool

	// Simulation options
	guardians     int
	quorum        int
	votes         map[string]int
	blank         int
	manifestFile  string
	deterministic bool
	save          bool

	outputFile string

	// Root command
	rootCmd = &cobra.Command{
		Use:   "election-cli",
		Short: "CLI tool for threshold election protocols",
		Long: `A CLI tool for running and inspecting threshold elections: the key
ceremony between guardians, encrypted ballot casting and the joint
decryption of the tally.`,
		SilenceUsage: true,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Simulate an election",
		Long:  `Run a coordinator, guardians and voters in process, from create_election to the published tally`,
		RunE:  runSimulation,
	}

	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Write a sample election manifest",
		Long:  `Write a sample election manifest as JSON, to be edited and passed to simulate --manifest`,
		RunE:  runManifest,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect <snapshot>...",
		Short: "Describe actor snapshots",
		Long:  `Print the role, phase and version of saved actor snapshots`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInspect,
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Display protocol information",
		Long:  `Display the phases of every role and the messages they exchange`,
		RunE:  runInfo,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./election-data", "Directory for saved snapshots")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Simulate flags
	simulateCmd.Flags().IntVarP(&guardians, "guardians", "N", 3, "Number of guardians")
	simulateCmd.Flags().IntVarP(&quorum, "quorum", "t", 0, "Decryption quorum (0 = all guardians)")
	simulateCmd.Flags().StringToIntVar(&votes, "votes", nil, "Ballots per selection id, e.g. yes=3,no=1")
	simulateCmd.Flags().IntVar(&blank, "blank", 0, "Number of blank ballots")
	simulateCmd.Flags().StringVarP(&manifestFile, "manifest", "m", "", "Manifest JSON file (default: sample referendum)")
	simulateCmd.Flags().BoolVar(&deterministic, "deterministic", false, "Derive ballot randomness from the joint key")
	simulateCmd.Flags().BoolVar(&save, "save", false, "Save actor snapshots to the data directory")

	// Manifest flags
	manifestCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	// Add subcommands
	rootCmd.AddCommand(simulateCmd, manifestCmd, inspectCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() logr.Logger {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
