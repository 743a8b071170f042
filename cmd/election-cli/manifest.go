package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/luxfi/election/pkg/election"
	"github.com/spf13/cobra"
)

func sampleManifest() election.Manifest {
	return election.Manifest{
		ElectionID: "sample-referendum",
		Name:       "Sample Referendum",
		Contests: []election.Contest{{
			ID:           "referendum",
			Name:         "Should the proposal be adopted?",
			VotesAllowed: 1,
			Selections: []election.Selection{
				{ID: "yes", Name: "Yes"},
				{ID: "no", Name: "No"},
			},
		}},
	}
}

func loadManifest(path string) (election.Manifest, error) {
	if path == "" {
		return sampleManifest(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return election.Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m election.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return election.Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}

func runManifest(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(sampleManifest(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if outputFile == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Manifest written to %s\n", outputFile)
	return nil
}
