package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/faceattend/faceattend/internal/attendance"
	"github.com/faceattend/faceattend/internal/config"
	"github.com/faceattend/faceattend/internal/store"
	"github.com/faceattend/faceattend/internal/store/file"
	"github.com/faceattend/faceattend/internal/store/postgres"
)

var importCmd = &cobra.Command{
	Use:   "import <descriptors.json>",
	Short: "Import identities from a descriptor JSON dump",
	Long: `Import enrolled identities from a JSON file mapping names to
face descriptors, the format the browser kiosk keeps in local storage:

  {"Alice": [0.12, -0.04, ...], "Bob": [...]}

By default each identity goes through the same duplicate check as live
enrollment; use --force to overwrite without checking.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("force", false, "Skip the duplicate-face check and write descriptors directly")
}

// openIdentityStore selects the identity backend the same way serve does.
func openIdentityStore(cfg *config.Config) (store.IdentityWriter, func(), error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return postgres.NewIdentityRepository(pool), func() { pool.Close() }, nil
	}

	identities, err := file.NewIdentityStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open identity store: %w", err)
	}
	return identities, func() {}, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	force := mustGetBool(cmd, "force")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading descriptor file: %w", err)
	}

	var descriptors map[string][]float32
	if err := json.Unmarshal(data, &descriptors); err != nil {
		return fmt.Errorf("parsing descriptor file: %w", err)
	}
	if len(descriptors) == 0 {
		fmt.Println("No identities to import")
		return nil
	}

	identities, cleanup, err := openIdentityStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	names := make([]string, 0, len(descriptors))
	for name := range descriptors {
		names = append(names, name)
	}
	sort.Strings(names)

	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetDescription("Importing identities"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	recorder := attendance.NewRecorder(identities, nil, nil,
		cfg.Matcher.EnrollThreshold, cfg.Matcher.RecognizeThreshold)

	ctx := context.Background()
	var imported, skipped, failed int
	for _, name := range names {
		descriptor := descriptors[name]

		if force {
			if err := identities.Save(ctx, name, descriptor); err != nil {
				fmt.Printf("\nFailed to import %s: %v\n", name, err)
				failed++
			} else {
				imported++
			}
			bar.Add(1)
			continue
		}

		result, err := recorder.Enroll(ctx, name, descriptor)
		switch {
		case err != nil:
			fmt.Printf("\nFailed to import %s: %v\n", name, err)
			failed++
		case result.Outcome == attendance.OutcomeEnrolled:
			imported++
		default:
			fmt.Printf("\nSkipped %s: %s", name, result.Outcome)
			if result.MatchedName != "" {
				fmt.Printf(" (matches %s at distance %.3f)", result.MatchedName, result.Distance)
			}
			fmt.Println()
			skipped++
		}
		bar.Add(1)
	}

	fmt.Printf("\nImported %d identities (%d skipped, %d failed)\n", imported, skipped, failed)
	return nil
}
