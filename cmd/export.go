package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faceattend/faceattend/internal/config"
	"github.com/faceattend/faceattend/internal/report"
	"github.com/faceattend/faceattend/internal/store"
	"github.com/faceattend/faceattend/internal/store/file"
	"github.com/faceattend/faceattend/internal/store/postgres"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the attendance ledger as CSV",
	Long: `Export attendance records as CSV with a Name,Date,Time header.
Records can be filtered by exact date and by name substring
(case- and diacritic-insensitive).`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("date", "", "Only include records for this date (YYYY-MM-DD)")
	exportCmd.Flags().String("name", "", "Only include records whose name contains this substring")
	exportCmd.Flags().String("output", "", "Output file (defaults to stdout)")
}

// openLedger selects the ledger backend the same way serve does.
func openLedger(cfg *config.Config) (store.LedgerReader, func(), error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return postgres.NewLedgerRepository(pool), func() { pool.Close() }, nil
	}

	ledger, err := file.NewLedger(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attendance ledger: %w", err)
	}
	return ledger, func() {}, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ledger, cleanup, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	events, err := ledger.Events(context.Background())
	if err != nil {
		return fmt.Errorf("reading attendance ledger: %w", err)
	}

	filter := report.Filter{
		Date: mustGetString(cmd, "date"),
		Name: mustGetString(cmd, "name"),
	}
	events = filter.Apply(events)

	out := os.Stdout
	if path := mustGetString(cmd, "output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.WriteCSV(out, events); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	if out != os.Stdout {
		fmt.Printf("Exported %d records\n", len(events))
	}
	return nil
}
