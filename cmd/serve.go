package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/faceattend/faceattend/internal/attendance"
	"github.com/faceattend/faceattend/internal/config"
	"github.com/faceattend/faceattend/internal/extractor"
	"github.com/faceattend/faceattend/internal/store/file"
	"github.com/faceattend/faceattend/internal/store/postgres"
	"github.com/faceattend/faceattend/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the Face Attend API server.
The server accepts enrollment and attendance marking from the browser
kiosk and serves the attendance dashboard endpoints.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// initIdentityHNSW builds or loads the identity HNSW index for fast matching.
func initIdentityHNSW(ctx context.Context, repo *postgres.IdentityRepository, indexPath string) {
	if indexPath != "" {
		fmt.Printf("Loading identity HNSW index from %s...\n", indexPath)
	} else {
		fmt.Printf("Building in-memory HNSW index for identity matching...\n")
	}
	if err := repo.EnableHNSW(ctx, indexPath); err != nil {
		fmt.Printf("Warning: Failed to build identity HNSW index: %v\n", err)
		fmt.Printf("Nearest-identity search will use PostgreSQL queries (slower)\n")
	} else if indexPath != "" {
		fmt.Printf("Identity HNSW index ready with %d identities (persisted to %s)\n", repo.HNSWCount(), indexPath)
	} else {
		fmt.Printf("Identity HNSW index built with %d identities (in-memory only)\n", repo.HNSWCount())
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	var (
		wb       web.Backends
		recorder *attendance.Recorder
		cleanup  func()
	)

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	if cfg.Database.URL != "" {
		fmt.Printf("Connecting to PostgreSQL database...\n")
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}

		identityRepo := postgres.NewIdentityRepository(pool)
		ledgerRepo := postgres.NewLedgerRepository(pool)
		initIdentityHNSW(ctx, identityRepo, cfg.Database.HNSWIndexPath)
		fmt.Printf("Using PostgreSQL backend\n")

		recorder = attendance.NewRecorder(identityRepo, ledgerRepo, provider,
			cfg.Matcher.EnrollThreshold, cfg.Matcher.RecognizeThreshold)
		wb = web.Backends{Identities: identityRepo, Searcher: identityRepo, Ledger: ledgerRepo}
		cleanup = func() {
			if err := identityRepo.SaveHNSWIndex(); err != nil {
				fmt.Printf("Warning: failed to save identity HNSW index: %v\n", err)
			}
			pool.Close()
		}
	} else {
		identityStore, err := file.NewIdentityStore(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open identity store: %w", err)
		}
		ledger, err := file.NewLedger(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open attendance ledger: %w", err)
		}
		fmt.Printf("Using file backend at %s\n", cfg.Storage.DataDir)

		recorder = attendance.NewRecorder(identityStore, ledger, provider,
			cfg.Matcher.EnrollThreshold, cfg.Matcher.RecognizeThreshold)
		wb = web.Backends{Identities: identityStore, Searcher: identityStore, Ledger: ledger}
		cleanup = func() {}
	}

	server := web.NewServer(cfg, recorder, wb)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cleanup()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Matching with model %s (dim %d, enroll < %.2f, recognize < %.2f)\n",
		cfg.Matcher.Model, cfg.Matcher.Dim, cfg.Matcher.EnrollThreshold, cfg.Matcher.RecognizeThreshold)
	fmt.Printf("Starting Face Attend API on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// buildProvider wires the descriptor extraction service if configured.
// Without it the API still works with browser-computed descriptors.
func buildProvider(cfg *config.Config) (extractor.Provider, error) {
	if cfg.Extractor.URL == "" {
		fmt.Println("No EXTRACTOR_URL configured; image capture endpoints are disabled")
		return nil, nil
	}
	provider, err := extractor.NewHTTPProvider(cfg.Extractor.URL, cfg.Matcher.Model,
		time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("configuring extraction provider: %w", err)
	}
	fmt.Printf("Descriptor extraction via %s (model %s)\n", cfg.Extractor.URL, provider.Name())
	return provider, nil
}
