package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joshuahsieh24/enviroGovernment/internal/config"
	"github.com/joshuahsieh24/enviroGovernment/internal/extract"
	internal_http "github.com/joshuahsieh24/enviroGovernment/internal/http"
	"github.com/joshuahsieh24/enviroGovernment/internal/log"
	"github.com/joshuahsieh24/enviroGovernment/internal/notify"
	internal_storage "github.com/joshuahsieh24/enviroGovernment/internal/storage"
	"github.com/joshuahsieh24/enviroGovernment/pkg/inference"
	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
	"github.com/joshuahsieh24/enviroGovernment/pkg/pipeline"
	"github.com/joshuahsieh24/enviroGovernment/pkg/storage"
)

func SetupCLI(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the evidence processing server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			store := initStore(cfg)
			defer store.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			controller := buildController(cfg, store)
			pool := pipeline.NewWorkerPool(ctx, controller, log.GetLogger())
			pool.Start(cfg.Workers)
			defer pool.Stop()

			go drainResults(pool)

			if err := internal_http.StartServer(cfg.HTTPPort, store, pool); err != nil {
				log.GetLogger().Errorf("Server stopped: %v", err)
				os.Exit(1)
			}
		},
	}

	processCmd := &cobra.Command{
		Use:   "process [file] [source-type]",
		Short: "Process a single evidence file synchronously",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			store := initStore(cfg)
			defer store.Close()

			controller := buildController(cfg, store)
			result := controller.Run(context.Background(), pipeline.RunInput{
				EvidenceID: uuid.New().String(),
				FilePath:   args[0],
				SourceType: args[1],
			})
			out, _ := json.MarshalIndent(result, "", "  ")
			fmt.Fprintf(os.Stdout, "%s\n", out)
			if result.Status != models.CompletedStatus {
				os.Exit(1)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all evidence records",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			store := initStore(cfg)
			defer store.Close()

			records, err := store.ListRecords()
			if err != nil {
				log.GetLogger().Errorf("Failed to list records: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to list records: %v\n", err)
				os.Exit(1)
			}
			if len(records) == 0 {
				fmt.Fprintf(os.Stdout, "No evidence records found.\n")
				return
			}
			fmt.Fprintf(os.Stdout, "Evidence records:\n")
			for _, r := range records {
				fmt.Fprintf(os.Stdout, "- ID: %s, File: %s, Status: %s, Created: %s\n",
					r.EvidenceID, r.FilePath, r.Status, r.CreatedAt.Format(time.RFC3339))
			}
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [evidence-id]",
		Short: "Show a single evidence record",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			store := initStore(cfg)
			defer store.Close()

			record, err := store.GetRecord(args[0])
			if err == storage.ErrNotFound {
				fmt.Fprintf(os.Stderr, "Evidence %s not found\n", args[0])
				os.Exit(1)
			}
			if err != nil {
				log.GetLogger().Errorf("Failed to get record: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to get record: %v\n", err)
				os.Exit(1)
			}
			out, _ := json.MarshalIndent(record, "", "  ")
			fmt.Fprintf(os.Stdout, "%s\n", out)
		},
	}

	gapsCmd := &cobra.Command{
		Use:   "gaps",
		Short: "List records with outstanding compliance gaps",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			store := initStore(cfg)
			defer store.Close()

			records, err := store.ListRecordsWithFindings()
			if err != nil {
				log.GetLogger().Errorf("Failed to list gap records: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to list gap records: %v\n", err)
				os.Exit(1)
			}
			if len(records) == 0 {
				fmt.Fprintf(os.Stdout, "No outstanding gaps.\n")
				return
			}
			for _, r := range records {
				gaps, expiring := 0, 0
				if r.GapReport != nil {
					gaps = r.GapReport.GapCount
					expiring = r.GapReport.ExpiringCount
				}
				fmt.Fprintf(os.Stdout, "- ID: %s, File: %s, Gaps: %d, Expiring: %d\n",
					r.EvidenceID, r.FilePath, gaps, expiring)
			}
		},
	}

	rootCmd.AddCommand(serveCmd, processCmd, listCmd, getCmd, gapsCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.GetLogger().Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	return cfg
}

func initStore(cfg *config.Config) storage.Store {
	store, err := internal_storage.InitStore(cfg.ConnString(), "file://migrations")
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}

func buildController(cfg *config.Config, store storage.Store) *pipeline.Controller {
	logger := log.GetLogger()
	gateway := inference.NewOllamaGateway(cfg.OllamaURL)
	mapper := pipeline.NewMapper(gateway, cfg.PrimaryModel, cfg.FallbackModel, logger)
	generator := pipeline.NewGenerator(gateway, cfg.PrimaryModel, cfg.FallbackModel, logger)

	var notifier pipeline.Notifier = notify.NoopNotifier{}
	if cfg.AlertWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.AlertWebhookURL)
	}

	return pipeline.NewController(
		store,
		extract.NewService(cfg.DataDir),
		notifier,
		mapper,
		pipeline.NewAnalyzer(),
		generator,
		logger,
	)
}

func drainResults(pool *pipeline.WorkerPool) {
	for result := range pool.Results() {
		log.GetLogger().Infof("Run finished: evidence=%s status=%s errors=%d",
			result.EvidenceID, result.Status, len(result.Errors))
	}
}
