package main

import (
	"os"

	"github.com/shiftcal/shiftcal/internal/app"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "shiftcal",
		Short:         "Sync shifts from the crew scheduling site to Google Calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to configuration file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Scrape the schedule and reconcile the calendar once",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApplication(configPath)
			if err != nil {
				return err
			}
			report, err := application.Deps().SyncService.Run(cmd.Context())
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				log.Warnf("%d events failed to sync, see the run report for details", report.Failed)
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP sync trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApplication(configPath)
			if err != nil {
				return err
			}
			return application.Run()
		},
	})

	var dryRun bool
	dedupeCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Delete duplicate future events sharing a natural key",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApplication(configPath)
			if err != nil {
				return err
			}
			report, err := application.Deps().SyncService.Dedupe(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			log.Infof("Dedupe finished: %d duplicate groups, %d events deleted (dry run: %v)",
				report.Groups, len(report.DeletedIds), report.DryRun)
			return nil
		},
	}
	dedupeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report duplicates without deleting them")
	rootCmd.AddCommand(dedupeCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
