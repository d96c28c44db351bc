package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"
	"tumbledry-backend/lib/geocode"
	"tumbledry-backend/lib/recordstore"
	"tumbledry-backend/lib/recordstore/db"
	"tumbledry-backend/lib/scrapers/tumbledry"
	"tumbledry-backend/lib/serviceutil"
	"tumbledry-backend/lib/sqliteutil"
	"tumbledry-backend/lib/telemetry"
	"tumbledry-backend/services/harvester"

	"github.com/spf13/cobra"
)

var (
	harvestStart int
	harvestCount int
	harvestDb    string
)

func init() {
	harvestCmd.Flags().IntVar(&harvestStart, "start", 1, "first store index in the range")
	harvestCmd.Flags().IntVar(&harvestCount, "count", 100, "how many store codes to harvest")
	harvestCmd.Flags().StringVar(&harvestDb, "db", "", "database path, overrides the config file")
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Logs into the portal and harvests a range of store codes into the database.",
	Run: func(cmd *cobra.Command, args []string) {
		// fail on missing credentials before spending a browser launch
		username := os.Getenv("TUMBLEDRY_USERNAME")
		password := os.Getenv("TUMBLEDRY_PASSWORD")
		if username == "" || password == "" || username == "your_username" {
			serviceutil.Fatal(
				"TUMBLEDRY_USERNAME and TUMBLEDRY_PASSWORD must be set",
				errors.New("missing credentials"),
			)
		}

		ctx := serviceutil.SignalContext()
		err := telemetry.SetupFromEnv(ctx, "tumbledry:harvest")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			defer cancel()
			telemetry.Shutdown(shutdownCtx)
		}()

		dbPath := config.Database
		if harvestDb != "" {
			dbPath = harvestDb
		}
		database, err := sqliteutil.OpenDB(db.Schema, dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer database.Close()

		browser, err := tumbledry.NewBrowser(ctx, tumbledry.BrowserOptions{
			Headful: config.Portal.Headful,
		})
		if err != nil {
			serviceutil.Fatal("failed to launch browser", err)
		}
		defer browser.Close()

		client, err := tumbledry.NewClient(browser, tumbledry.ClientOptions{
			BaseUrl: config.Portal.BaseUrl,
		})
		if err != nil {
			serviceutil.Fatal("invalid portal base url", err)
		}

		err = client.Login(ctx, username, password)
		if err != nil {
			serviceutil.Fatal("login failed", err)
		}

		svc := harvester.NewService(
			client,
			recordstore.NewStore(database),
			geocode.NewClient(geocode.ClientOptions{
				BaseUrl:   config.Geocoder.BaseUrl,
				UserAgent: config.Geocoder.UserAgent,
			}),
			harvester.Options{
				CodePrefix: config.Harvest.CodePrefix,
				CodeWidth:  config.Harvest.CodeWidth,
			},
		)

		summary, err := svc.HarvestRange(ctx, harvestStart, harvestCount)
		if err != nil {
			slog.Error(
				"harvest aborted",
				"err", err,
				"attempted", summary.Attempted,
				"saved", summary.Saved,
			)
			os.Exit(1)
		}
		slog.Info(
			"harvest finished",
			"attempted", summary.Attempted,
			"saved", summary.Saved,
			"failed", summary.Failed,
			"expired_sessions", summary.ExpiredSessions,
		)
	},
}
