package commands

import (
	"context"
	"time"
	"tumbledry-backend/lib/recordstore"
	"tumbledry-backend/lib/recordstore/db"
	"tumbledry-backend/lib/serviceutil"
	"tumbledry-backend/lib/sqliteutil"
	"tumbledry-backend/lib/telemetry"
	"tumbledry-backend/services/analytics"

	"github.com/spf13/cobra"
)

var (
	servePort int
	serveDb   string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 5000, "port to serve the analytics API on")
	serveCmd.Flags().StringVar(&serveDb, "db", "", "database path, overrides the config file")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analytics API over the harvested records.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		err := telemetry.SetupFromEnv(ctx, "tumbledry:serve")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			defer cancel()
			telemetry.Shutdown(shutdownCtx)
		}()

		dbPath := config.Database
		if serveDb != "" {
			dbPath = serveDb
		}
		database, err := sqliteutil.OpenDB(db.Schema, dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer database.Close()

		svc := analytics.NewService(recordstore.NewStore(database))
		serviceutil.StartHttpServer(servePort, svc.Router())
	},
}
