package commands

import (
	"context"
	"os"
	"tumbledry-backend/lib/recordstore"
	"tumbledry-backend/lib/recordstore/db"
	"tumbledry-backend/lib/serviceutil"
	"tumbledry-backend/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var storesDb string

func init() {
	storesCmd.Flags().StringVar(&storesDb, "db", "", "database path, overrides the config file")
	rootCmd.AddCommand(storesCmd)
}

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Prints the harvested store records.",
	Run: func(cmd *cobra.Command, args []string) {
		dbPath := config.Database
		if storesDb != "" {
			dbPath = storesDb
		}
		database, err := sqliteutil.OpenDB(db.Schema, dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer database.Close()

		store := recordstore.NewStore(database)
		records, err := store.List(context.Background())
		if err != nil {
			serviceutil.Fatal("failed to list stores", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Code", "Name", "City", "State", "Status", "Launched", "Months"})

		rows := make([]table.Row, len(records))
		for i, rec := range records {
			rows[i] = table.Row{
				rec.StoreCode,
				rec.StoreName,
				rec.City,
				rec.State,
				rec.Status,
				rec.LaunchDate,
				len(rec.YearlyData),
			}
		}

		t.AppendRows(rows)
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
