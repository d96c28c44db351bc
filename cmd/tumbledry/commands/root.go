package commands

import (
	"fmt"
	"os"
	"tumbledry-backend/lib/configutil"
	"tumbledry-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

type PortalConfig struct {
	BaseUrl string `json:"base_url"`
	// run the browser with a visible window
	Headful bool `json:"headful"`
}

type GeocoderConfig struct {
	BaseUrl   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
}

type HarvestConfig struct {
	// store code shape, e.g. prefix "A" and width 3 produce A001..A999
	CodePrefix string `json:"code_prefix"`
	CodeWidth  int    `json:"code_width"`
}

type Config struct {
	Portal   PortalConfig   `json:"portal"`
	Database string         `json:"database"`
	Geocoder GeocoderConfig `json:"geocoder"`
	Harvest  HarvestConfig  `json:"harvest"`
}

var config Config

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tumbledry",
	Short: "tumbledry harvests store performance data from the TMS portal and serves it as an analytics API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		config = cfg
		if config.Portal.BaseUrl == "" {
			config.Portal.BaseUrl = "https://tms.simplifytumbledry.in"
		}
		if config.Database == "" {
			config.Database = "stores.db"
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
