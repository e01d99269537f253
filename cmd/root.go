package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"o365sync/internal/bigip"
	"o365sync/internal/config"
	"o365sync/internal/engine"
	"o365sync/internal/feed"
	"o365sync/internal/logs"
	"o365sync/internal/metrics"
	"o365sync/internal/state"
)

var configPath string

// rootCmd is the entry point when the binary is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "o365sync",
	Short: "Keep network access exclusion lists in sync with the Office 365 endpoint catalog",
	Long: `o365sync fetches the Office 365 endpoint catalog, selects the URLs and
IP ranges matching the configured service areas and categories, and replaces
the address space exclusion lists of the configured network access resources.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml (default ./config/config.yml)")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	// Initialise configuration.
	if err := config.InitConfig(configPath); err != nil {
		return err
	}

	// Initialise logging.
	logs.InitLogrus(viper.GetInt(config.LogLevel), viper.GetString(config.LogFile))

	if valid, errStr := config.ValidateConfig(); !valid {
		return errors.Wrap(config.ErrInvalidConfig, errStr)
	}

	return metrics.Register(nil)
}

func newDriver() *engine.Driver {
	store := state.NewStore(viper.GetString(config.StateDir))
	catalog := feed.NewClient(viper.GetString(config.EndpointsURL), config.GetRequestTimeout())
	device := bigip.NewSession(viper.GetString(config.TmshPath), bigip.CommandExecutor{})
	return engine.NewDriver(store, catalog, device)
}
