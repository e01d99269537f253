package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"o365sync/internal/config"
	"o365sync/internal/structs"
)

var forceRefresh bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation against the endpoint catalog",
	Long: `Run one reconciliation. The run is skipped when this device is an HA
standby or the catalog version has not changed since the last run.
The command exits non-zero when the catalog cannot be fetched or any
device update fails.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&forceRefresh, "force", "f", false, "update the lists even if the catalog version is unchanged")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Snapshot()
	cfg.ForceRefresh = cfg.ForceRefresh || forceRefresh

	report, err := newDriver().RunLocked(ctx, cfg)
	if err != nil {
		return err
	}

	printReport(cmd, report)

	if report.Failed() {
		return fmt.Errorf("%d of %d apply calls failed, %d profile updates failed, config-sync failed: %t",
			report.ApplyFailures, report.ApplyAttempts, report.ProfileFailures, report.ConfigSyncError)
	}
	return nil
}

func printReport(cmd *cobra.Command, report structs.RunReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "outcome: %s\n", report.Outcome)
	fmt.Fprintf(out, "version: %s -> %s\n", report.PreviousVersion, report.LatestVersion)
	for _, t := range structs.RecordTypes {
		if n, ok := report.Counts[t]; ok {
			fmt.Fprintf(out, "%s: %d\n", t, n)
		}
	}
	if report.ApplyAttempts > 0 {
		fmt.Fprintf(out, "apply: %d/%d succeeded\n", report.ApplyAttempts-report.ApplyFailures, report.ApplyAttempts)
	}
}
