package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	startFlags := &StartFlags{}
	stopFlags := &StopFlags{}
	statusFlags := &StatusFlags{}
	logsFlags := &LogsFlags{}

	gridctlCommand := command{global: globalFlags}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createStartCommand(gridctlCommand, startFlags),
		createStopCommand(gridctlCommand, stopFlags),
		createStatusCommand(gridctlCommand, statusFlags),
		createLogsCommand(gridctlCommand, logsFlags),
		createScanCommand(gridctlCommand),
	)
	return root
}

// createRootCommand creates the root command with the persistent flags.
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "gridctl",
		Short: "Grid-trading daemon lifecycle controller",
		Long: `Gridctl starts, stops and inspects grid-trading daemon instances.
Each instance is identified by its trading configuration file; the
controller keeps a PID record per instance and never interprets the
trading config itself.

Examples:
  gridctl start configs/btc_grid.yaml
  gridctl start configs/btc_grid.yaml --session
  gridctl stop configs/btc_grid.yaml --wait 30s
  gridctl status configs/btc_grid.yaml --json
  gridctl scan --top 20`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to gridctl TOML config file (optional)")
	return root
}

// createStartCommand creates the start subcommand.
func createStartCommand(gridctlCommand command, startFlags *StartFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <trading-config>",
		Short: "Start a daemon instance for a trading config",
		Long: `Start the grid-trading daemon for the given trading configuration.
By default the daemon is detached into the background with its output
overwriting the per-instance log file. With --session it runs inside a
tmux session named after the instance instead.

Examples:
  gridctl start configs/btc_grid.yaml
  gridctl start configs/btc_grid.yaml --session --settle 5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gridctlCommand.Start(cmd, args[0], *startFlags)
		},
	}
	cmd.Flags().BoolVar(&startFlags.Session, "session", false, "run inside a terminal multiplexer session")
	// Older wrappers used --screen for the same thing.
	cmd.Flags().BoolVar(&startFlags.Session, "screen", false, "")
	_ = cmd.Flags().MarkHidden("screen")
	cmd.Flags().DurationVar(&startFlags.Settle, "settle", 0, "liveness verification window (default from config)")
	return cmd
}

// createStopCommand creates the stop subcommand.
func createStopCommand(gridctlCommand command, stopFlags *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <trading-config>",
		Short: "Stop the daemon instance for a trading config",
		Long: `Stop the running daemon for the given trading configuration.
The default path sends SIGTERM and waits for the process to exit; if it
does not stop within the bound, the configured escalation applies.
Stopping an instance that is not running succeeds.

Examples:
  gridctl stop configs/btc_grid.yaml
  gridctl stop configs/btc_grid.yaml --force
  gridctl stop configs/btc_grid.yaml --wait 10s --on-timeout force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gridctlCommand.Stop(cmd, args[0], *stopFlags)
		},
	}
	cmd.Flags().BoolVar(&stopFlags.Force, "force", false, "kill immediately without a graceful shutdown")
	cmd.Flags().DurationVar(&stopFlags.Wait, "wait", 0, "graceful stop bound (default from config)")
	cmd.Flags().StringVar(&stopFlags.OnTimeout, "on-timeout", "", "escalation on timeout: prompt|fail|force (default from config)")
	return cmd
}

// createStatusCommand creates the status subcommand.
func createStatusCommand(gridctlCommand command, statusFlags *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <trading-config>",
		Short: "Show whether the daemon instance is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gridctlCommand.Status(cmd, args[0], *statusFlags)
		},
	}
	cmd.Flags().BoolVar(&statusFlags.JSON, "json", false, "print status as JSON")
	return cmd
}

// createLogsCommand creates the logs subcommand.
func createLogsCommand(gridctlCommand command, logsFlags *LogsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <trading-config>",
		Short: "Print the tail of the instance log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gridctlCommand.Logs(cmd, args[0], *logsFlags)
		},
	}
	cmd.Flags().IntVarP(&logsFlags.Lines, "lines", "n", 50, "number of log lines to print")
	return cmd
}

// createScanCommand creates the scan subcommand.
func createScanCommand(gridctlCommand command) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [args...]",
		Short: "Run the volatility scanner in the foreground",
		Long: `Run the market volatility scanner as a one-shot foreground process.
All arguments after scan are passed through to the scanner, and its
exit code becomes gridctl's exit code.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gridctlCommand.Scan(cmd, args)
		},
	}
}
