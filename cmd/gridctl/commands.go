package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridops/gridctl"
	"github.com/gridops/gridctl/internal/controller"
)

// command binds the CLI handlers to the shared persistent flags.
type command struct {
	global *GlobalFlags
}

// setup loads the controller settings and builds the controller with
// its logger and history sink. The returned closer releases the sink.
func (c command) setup() (*gridctl.Controller, gridctl.Settings, func(), error) {
	settings, err := gridctl.LoadSettings(c.global.ConfigPath)
	if err != nil {
		return nil, gridctl.Settings{}, nil, err
	}
	ctl := gridctl.NewController(settings, settings.Log.New())

	closer := func() {}
	sink, err := gridctl.NewHistorySink(settings.History)
	if err != nil {
		// Audit is best effort; a broken sink must not block lifecycle ops.
		fmt.Fprintf(os.Stderr, "warning: history sink unavailable: %v\n", err)
	} else if sink != nil {
		ctl.SetSink(sink)
		if cl, ok := sink.(io.Closer); ok {
			closer = func() { _ = cl.Close() }
		}
	}
	return ctl, settings, closer, nil
}

// Start launches the daemon for the given trading config.
func (c command) Start(cmd *cobra.Command, tradingConfig string, f StartFlags) error {
	ctl, _, closeSink, err := c.setup()
	if err != nil {
		return err
	}
	defer closeSink()

	opts := gridctl.StartOptions{Settle: f.Settle}
	if f.Session {
		opts.Mode = controller.ModeSession
	}
	st, err := ctl.Start(cmd.Context(), tradingConfig, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "started %s (pid %d, mode %s)\nlog: %s\n",
		st.Identity, st.PID, st.Mode, st.LogFile)
	return nil
}

// Stop terminates the daemon for the given trading config.
func (c command) Stop(cmd *cobra.Command, tradingConfig string, f StopFlags) error {
	ctl, _, closeSink, err := c.setup()
	if err != nil {
		return err
	}
	defer closeSink()

	ctl.SetOutput(cmd.OutOrStdout())
	st, err := ctl.Stop(cmd.Context(), tradingConfig, gridctl.StopOptions{
		Force:     f.Force,
		Wait:      f.Wait,
		OnTimeout: f.OnTimeout,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stopped %s\n", st.Identity)
	return nil
}

// Status reports the instance state for the given trading config.
func (c command) Status(cmd *cobra.Command, tradingConfig string, f StatusFlags) error {
	ctl, _, closeSink, err := c.setup()
	if err != nil {
		return err
	}
	defer closeSink()

	st, err := ctl.Status(tradingConfig)
	if err != nil {
		return err
	}
	if f.JSON {
		printJSON(cmd.OutOrStdout(), st)
		return nil
	}
	if st.Running {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: running (pid %d, via %s)\nlog: %s\n",
			st.Identity, st.PID, st.DetectedBy, st.LogFile)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: not running\nlog: %s\n", st.Identity, st.LogFile)
	}
	return nil
}

// Logs prints the tail of the per-instance log file.
func (c command) Logs(cmd *cobra.Command, tradingConfig string, f LogsFlags) error {
	ctl, _, closeSink, err := c.setup()
	if err != nil {
		return err
	}
	defer closeSink()

	st, err := ctl.Status(tradingConfig)
	if err != nil {
		return err
	}
	return printLogTail(cmd.OutOrStdout(), st.LogFile, f.Lines)
}

// Scan runs the volatility scanner in the foreground and passes its
// exit code through.
func (c command) Scan(cmd *cobra.Command, args []string) error {
	_, settings, closeSink, err := c.setup()
	if err != nil {
		return err
	}
	closeSink()

	code, err := gridctl.RunScanner(cmd.Context(), settings, args,
		cmd.OutOrStdout(), cmd.ErrOrStderr(), os.Stdin)
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
