package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/valvemist/wslbackup/backup"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitShutdown    = 3
	exitInterrupted = 130
)

type options struct {
	cfg        backup.Config
	configFile string
}

func newRootCommand(run func(cmd *cobra.Command, opts options) error) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "wslbackup <parent_dir> <distribution_name>",
		Short: "Back up a WSL distribution with wsl --export",
		Long: "Back up a WSL distribution to <parent_dir>/<distribution_name>/<timestamp>.<ext>.\n" +
			"A running instance is terminated first.",
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := backup.ParseLevel(opts.cfg.LogLevel)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg.ParentDir = args[0]
			opts.cfg.Distribution = args[1]
			return run(cmd, opts)
		},
		// usage is printed to stderr by execute
		SilenceUsage: true,
	}
	f := cmd.Flags()
	f.BoolVarP(&opts.cfg.Compress, "compress", "c", false, "compress the archive using zstandard")
	f.BoolVar(&opts.cfg.VHDX, "vhdx", false, "archive the distribution in vhdx format")
	f.BoolVar(&opts.cfg.Explorer, "explorer", false, "open the dest folder with explorer.exe after the process")
	f.StringVar(&opts.cfg.LogLevel, "loglevel", "warning", "logging level: debug, info, warning, error or critical")
	f.BoolVar(&opts.cfg.KillFrontend, "kill-frontend", false, "kill a wsl.exe front-end still running after the instance is terminated")
	f.BoolVar(&opts.cfg.Manifest, "manifest", false, "write a JSON manifest next to the archive")
	f.StringVar(&opts.configFile, "config", "", "JSON file overriding tool paths and timings")
	return cmd
}

// execute parses args, runs the backup and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...backup.Option) int {
	var runErr error
	ran := false
	root := newRootCommand(func(cmd *cobra.Command, o options) error {
		settings, err := backup.LoadSettings(o.configFile)
		if err != nil {
			return err
		}
		logger, err := backup.NewLogger(stderr, o.cfg.LogLevel)
		if err != nil {
			return err
		}
		ran = true
		b := backup.New(logger, settings, opts...)
		runErr = RunBackupWorkflow(cmd.Context(), logger, b, o.cfg)
		return nil
	})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, root.UsageString())
		return exitUsage
	}
	if !ran {
		// --help
		return exitOK
	}
	return exitCode(runErr)
}

// exitCode maps a workflow error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, backup.ErrInterrupted):
		return exitInterrupted
	case errors.Is(err, backup.ErrShutdown):
		return exitShutdown
	}
	return exitFailure
}

// main is the entry point for the wslbackup CLI tool.
func main() {
	// catch ctrl-c
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
