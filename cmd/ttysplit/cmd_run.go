package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vertti/ttysplit/pkg/child"
	"github.com/vertti/ttysplit/pkg/config"
	"github.com/vertti/ttysplit/pkg/launch"
	"github.com/vertti/ttysplit/pkg/output"
	"github.com/vertti/ttysplit/pkg/ttypair"
)

var (
	runFormat string
	runColor  string
	runNoTag  bool
)

// newLauncher is swapped in tests.
var newLauncher = func(size ttypair.Size) launch.Launcher {
	return &launch.RealLauncher{Size: size}
}

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- command [args...]]",
	Short: "Run a command and print its stdout and stderr tagged by origin",
	Long: `Run a command with stdout and stderr each attached to its own pseudo-terminal.

The command comes from the arguments after "--", or from the run file when
none are given. ttysplit exits with the command's exit code, or 128+signal
when the command was killed by a signal.`,
	RunE: runRun,
}

func init() {
	addEnvFlags(runCmd)
	runCmd.Flags().StringVar(&runFormat, "format", config.FormatText, "output format: text or json")
	runCmd.Flags().StringVar(&runColor, "color", output.ColorAuto, "colorize tags: auto, always or never")
	runCmd.Flags().BoolVar(&runNoTag, "no-tag", false, "print lines without [stdout]/[stderr] tags")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOutputFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	color, err := output.ColorEnabled(cfg.Output.Color)
	if err != nil {
		return err
	}

	if len(args) == 0 && cfg.Command != "" {
		args = append([]string{cfg.Command}, cfg.Args...)
	}
	if len(args) == 0 {
		return errors.New("no command given: pass it after -- or set command in the run file")
	}

	path := args[0]
	if !strings.Contains(path, "/") {
		if path, err = launch.LookPath(path); err != nil {
			return err
		}
	}

	b, err := newBuilder(path, cfg)
	if err != nil {
		return err
	}
	if b, err = b.Args(args[1:]); err != nil {
		return err
	}
	c := b.Logger(logger).Build()

	h, err := newLauncher(terminalSize()).Spawn(c)
	if err != nil {
		return err
	}

	printer := newPrinter(cmd, cfg, color, h.ID())

	s, err := h.Streamer()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx := cmd.Context()
	for out, err := range s.All(ctx) {
		var rerr *child.ReadError
		switch {
		case errors.As(err, &rerr):
			if err := printer.ReadError(rerr); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := printer.Line(out); err != nil {
				return err
			}
		}
	}

	status, err := h.Status(ctx)
	if err != nil {
		return err
	}
	if err := printer.Exit(status); err != nil {
		return err
	}

	if code := status.ExitCode(); code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

// applyOutputFlags lets flags given on the command line override the run file.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") || cfg.Output.Format == "" {
		cfg.Output.Format = runFormat
	}
	if flags.Changed("color") || cfg.Output.Color == "" {
		cfg.Output.Color = runColor
	}
	if flags.Changed("no-tag") {
		cfg.Output.NoTag = runNoTag
	}
}

func newPrinter(cmd *cobra.Command, cfg *config.Config, color bool, id string) output.Printer {
	w := cmd.OutOrStdout()
	if cfg.Output.Format == config.FormatJSON {
		return &output.JSONPrinter{Out: w, ID: id}
	}
	return &output.TextPrinter{Out: w, NoTag: cfg.Output.NoTag, Color: color}
}

// terminalSize copies the size of the terminal ttysplit runs in, if any.
func terminalSize() ttypair.Size {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return ttypair.Size{}
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return ttypair.Size{}
	}
	return ttypair.Size{Cols: uint16(cols), Rows: uint16(rows)} //nolint:gosec // terminal dimensions fit
}

