// tapmonkey renders TAP test output as a single animated status line, and
// only fills the screen on failures and coverage reports.
//
// Usage:
//
//	node test/index.js | tapmonkey
//	c8 tape test/*.js | tapmonkey --quiet
//	tapmonkey -- node test/index.js
//
// Flags:
//
//	--quiet        hide per-test progress (failures and totals still print)
//	--theme        default, orca or mono
//	--no-color     monochrome output
//	--status-line  ticker, tea or none
//	--ci           plain output for logs
//	--config       explicit .tapmonkey.yaml path
//	--debug        debug logging on stderr
//
// When a producer command is given after the flags, tapmonkey runs it and
// reads its stdout instead of stdin.
//
// Exit status is 1 when the producer bails out, 2 on usage, input or
// rendering errors, 130 when interrupted, and 0 otherwise. A producer command
// that exits non-zero after a clean stream passes its status through.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/dkoosis/tapmonkey/internal/child"
	"github.com/dkoosis/tapmonkey/internal/config"
	"github.com/dkoosis/tapmonkey/internal/version"
	"github.com/dkoosis/tapmonkey/pkg/statusline"
	"github.com/dkoosis/tapmonkey/pkg/stream"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tapmonkey", flag.ContinueOnError)
	fs.SetOutput(stderr)
	quiet := fs.Bool("quiet", false, "Hide per-test and per-pass progress")
	themeName := fs.String("theme", "", "Theme: default, orca, mono")
	noColor := fs.Bool("no-color", false, "Disable colors")
	statusLine := fs.String("status-line", "", "Status line: ticker, tea, none")
	ci := fs.Bool("ci", false, "CI mode: no colors, no status line")
	debug := fs.Bool("debug", false, "Debug logging on stderr")
	configFile := fs.String("config", "", "Path to a .tapmonkey.yaml file")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: tapmonkey [flags] [-- producer args...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return stream.ExitOK
		}
		return stream.ExitError
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return stream.ExitOK
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	level := setupLogging(stderr, *debug || os.Getenv("TAPMONKEY_DEBUG") != "")

	cfg, err := config.ResolveConfig(config.CliFlags{
		Quiet:      *quiet,
		ThemeName:  *themeName,
		NoColor:    *noColor,
		StatusLine: *statusLine,
		CI:         *ci,
		Debug:      *debug,
		ConfigFile: *configFile,
		QuietSet:   set["quiet"],
		NoColorSet: set["no-color"],
		CISet:      set["ci"],
		DebugSet:   set["debug"],
	})
	if err != nil {
		fmt.Fprintf(stderr, "tapmonkey: %v\n", err)
		return stream.ExitError
	}
	if cfg.Debug {
		level.Set(slog.LevelDebug)
	}
	slog.Debug("resolved config",
		"quiet", cfg.Quiet, "quiet_source", cfg.QuietSource,
		"theme", cfg.Theme, "theme_source", cfg.ThemeSource,
		"no_color", cfg.NoColor, "status_line", cfg.StatusLine,
		"config_path", cfg.ConfigPath)

	producer := fs.Args()
	if len(producer) == 0 && isTTYReader(stdin) {
		fmt.Fprintf(stderr, "tapmonkey: no input on stdin (pipe a TAP producer into tapmonkey)\n")
		return stream.ExitError
	}

	theme := stream.ThemeByName(cfg.Theme)
	if cfg.NoColor {
		theme = stream.MonoTheme()
	}

	tty := isTTYWriter(stdout)
	width := 0
	if tty {
		width, _ = termSize(stdout)
	}
	home, _ := os.UserHomeDir()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := stream.Options{
		Quiet:   cfg.Quiet,
		Theme:   theme,
		HomeDir: home,
		Width:   width,
		Logger:  slog.Default(),
	}
	line := newStatusLine(cfg.StatusLine, tty, stdout)

	if len(producer) > 0 {
		return runProducer(ctx, producer, stdout, stderr, line, opts)
	}

	// Close stdin on cancel to unblock the parser's scanner goroutine.
	if c, ok := stdin.(io.Closer); ok {
		stopClose := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stopClose()
	}
	return stream.Run(ctx, stdin, stdout, stderr, line, opts)
}

// runProducer renders the stdout of a producer command. The renderer's exit
// status wins; a clean stream takes the producer's own status.
func runProducer(ctx context.Context, argv []string, stdout, stderr io.Writer, line statusline.Line, opts stream.Options) int {
	p, err := child.Start(ctx, child.Config{Name: argv[0], Args: argv[1:], Stderr: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "tapmonkey: %v\n", err)
		return stream.ExitError
	}

	code := stream.Run(ctx, p.Stdout(), stdout, stderr, line, opts)
	if code != stream.ExitOK {
		p.Stop()
	}
	producerCode, err := p.Wait()
	if err != nil {
		slog.Debug("producer wait failed", "error", err)
	}
	slog.Debug("producer exited", "command", argv[0], "code", producerCode)
	if code != stream.ExitOK {
		return code
	}
	return producerCode
}

// setupLogging installs a text slog handler on stderr and returns its level
// so it can be raised once the config is resolved.
func setupLogging(stderr io.Writer, debug bool) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if debug {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	return level
}

// newStatusLine picks the status line renderer. Output that is not a
// terminal never gets an animated line.
func newStatusLine(kind string, tty bool, out io.Writer) statusline.Line {
	if !tty {
		return statusline.Nop{}
	}
	switch kind {
	case config.StatusLineNone:
		return statusline.Nop{}
	case config.StatusLineTea:
		return statusline.NewProgram(statusline.Monkey, out)
	default:
		return statusline.NewTicker(statusline.TickerConfig{Spinner: statusline.Monkey, Writer: out})
	}
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// isTTYReader reports whether r is an interactive terminal rather than a pipe.
func isTTYReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
