// Command ptree inspects, searches and edits files through the piece
// tree engine.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	"github.com/dshills/piecetree/internal/config"
	"github.com/dshills/piecetree/internal/engine"
	"github.com/dshills/piecetree/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// errUsage reports bad arguments; the usage text has been printed.
var errUsage = errors.New("usage")

// env carries what commands need from the process.
type env struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	log    *logging.Logger
}

type command struct {
	name    string
	summary string
	run     func(e *env, args []string) error
}

var commands = []command{
	{"stat", "stat [-json] [-verify] FILE        report size, piece and text statistics", runStat},
	{"search", "search [-i] [-r] [-count] PATTERN FILE  print lines containing PATTERN", runSearch},
	{"run", "run [-o OUT] [-w] SCRIPT FILE      apply a Lua edit script", runScript},
	{"cat", "cat FILE                           write FILE to stdout", runCat},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ptree", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to TOML configuration file")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error, off)")
	showVersion := fs.Bool("version", false, "Show version information")
	fs.Usage = func() { usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stdout, "ptree %s (%s)\n", version, commit)
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	e := &env{stdout: stdout, stderr: stderr, cfg: cfg, log: cfg.Logger(stderr)}

	name := fs.Arg(0)
	for _, c := range commands {
		if c.name != name {
			continue
		}
		err := c.run(e, fs.Args()[1:])
		switch {
		case err == nil:
			return 0
		case errors.Is(err, errUsage):
			return 2
		case errors.Is(err, errNoMatch):
			return 1
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
	fs.Usage()
	return 2
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "ptree - piece tree file tool\n\n")
	fmt.Fprintf(w, "Usage: ptree [options] <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.summary)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nSettings are also read from %s* environment variables.\n", config.DefaultEnvPrefix)
}

// loadConfig layers defaults, the config file, the environment and the
// log level flag.
func loadConfig(path, logLevel string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(""); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// subcommand parses a command's flags and checks its argument count.
func subcommand(e *env, name, args string, want int, argv []string, define func(fs *flag.FlagSet)) (*flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	if define != nil {
		define(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: ptree %s %s\n", name, args)
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return nil, errUsage
	}
	if fs.NArg() != want {
		fs.Usage()
		return nil, errUsage
	}
	return fs, nil
}

func openDocument(e *env, path string, opts ...engine.Option) (*engine.Document, error) {
	return engine.OpenFile(path, append(e.cfg.DocumentOptions(e.log), opts...)...)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// useColor resolves a -color flag value for w.
func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "auto":
		return isTerminal(w), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	}
	return false, errors.Newf("invalid -color %q: want auto, always or never", mode)
}

func runCat(e *env, args []string) error {
	fs, err := subcommand(e, "cat", "FILE", 1, args, nil)
	if err != nil {
		return err
	}
	d, err := openDocument(e, fs.Arg(0), engine.WithReadOnly())
	if err != nil {
		return err
	}
	defer d.Close()
	_, err = d.Save(e.stdout)
	return err
}
