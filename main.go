package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/harrisonrobin/tolist/pkg/config"
	"github.com/harrisonrobin/tolist/pkg/manager"
	"github.com/harrisonrobin/tolist/pkg/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(env *env, flagSet *pflag.FlagSet, args []string) error
	flags   func(flagSet *pflag.FlagSet)
}

// env carries what every subcommand needs.
type env struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	file    string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
}

var commands = []*command{
	uiCommand,
	addCommand,
	listCommand,
	updateCommand,
	deleteCommand,
	filterCommand,
	overdueCommand,
	exportCommand,
	importCommand,
	syncCommand,
	authCommand,
	configCommand,
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	name := "ui"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	if name == "help" {
		printUsage(stdout)
		return nil
	}

	var cmd *command
	for _, c := range commands {
		if c.name == name {
			cmd = c
			break
		}
	}
	if cmd == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	flagSet := pflag.NewFlagSet("tolist "+cmd.name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&e.file, "file", "f", "", "task file (default: config tasks_file, then ./"+store.DefaultFile+")")
	flagSet.BoolVarP(&e.verbose, "verbose", "v", false, "log debug records to stderr")
	if cmd.flags != nil {
		cmd.flags(flagSet)
	}
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tolist %s\n\n%s\n\nFlags:\n", cmd.usage, cmd.summary)
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	level := slog.LevelWarn
	if e.verbose {
		level = slog.LevelDebug
	}
	e.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(e.logger)

	cfg, err := config.Load()
	if err != nil {
		e.logger.Warn("could not load config, using defaults", "error", err)
		cfg = &config.Config{Calendar: config.DefaultCalendar}
	}
	e.cfg = cfg
	e.file = config.ResolveTasksFile(e.file, cfg, store.DefaultFile)

	return cmd.run(e, flagSet, flagSet.Args())
}

// openManager loads the task list. Load failures other than a missing
// file are fatal for every command.
func (e *env) openManager(opts ...manager.Option) (*manager.Manager, error) {
	opts = append([]manager.Option{manager.WithLogger(e.logger)}, opts...)
	mgr, err := manager.New(e.file, opts...)
	if err != nil {
		return nil, err
	}
	return mgr, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "tolist - a small local to-do list.\n\nUsage:\n  tolist [command] [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nWithout a command the interactive form is started. Run 'tolist <command> --help' for flags.\n")
}
