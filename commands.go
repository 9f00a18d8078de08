package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/harrisonrobin/tolist/pkg/auth"
	"github.com/harrisonrobin/tolist/pkg/config"
	"github.com/harrisonrobin/tolist/pkg/export"
	"github.com/harrisonrobin/tolist/pkg/google"
	"github.com/harrisonrobin/tolist/pkg/manager"
	"github.com/harrisonrobin/tolist/pkg/model"
	"github.com/harrisonrobin/tolist/pkg/orgmode"
	"github.com/harrisonrobin/tolist/pkg/taskwarrior"
	"github.com/harrisonrobin/tolist/pkg/ui"
)

var uiCommand = &command{
	name:    "ui",
	usage:   "ui [flags]",
	summary: "Open the interactive task form (default).",
	run: func(e *env, _ *pflag.FlagSet, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unexpected argument: %s", args[0])
		}
		// The terminal belongs to the form; route records to its status line.
		handler := ui.NewTUILogHandler(slog.LevelWarn)
		e.logger = slog.New(handler)
		slog.SetDefault(e.logger)

		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		return ui.Run(mgr, handler)
	},
}

var addCommand = &command{
	name:    "add",
	usage:   "add TITLE [--description TEXT] [--priority N] [--due YYYY-MM-DD]",
	summary: "Append a task to the list.",
	flags: func(fs *pflag.FlagSet) {
		fs.StringP("description", "d", "", "task description")
		fs.IntP("priority", "p", model.DefaultPriority, "priority, conventionally 1-5")
		fs.String("due", "", "due date (YYYY-MM-DD)")
	},
	run: func(e *env, fs *pflag.FlagSet, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("add takes exactly one TITLE argument")
		}
		description, _ := fs.GetString("description")
		priority, _ := fs.GetInt("priority")
		due, _ := fs.GetString("due")

		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		if _, err := mgr.Add(args[0], description, priority, due); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Added task %d: %s\n", mgr.Len()-1, args[0])
		return nil
	},
}

var listCommand = &command{
	name:    "list",
	usage:   "list",
	summary: "Print every task with its index.",
	run: func(e *env, _ *pflag.FlagSet, _ []string) error {
		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		return printTasks(e.stdout, mgr.ListAll(), nil)
	},
}

var updateCommand = &command{
	name:    "update",
	usage:   "update INDEX [--title TEXT] [--description TEXT] [--priority N] [--due YYYY-MM-DD|\"\"]",
	summary: "Change the given fields of a task. Passing --due \"\" clears the due date.",
	flags: func(fs *pflag.FlagSet) {
		fs.StringP("title", "t", "", "new title")
		fs.StringP("description", "d", "", "new description")
		fs.IntP("priority", "p", 0, "new priority")
		fs.String("due", "", "new due date (YYYY-MM-DD), empty to clear")
	},
	run: func(e *env, fs *pflag.FlagSet, args []string) error {
		index, err := indexArg(args)
		if err != nil {
			return err
		}
		var patch manager.Patch
		if fs.Changed("title") {
			v, _ := fs.GetString("title")
			patch.Title = manager.StringField(v)
		}
		if fs.Changed("description") {
			v, _ := fs.GetString("description")
			patch.Description = manager.StringField(v)
		}
		if fs.Changed("priority") {
			v, _ := fs.GetInt("priority")
			patch.Priority = manager.IntField(v)
		}
		if fs.Changed("due") {
			v, _ := fs.GetString("due")
			patch.DueDate = manager.StringField(v)
		}
		if patch.Empty() {
			return fmt.Errorf("nothing to update: pass at least one of --title, --description, --priority, --due")
		}

		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		if err := mgr.Update(index, patch); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Updated task %d\n", index)
		return nil
	},
}

var deleteCommand = &command{
	name:    "delete",
	usage:   "delete INDEX",
	summary: "Remove the task at INDEX.",
	run: func(e *env, _ *pflag.FlagSet, args []string) error {
		index, err := indexArg(args)
		if err != nil {
			return err
		}
		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		if err := mgr.Delete(index); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Deleted task %d\n", index)
		return nil
	},
}

var filterCommand = &command{
	name:    "filter",
	usage:   "filter YYYY-MM-DD",
	summary: "Print the tasks due on a date.",
	run: func(e *env, _ *pflag.FlagSet, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("filter takes exactly one date argument")
		}
		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		indexes, err := mgr.IndexesDueOn(args[0])
		if err != nil {
			return err
		}
		return printTasks(e.stdout, mgr.ListAll(), indexes)
	},
}

var overdueCommand = &command{
	name:    "overdue",
	usage:   "overdue [--today YYYY-MM-DD]",
	summary: "Print incomplete tasks whose due date has passed.",
	flags: func(fs *pflag.FlagSet) {
		fs.String("today", "", "reference date (default: today)")
	},
	run: func(e *env, fs *pflag.FlagSet, _ []string) error {
		today := model.Today()
		if v, _ := fs.GetString("today"); v != "" {
			d, err := model.ParseDate(v)
			if err != nil {
				return err
			}
			today = d
		}
		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		return printTasks(e.stdout, mgr.ListAll(), mgr.OverdueIndexes(today))
	},
}

var exportCommand = &command{
	name:    "export",
	usage:   "export [--format json|yaml|csv|cbor|pdf] [--output PATH]",
	summary: "Write the task list in another format.",
	flags: func(fs *pflag.FlagSet) {
		fs.String("format", "", "output format (default: from --output extension, else json)")
		fs.StringP("output", "o", "", "output file (default: stdout)")
	},
	run: func(e *env, fs *pflag.FlagSet, _ []string) error {
		format, _ := fs.GetString("format")
		output, _ := fs.GetString("output")
		if format == "" {
			format = "json"
			if guessed, ok := export.FormatFromPath(output); ok {
				format = guessed
			}
		}

		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		data, err := export.Export(mgr.ListAll(), format)
		if err != nil {
			return err
		}
		if output == "" {
			_, err = e.stdout.Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(e.stdout, "Exported %d tasks to %s\n", mgr.Len(), output)
		return nil
	},
}

var importCommand = &command{
	name:    "import",
	usage:   "import (--org FILE... | --taskwarrior [FILE|-])",
	summary: "Append tasks from Org-mode files or Taskwarrior JSON.",
	flags: func(fs *pflag.FlagSet) {
		fs.StringSlice("org", nil, "Org-mode files to read TODO/DONE headlines from")
		fs.String("taskwarrior", "", "Taskwarrior export JSON file, '-' for stdin")
		fs.Bool("task-export", false, "run `task export` and import its output")
	},
	run: func(e *env, fs *pflag.FlagSet, _ []string) error {
		orgFiles, _ := fs.GetStringSlice("org")
		twFile, _ := fs.GetString("taskwarrior")
		runExport, _ := fs.GetBool("task-export")

		var imported []model.Task
		if len(orgFiles) > 0 {
			tasks, err := orgmode.ParseFiles(orgFiles)
			if err != nil {
				return fmt.Errorf("error parsing org files: %w", err)
			}
			imported = append(imported, tasks...)
		}
		if twFile != "" || runExport {
			tasks, err := readTaskwarrior(e.stdin, twFile, runExport)
			if err != nil {
				return err
			}
			imported = append(imported, taskwarrior.ToModel(tasks)...)
		}
		if len(orgFiles) == 0 && twFile == "" && !runExport {
			return fmt.Errorf("nothing to import: pass --org, --taskwarrior or --task-export")
		}

		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		if err := mgr.Import(imported); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Imported %d tasks\n", len(imported))
		return nil
	},
}

func readTaskwarrior(stdin io.Reader, file string, runExport bool) ([]taskwarrior.Task, error) {
	client := taskwarrior.NewClient()
	if runExport {
		return client.GetTasks(nil)
	}
	if file == "-" {
		return client.ParseTasks(stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return client.ParseTasks(f)
}

var syncCommand = &command{
	name:    "sync",
	usage:   "sync [--calendar NAME]",
	summary: "Mirror tasks with a due date into a Google Calendar.",
	flags: func(fs *pflag.FlagSet) {
		fs.String("calendar", "", "calendar name (overrides config)")
	},
	run: func(e *env, fs *pflag.FlagSet, _ []string) error {
		calendarFlag, _ := fs.GetString("calendar")
		calendarName := config.ResolveCalendar(calendarFlag, e.cfg)

		mgr, err := e.openManager()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client, err := google.NewClient(ctx, calendarName)
		if err != nil {
			return fmt.Errorf("error creating Google Calendar client: %w", err)
		}
		result, err := client.Sync(ctx, mgr.ListAll(), model.Today())
		if result != nil {
			fmt.Fprintf(e.stdout, "Calendar %q: %d created, %d removed, %d without due date\n",
				calendarName, result.Created, result.Deleted, result.Skipped)
		}
		return err
	},
}

var authCommand = &command{
	name:    "auth",
	usage:   "auth",
	summary: "Authenticate with Google Calendar, replacing any cached token.",
	run: func(e *env, _ *pflag.FlagSet, _ []string) error {
		if err := auth.Reset(); err != nil {
			return err
		}
		if _, err := auth.GetCalendarService(context.Background()); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		path, _ := auth.TokenPath()
		fmt.Fprintf(e.stdout, "Authentication successful! Token saved to %s\n", path)
		return nil
	},
}

var configCommand = &command{
	name:    "config",
	usage:   "config [--set-calendar NAME] [--set-tasks-file PATH]",
	summary: "Show or change the saved configuration.",
	flags: func(fs *pflag.FlagSet) {
		fs.String("set-calendar", "", "set the default Google Calendar name")
		fs.String("set-tasks-file", "", "set the default task file")
	},
	run: func(e *env, fs *pflag.FlagSet, _ []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if fs.Changed("set-calendar") || fs.Changed("set-tasks-file") {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if fs.Changed("set-calendar") {
				cfg.Calendar, _ = fs.GetString("set-calendar")
			}
			if fs.Changed("set-tasks-file") {
				cfg.TasksFile, _ = fs.GetString("set-tasks-file")
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			e.cfg = cfg
		}
		fmt.Fprintf(e.stdout, "config:     %s\ncalendar:   %s\ntasks file: %s\n",
			path, e.cfg.Calendar, config.ResolveTasksFile("", e.cfg, e.file))
		return nil
	},
}

func indexArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one INDEX argument")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", args[0], err)
	}
	return index, nil
}

// printTasks writes tasks as a table. When only is non-nil, just those
// positions are printed, still labelled with their index in the list.
func printTasks(w io.Writer, tasks []model.Task, only []int) error {
	positions := only
	if positions == nil {
		positions = make([]int, len(tasks))
		for i := range tasks {
			positions[i] = i
		}
	}
	if len(positions) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDONE\tPRI\tDUE\tTITLE\tDESCRIPTION")
	for _, i := range positions {
		t := tasks[i]
		done := ""
		if t.Completed {
			done = "x"
		}
		due := t.DueText()
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", i, done, t.Priority, due, t.Title, t.Description)
	}
	return tw.Flush()
}
