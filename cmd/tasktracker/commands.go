package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/tasktracker/internal/config"
	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/tasks"
	"github.com/Joseda-hg/tasktracker/internal/tui"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <description> <due_date>",
		Short: "Add a new task",
		Long: `Adds a task. The due date is ISO-8601, for example 2026-10-20 or
2026-10-20T18:00:00+02:00, and must not be in the past.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(true, func(m *tasks.Manager) error {
				task, err := m.Create(args[0], args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", task)
				return nil
			})
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(true, func(m *tasks.Manager) error {
				task, err := m.Delete(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", task)
				return nil
			})
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var (
		aspect      string
		title       string
		description string
		dueDate     string
		completed   bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id> --aspect <name>",
		Short: "Edit one aspect of an existing task",
		Long: `Changes a single aspect of a task. The value comes from the flag that
matches the aspect:

  title          --title
  description    --description
  due_date       --due_date
  complete_task  --completed

Example:
  tasktracker edit 6 --aspect title --title "Buy oat milk"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withManager(true, func(m *tasks.Manager) error {
				// An unknown id or aspect is reported before any value is parsed.
				if _, err := m.Get(id); err != nil {
					return err
				}
				if _, err := tasks.ParseAspect(aspect); err != nil {
					return err
				}

				// Every supplied value flag is passed on, so a missing or extra
				// value is reported as an argument count error by the manager.
				var values []any
				flags := cmd.Flags()
				if flags.Changed("title") {
					values = append(values, title)
				}
				if flags.Changed("description") {
					values = append(values, description)
				}
				if flags.Changed("due_date") {
					dueAt, err := model.ParseTimestamp(dueDate)
					if err != nil {
						return &model.ValidationError{Field: "due_date", Err: err}
					}
					values = append(values, dueAt)
				}
				if flags.Changed("completed") {
					values = append(values, completed)
				}

				task, err := m.Update(id, aspect, values...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated: %s\n", task)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&aspect, "aspect", "", "aspect to change: title, description, due_date or complete_task")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&dueDate, "due_date", "", "new due date (ISO-8601)")
	cmd.Flags().BoolVar(&completed, "completed", true, "new completion state")
	_ = cmd.MarkFlagRequired("aspect")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		search  string
		pending bool
		done    bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.Filter{Query: search}
			if pending || done {
				state := done
				filter.Completed = &state
			}
			return a.withManager(false, func(m *tasks.Manager) error {
				return writeTasks(cmd.OutOrStdout(), m.Filter(filter), output)
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only tasks whose title or description contains this text")
	cmd.Flags().BoolVar(&pending, "pending", false, "only tasks not completed")
	cmd.Flags().BoolVar(&done, "done", false, "only completed tasks")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	cmd.MarkFlagsMutuallyExclusive("pending", "done")
	return cmd
}

func newCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(true, func(m *tasks.Manager) error {
				task, err := m.Complete(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed: %s\n", task)
				return nil
			})
		},
	}
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := tasks.NewManager(tasks.WithLogger(a.logger))
			if err := m.Load(a.cfg.DataPath); err != nil {
				return err
			}
			return tui.Run(m, tui.Options{
				DataPath:   a.cfg.DataPath,
				DateLayout: a.cfg.DateLayout,
				Logger:     a.logger,
			})
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the task file against its schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tasks.CheckFile(a.cfg.DataPath); err != nil {
				return fmt.Errorf("%s: %w", a.cfg.DataPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", a.cfg.DataPath)
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				if err := config.Save(a.configPath, a.cfg); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				a.logger.Info("config written")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", a.configPath)
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(a.cfg)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "save the effective configuration to the config file")
	return cmd
}

func parseID(value string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", value)
	}
	return id, nil
}

func writeTasks(out io.Writer, list []*model.Task, format string) error {
	records := make([]model.Record, 0, len(list))
	for _, task := range list {
		records = append(records, task.Record())
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(records, "", "    ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := out.Write(buf.Bytes())
		return err
	case "text":
		if len(list) == 0 {
			_, err := fmt.Fprintln(out, "No tasks.")
			return err
		}
		for _, task := range list {
			if _, err := fmt.Fprintf(out, "%s (due %s)\n", task, humanize.Time(task.DueAt())); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q, must be one of: text, json, yaml", format)
	}
}
