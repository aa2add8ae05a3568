package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Joseda-hg/tasktracker/internal/config"
	"github.com/Joseda-hg/tasktracker/internal/tasks"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	dataPath   string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktracker",
		Short: "Personal task tracker backed by a JSON file",
		Long: `tasktracker keeps a list of tasks in a JSON file.

Each invocation loads the file, runs one command and writes the file back
when the command changed something and succeeded.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&a.dataPath, "data", "", "task file path (overrides data_path from config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(a),
		newRemoveCmd(a),
		newEditCmd(a),
		newListCmd(a),
		newCompleteCmd(a),
		newTUICmd(a),
		newCheckCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(errOut io.Writer) error {
	if a.configPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		a.configPath = path
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataPath != "" {
		cfg.DataPath = a.dataPath
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.LogLevel, a.verbose, errOut)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func newLogger(level string, verbose bool, out io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(out), lvl)
	return zap.New(core), nil
}

// withManager loads the task file, runs fn and saves the file again when fn
// succeeded and mutates is set. A failed command leaves the file untouched.
func (a *app) withManager(mutates bool, fn func(m *tasks.Manager) error) error {
	m := tasks.NewManager(tasks.WithLogger(a.logger))
	if err := m.Load(a.cfg.DataPath); err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	if !mutates {
		return nil
	}
	if err := m.Save(a.cfg.DataPath); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
