// Package cli implements the dockgen command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/log"
)

// globalOptions are the persistent flags shared by every command. Flags win
// over the config file and the environment.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	workDir    string
	ledgerPath string

	cfg    config.Config
	logger *logrus.Logger
	lookup config.LookupFunc
}

func (o *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "path to a YAML configuration file")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", "", "log format (text or json)")
	fs.StringVar(&o.workDir, "work-dir", "", "directory holding per-request checkouts")
	fs.StringVar(&o.ledgerPath, "ledger", "", "badger directory for job records, empty keeps them in memory")
}

// load builds the configuration and the root logger once per invocation.
func (o *globalOptions) load(stderr io.Writer) error {
	cfg, err := config.Load(o.configPath, o.lookup)
	if err != nil {
		return err
	}

	override := func(flag string, dst *string) {
		if flag != "" {
			*dst = flag
		}
	}
	override(o.logLevel, &cfg.Log.Level)
	override(o.logFormat, &cfg.Log.Format)
	override(o.workDir, &cfg.WorkDir)
	override(o.ledgerPath, &cfg.Ledger.Path)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}

// NewRootCommand returns the dockgen command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{lookup: os.LookupEnv}

	cmd := &cobra.Command{
		Use:   "dockgen",
		Short: "Generate and build Dockerfiles for JavaScript repositories",
		Long: heredoc.Doc(`
			dockgen clones a JavaScript repository, detects its framework and package
			manager, produces a Dockerfile (from a generative model when configured,
			from built-in templates otherwise) and builds an image from it.
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.load(cmd.ErrOrStderr()); err != nil {
				return err
			}
			entry := logrus.NewEntry(opts.logger)
			cmd.SetContext(log.WithLogger(cmd.Context(), entry))
			return nil
		},
	}
	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newServeCommand(opts),
		newGenerateCommand(opts),
		newPushCommand(opts),
		newJobsCommand(opts),
	)
	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
