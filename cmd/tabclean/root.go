package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"tabclean/internal/config"
	"tabclean/internal/files"
	"tabclean/internal/infrastructure"
	"tabclean/internal/operations"
	"tabclean/internal/services"
	"tabclean/internal/splitter"
	"tabclean/pkg/contracts"
	"tabclean/pkg/contracts/domain"
)

// cli carries the state shared by every subcommand
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "tabclean",
		Short:         "Clean, geocode and partition CSV and Excel tables",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd); err != nil {
				return err
			}
			// one trace ID per invocation ties the operation log lines together
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return infrastructure.CloseLogFile()
		},
	}
	root.SetVersionTemplate(contracts.GetVersionString() + "\n")

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCommand(c),
		newInspectCommand(c),
		newFixCoordinatesCommand(c),
		newGeocodeCommand(c),
		newReplaceNullsCommand(c),
		newSplitCommand(c),
		newVersionCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger. Log lines go to
// stderr so results printed on stdout stay machine readable.
func (c *cli) setup(cmd *cobra.Command) error {
	path := c.configPath
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

// workspace builds a workspace whose operation messages go to the log
func (c *cli) workspace() *services.WorkspaceService {
	fm := files.NewManager(files.Options{
		CSVBOM:         c.cfg.Output.CSVBOM,
		SheetNameLimit: c.cfg.Output.SheetNameLimit,
	})
	sp := splitter.NewSplitter(fm, splitter.Options{InvalidRowsName: c.cfg.Output.InvalidRowsName}, c.logger)
	jobs := operations.NewJobQueue(c.logger, nil)
	return services.NewWorkspaceService(fm, sp, jobs, operations.NewSlogReporter(c.logger), c.logger)
}

// load reads input into a fresh workspace
func (c *cli) load(cmd *cobra.Command, input string) (*services.WorkspaceService, error) {
	ws := c.workspace()
	if _, err := services.Await(ws.Load(cmd.Context(), domain.LoadRequest{Path: input})); err != nil {
		return nil, err
	}
	return ws, nil
}

// save writes the table of record to output, when one was given
func save(cmd *cobra.Command, ws *services.WorkspaceService, output string) error {
	if output == "" {
		return nil
	}
	_, err := services.Await(ws.SaveAs(cmd.Context(), domain.SaveRequest{Destination: output}))
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
