package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"tabclean/internal/app"
	"tabclean/internal/services"
	"tabclean/pkg/contracts"
	"tabclean/pkg/contracts/domain"
)

func newServeCommand(c *cli) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				c.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			// the server's components fall back to the global logger
			slog.SetDefault(c.logger)

			application, err := app.NewApplication(c.cfg, c.logger)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port")
	return cmd
}

func newInspectCommand(c *cli) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the columns and the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			preview, err := ws.Preview(rows)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), preview)
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", services.DefaultPreviewRows, "number of rows to show")
	return cmd
}

func newFixCoordinatesCommand(c *cli) *cobra.Command {
	var req domain.CoordinateRequest
	var output string

	cmd := &cobra.Command{
		Use:   "fix-coordinates <file>",
		Short: "Fill missing latitude and longitude values with the column means",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := services.Await(ws.FixCoordinates(cmd.Context(), req))
			if err != nil {
				return err
			}
			if err := save(cmd, ws, output); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&req.LatColumn, "lat", "", "latitude column")
	cmd.Flags().StringVar(&req.LonColumn, "lon", "", "longitude column")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to this .csv or .xlsx path")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newGeocodeCommand(c *cli) *cobra.Command {
	var req domain.GeocodeRequest
	var output string

	cmd := &cobra.Command{
		Use:   "geocode <file>",
		Short: "Derive CODE1, CODE2 and GEOCODE from the administrative columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := services.Await(ws.GenerateGeocode(cmd.Context(), req)); err != nil {
				return err
			}
			if err := save(cmd, ws, output); err != nil {
				return err
			}
			preview, err := ws.Preview(5)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), preview)
		},
	}
	cmd.Flags().StringVarP(&req.Region, "region", "r", "", "two digit region code")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to this .csv or .xlsx path")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func newReplaceNullsCommand(c *cli) *cobra.Command {
	var req domain.ReplaceRequest

	cmd := &cobra.Command{
		Use:     "replace-nulls <file>",
		Aliases: []string{"replace"},
		Short:   "Replace null-like cells and save the result",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := services.Await(ws.ReplaceNulls(cmd.Context(), req))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&req.Replacement, "with", "", "replacement text")
	cmd.Flags().StringVarP(&req.Destination, "output", "o", "", "destination .csv or .xlsx path")
	_ = cmd.MarkFlagRequired("with")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// splitFlags are shared by both split subcommands
type splitFlags struct {
	layout string
	format string
	output string
}

func (f *splitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.layout, "layout", string(domain.LayoutFolder), "folder or single")
	cmd.Flags().StringVar(&f.format, "format", string(domain.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "destination directory (folder) or file (single)")
	_ = cmd.MarkFlagRequired("output")
}

func (f *splitFlags) parse() (domain.Layout, domain.Format, error) {
	layout, err := domain.ParseLayout(f.layout)
	if err != nil {
		return "", "", err
	}
	format, err := domain.ParseFormat(f.format)
	if err != nil {
		return "", "", err
	}
	return layout, format, nil
}

func newSplitCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Partition a table into several outputs",
	}
	cmd.AddCommand(newSplitColumnCommand(c), newSplitRowsCommand(c))
	return cmd
}

// splitWorkspace opens input as a split source
func (c *cli) splitWorkspace(cmd *cobra.Command, input string) (*services.WorkspaceService, error) {
	ws := c.workspace()
	if _, err := services.Await(ws.OpenSplitSource(cmd.Context(), input)); err != nil {
		return nil, err
	}
	return ws, nil
}

func newSplitColumnCommand(c *cli) *cobra.Command {
	var flags splitFlags
	var column string

	cmd := &cobra.Command{
		Use:   "column <file>",
		Short: "Write one output per distinct value of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, format, err := flags.parse()
			if err != nil {
				return err
			}
			ws, err := c.splitWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := services.Await(ws.SplitByColumn(cmd.Context(), domain.ColumnSplitRequest{
				Column:      column,
				Layout:      layout,
				Format:      format,
				Destination: flags.output,
			}))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&column, "column", "", "column to partition by")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newSplitRowsCommand(c *cli) *cobra.Command {
	var flags splitFlags
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "rows <file>",
		Short: "Write consecutive chunks of a fixed number of rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, format, err := flags.parse()
			if err != nil {
				return err
			}
			ws, err := c.splitWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := services.Await(ws.SplitByRows(cmd.Context(), domain.RowSplitRequest{
				ChunkSize:   chunkSize,
				Layout:      layout,
				Format:      format,
				Destination: flags.output,
			}))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "rows per chunk")
	_ = cmd.MarkFlagRequired("chunk-size")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no config needed to print the version
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			return err
		},
	}
}
