package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-wood-dashboard/internal/pipeline"
	"go-wood-dashboard/internal/report"
	"go-wood-dashboard/internal/store"
	"go-wood-dashboard/pkg/utils"
)

var (
	reportOut    string
	exportFormat string
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List the report pages and their sections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, p := range report.Pages() {
			fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Title)
			for _, s := range p.Sections {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", s.ID, s.Kind, s.Title)
			}
		}
		return w.Flush()
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <page>",
	Short: "Render a page offline as SVG charts and a JSON summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

var exportCmd = &cobra.Command{
	Use:   "export <page> <section>",
	Short: "Export the table of a section (csv, json, xlsx or db)",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Show how the configured columns resolve against the source header",
	Args:  cobra.NoArgs,
	RunE:  runColumns,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output directory (default: <export dir>/report)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", pipeline.FormatCSV,
		"export format ("+strings.Join(pipeline.Formats, ", ")+")")
}

func runReport(cmd *cobra.Command, args []string) error {
	builder := loadBuilder(cmd.Context())
	res, err := builder.Page(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := reportOut
	if out == "" {
		out = filepath.Join(cfg.Export.Dir, "report")
	}
	outputs := utils.NewOutputManager(out)

	for _, s := range res.Sections {
		if s.Error != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", s.ID, s.Error.Code, s.Error.Message)
			continue
		}
		if !s.HasChart {
			continue
		}
		path, err := outputs.GetOutputFilePath(res.Page, s.ID+".svg")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, s.Chart, 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		logger.Info("chart written", zap.String("section", s.ID), zap.String("path", path))
	}

	path, err := outputs.GetOutputFilePath(res.Page, "page.json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d/%d sections failed) -> %s\n",
		res.Page, res.Status, res.Failed, len(res.Sections), path)
	if res.Status == report.StatusFailed {
		return fmt.Errorf("page %s failed", res.Page)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	builder := loadBuilder(ctx)
	s, err := builder.Section(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if s.Error != nil {
		return s.Error
	}
	if s.Table == nil {
		return fmt.Errorf("section %s has no table to export", args[1])
	}

	id := uuid.New().String()
	var sink pipeline.AggregateSink
	var dir string
	if exportFormat == pipeline.FormatDB {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer db.Close()
		sink = db
	} else if dir, err = utils.NewOutputManager(cfg.Export.Dir).CreateOutputDir(id); err != nil {
		return err
	}

	result := pipeline.NewExportManager(id, dir, sink, logger).Export(ctx, *s.Table, args[0]+"_"+args[1], exportFormat)
	if !result.Success {
		return fmt.Errorf("export failed: %s", result.Error)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows -> %s (%s)\n", result.RecordCount, result.Path, id)
	return nil
}

func runColumns(cmd *cobra.Command, args []string) error {
	ds, err := pipeline.Load(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	rep := ds.Report()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tCONFIGURED\tRESOLVED\tPRESENT")
	for _, c := range rep.Columns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", c.Field, c.Configured, c.Resolved, c.Present)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nheader: %s\n", strings.Join(rep.Header, ", "))
	if missing := rep.MissingColumns(); len(missing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "missing: %s\n", strings.Join(missing, ", "))
	}
	for kind, msg := range rep.BoundaryErrors {
		fmt.Fprintf(cmd.OutOrStdout(), "boundaries %s: %s\n", kind, msg)
	}
	return nil
}
