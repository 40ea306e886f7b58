package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/config"
	"github.com/sells-group/address-mapper/internal/export"
	"github.com/sells-group/address-mapper/internal/extract"
	"github.com/sells-group/address-mapper/internal/mapper"
	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/internal/report"
	"github.com/sells-group/address-mapper/internal/webmap"
)

var (
	runSource    string
	runDocuments []string
	runQuery     string
	runDir       string
	runPolicy    string
	runAccess    string
	runBundle    bool
	runDest      string
	runDryRun    bool
	runXLSX      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find, annotate and geocode addresses, then export the report and map",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd, cfg)
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		summary, err := executeRun(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), summary.Message)
		return err
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runSource, "source", "", "document source: documentcloud or local")
	f.StringSliceVar(&runDocuments, "documents", nil, "DocumentCloud document IDs")
	f.StringVar(&runQuery, "query", "", "DocumentCloud search query, used when no IDs are given")
	f.StringVar(&runDir, "dir", "", "directory of PDF files for the local source")
	f.StringVar(&runPolicy, "policy", "", "geocode_first or annotate_first")
	f.StringVar(&runAccess, "access", "", "annotation access: private, organization or public")
	f.BoolVar(&runBundle, "bundle", true, "upload a single zip archive instead of separate files")
	f.StringVar(&runDest, "dest", "", "export destination: platform, dir, s3 or minio")
	f.BoolVar(&runDryRun, "dry-run", false, "detect and geocode without creating annotations; export to export.dir")
	f.BoolVar(&runXLSX, "xlsx", false, "also write an XLSX report")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overrides configuration with the flags set on the command line.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("source") {
		c.Source.Kind = runSource
	}
	if f.Changed("documents") {
		c.DocumentCloud.Documents = runDocuments
	}
	if f.Changed("query") {
		c.DocumentCloud.Query = runQuery
	}
	if f.Changed("dir") {
		c.Local.Dir = runDir
	}
	if f.Changed("policy") {
		c.Pipeline.Policy = runPolicy
	}
	if f.Changed("access") {
		c.Annotate.Access = runAccess
	}
	if f.Changed("bundle") {
		c.Export.Bundle = runBundle
	}
	if f.Changed("dest") {
		c.Export.Destination = runDest
	}
	if f.Changed("dry-run") {
		c.Pipeline.DryRun = runDryRun
	}
	if f.Changed("xlsx") {
		c.Report.XLSX = runXLSX
	}
}

// runSummary is what a completed run produced.
type runSummary struct {
	Records  []model.Record
	Stats    mapper.Stats
	Manifest export.Manifest
	Export   *export.Result
	Message  string
}

// executeRun processes the configured documents and publishes the results.
// The status message is posted even when the export fails.
func executeRun(ctx context.Context, c *config.Config) (*runSummary, error) {
	policy, err := mapper.ParsePolicy(c.Pipeline.Policy)
	if err != nil {
		return nil, err
	}
	view, err := webmap.ParseViewMode(c.Map.View)
	if err != nil {
		return nil, err
	}

	var cl closers
	defer cl.close()

	gc, closeGeocoder, err := initGeocoder(ctx, c)
	if err != nil {
		return nil, eris.Wrap(err, "init geocoder")
	}
	cl.add(closeGeocoder)

	env, err := initSource(c)
	if err != nil {
		return nil, eris.Wrap(err, "init source")
	}
	cl.add(env.Close)

	uploader, err := initUploader(ctx, c, env.Uploader)
	if err != nil {
		return nil, eris.Wrap(err, "init uploader")
	}

	docs, err := env.Source.Documents(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "list documents")
	}

	p := mapper.New(gc,
		mapper.WithPolicy(policy),
		mapper.WithAccess(c.Annotate.Access),
		mapper.WithTitle(c.Annotate.Title),
		mapper.WithExtractOptions(extract.Options{POBoxes: c.Pipeline.POBoxes}),
		mapper.WithDryRun(c.Pipeline.DryRun),
	)
	records, err := p.Run(ctx, docs)
	if err != nil {
		return nil, eris.Wrap(err, "map addresses")
	}
	stats := p.LastStats()

	ws, err := export.NewWorkspace(c.Export.WorkDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			zap.L().Warn("workspace cleanup failed", zap.Error(err))
		}
	}()

	arts := export.Artifacts{CSV: ws.Path(c.Report.CSVName)}
	if err := report.WriteCSV(arts.CSV, policy, records); err != nil {
		return nil, err
	}
	if c.Report.XLSX {
		arts.XLSX = ws.Path(c.Report.XLSXName)
		if err := report.WriteXLSX(arts.XLSX, policy, records); err != nil {
			return nil, err
		}
	}

	m, err := webmap.Build(records, webmap.Options{
		Title:       c.Map.Title,
		View:        view,
		Zoom:        c.Map.Zoom,
		TileURL:     c.Map.TileURL,
		Attribution: c.Map.Attribution,
	})
	if err != nil {
		return nil, err
	}
	arts.Map = ws.Path(c.Map.Name)
	if err := m.Save(arts.Map); err != nil {
		return nil, err
	}

	summary := &runSummary{
		Records:  records,
		Stats:    stats,
		Manifest: export.NewManifest(c.Source.Kind, policy, stats, len(records)),
		Message:  export.StatusMessage(stats, len(records)),
	}

	exportOpts := []export.Option{export.WithBundle(c.Export.Bundle)}
	if c.Export.RetainOnFailure {
		exportOpts = append(exportOpts, export.WithRetainDir(c.Export.RetainDir))
	}
	res, exportErr := export.New(uploader, exportOpts...).Export(ctx, ws, arts, summary.Manifest)
	summary.Export = res

	// A dry run leaves the platform untouched.
	messenger := env.Messenger
	if c.Pipeline.DryRun {
		messenger = nil
	}
	if err := export.Notify(ctx, messenger, summary.Message); err != nil {
		zap.L().Warn("status message not posted", zap.Error(err))
	}

	if exportErr != nil {
		return summary, eris.Wrap(exportErr, "export artifacts")
	}
	return summary, nil
}
