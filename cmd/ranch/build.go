package main

import (
	"context"
	"os"
	"strings"

	"github.com/LdDl/ranch"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	osmFile     string
	shstFile    string
	paramsFile  string
	baseDir     string
	out         string
	format      string
	reportFile  string
	metricsFile string
	workers     int
}

func (c *cli) buildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build roadway network from OpenStreetMap and SharedStreets extracts",
		Long: `Build roadway network from OpenStreetMap and SharedStreets extracts.

The OpenStreetMap extract is an .osm (XML) or .osm.pbf file. The SharedStreets extract
is a GeoJSON FeatureCollection of matched segments. Crosswalk files are read from the
settings location (see 'ranch settings init').`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.osmFile, "osm", "", "OpenStreetMap extract (.osm or .osm.pbf)")
	cmd.Flags().StringVar(&opts.shstFile, "shst", "", "SharedStreets extract (GeoJSON)")
	cmd.Flags().StringVarP(&opts.paramsFile, "params", "p", "", "parameters file (.toml, .yaml or .yml)")
	cmd.Flags().StringVar(&opts.baseDir, "base-dir", ".", "base directory when no parameters file is given")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "roadway", "output prefix: '<out>_nodes.csv', '<out>_links.csv', ...")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format: csv, geojson or both")
	cmd.Flags().StringVar(&opts.reportFile, "report", "", "build report file (default: <out>_report.json)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write build metrics in prometheus text format to this file")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "number of workers (default: from parameters)")
	_ = cmd.MarkFlagRequired("osm")
	_ = cmd.MarkFlagRequired("shst")
	return cmd
}

func loadParameters(paramsFile, baseDir string) (*ranch.Parameters, error) {
	if paramsFile != "" {
		return ranch.LoadParameters(paramsFile)
	}
	return ranch.NewParameters(baseDir), nil
}

func (c *cli) runBuild(ctx context.Context, opts buildOptions) error {
	format := strings.ToLower(opts.format)
	if format != "csv" && format != "geojson" && format != "both" {
		return errors.Errorf("unknown output format '%s'", opts.format)
	}
	params, err := loadParameters(opts.paramsFile, opts.baseDir)
	if err != nil {
		return errors.Wrap(err, "Can't load parameters")
	}
	if opts.workers > 0 {
		params.Workers = opts.workers
	}
	for key := range params.Extra {
		c.logger.Warn("unrecognized parameter", "key", key)
	}

	osmExtract, err := ranch.ReadOSMExtract(ctx, opts.osmFile, c.logger)
	if err != nil {
		return errors.Wrap(err, "Can't read OpenStreetMap extract")
	}
	shstExtract, err := ranch.ReadSHSTExtractFile(opts.shstFile)
	if err != nil {
		return errors.Wrap(err, "Can't read SharedStreets extract")
	}

	metrics := ranch.NewBuildMetrics(prometheus.NewRegistry())
	roadway := ranch.NewRoadway(params, ranch.WithLogger(c.logger), ranch.WithMetrics(metrics))
	network, err := roadway.Build(ctx, osmExtract, shstExtract)
	if err != nil {
		return err
	}
	for _, anomaly := range network.Report.Anomalies() {
		c.logger.Warn(anomaly.Error())
	}

	if format == "csv" || format == "both" {
		if err := network.ExportToCSV(opts.out + ".csv"); err != nil {
			return errors.Wrap(err, "Can't export CSV")
		}
	}
	if format == "geojson" || format == "both" {
		if err := network.ExportToGeoJSON(opts.out + ".geojson"); err != nil {
			return errors.Wrap(err, "Can't export GeoJSON")
		}
	}
	reportFile := opts.reportFile
	if reportFile == "" {
		reportFile = opts.out + "_report.json"
	}
	file, err := os.Create(reportFile)
	if err != nil {
		return errors.Wrap(err, "Can't create report file")
	}
	defer file.Close()
	if err := network.Report.WriteJSON(file); err != nil {
		return err
	}
	if opts.metricsFile != "" {
		if err := metrics.WriteToTextfile(opts.metricsFile); err != nil {
			return errors.Wrap(err, "Can't write metrics")
		}
	}
	c.logger.Info("done", "status", network.Report.Status, "nodes", network.Report.Nodes, "links", network.Report.Links, "report", reportFile)
	return nil
}
