package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/LdDl/ranch"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const parametersFileName = "parameters.toml"

func (c *cli) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage crosswalks and parameters",
	}
	cmd.AddCommand(c.settingsInitCommand())
	cmd.AddCommand(c.settingsShowCommand())
	return cmd
}

func (c *cli) settingsInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [base-dir]",
		Short: "Write default crosswalk files and parameters into base directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir := "."
			if len(args) > 0 {
				baseDir = args[0]
			}
			return c.runSettingsInit(baseDir, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func (c *cli) runSettingsInit(baseDir string, force bool) error {
	params := ranch.NewParameters(baseDir)
	if err := os.MkdirAll(params.SettingsLocation(), 0o755); err != nil {
		return errors.Wrap(err, "Can't create settings directory")
	}
	files := []struct {
		fname string
		write func(w io.Writer) error
	}{
		{params.HighwayToRoadwayPath(), func(w io.Writer) error {
			return ranch.DefaultRoadwayCrosswalk(params.DefaultRoadwayType).WriteCSV(w, "highway", "roadway")
		}},
		{params.NetworkTypePath(), func(w io.Writer) error {
			return ranch.DefaultNetworkTypeCrosswalk(params.DefaultNetworkType).WriteCSV(w, "highway", "network_type")
		}},
		{filepath.Join(baseDir, parametersFileName), func(w io.Writer) error {
			portable := *params
			portable.BaseDir = "."
			return toml.NewEncoder(w).Encode(portable)
		}},
	}
	for _, file := range files {
		if _, err := os.Stat(file.fname); err == nil && !force {
			c.logger.Warn("file exists, skipping (use --force to overwrite)", "file", file.fname)
			continue
		}
		if err := createFile(file.fname, file.write); err != nil {
			return errors.Wrapf(err, "Can't write '%s'", file.fname)
		}
		c.logger.Info("written", "file", file.fname)
	}
	return nil
}

func createFile(fname string, write func(w io.Writer) error) error {
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer file.Close()
	return write(file)
}

func (c *cli) settingsShowCommand() *cobra.Command {
	var (
		paramsFile string
		baseDir    string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print effective parameters and check them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParameters(paramsFile, baseDir)
			if err != nil {
				return errors.Wrap(err, "Can't load parameters")
			}
			fmt.Fprintln(cmd.OutOrStdout(), params.String())
			for key, value := range params.Extra {
				c.logger.Warn("unrecognized parameter", "key", key, "value", value)
			}
			return params.Validate()
		},
	}
	cmd.Flags().StringVarP(&paramsFile, "params", "p", "", "parameters file (.toml, .yaml or .yml)")
	cmd.Flags().StringVar(&baseDir, "base-dir", ".", "base directory when no parameters file is given")
	return cmd
}
