package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rtm0/s111/internal/s111"
)

func newRootCmd() (*cobra.Command, *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "s111-irregular --grid-file <grid.nc> <s111.h5>",
		Short: "Add an S-111 irregular grid dataset",
		Long: `s111-irregular reads surface current velocities on an irregular grid from
a NetCDF file and adds them to an existing S-111 HDF5 file, one group per
timestamp, updating the file's metadata.

Options can also be set with environment variables named S111_<OPTION>
(dashes replaced by underscores) or in a configuration file given by --config.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cfg := newConfig(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := readConfigFile(cfg); err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		gridFile := cfg.GetString("grid-file")
		if gridFile == "" {
			return errors.New("the --grid-file option is required")
		}
		opts, err := conversionOptions(cfg)
		if err != nil {
			return err
		}
		return s111.NewTranscoder(logger, opts).Run(gridFile, args[0])
	}
	return cmd, cfg
}

func main() {
	cmd, cfg := newRootCmd()
	if err := cmd.Execute(); err != nil {
		failureLogger(cfg).Error("Could not add the irregular grid dataset", "err", err)
		os.Exit(1)
	}
}
