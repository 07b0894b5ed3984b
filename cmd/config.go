package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/volmix/internal/adapters/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var errConfigExists = errors.New("config file already exists")

func newConfigCmd(flags *rootFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the config file",
	}

	configCmd.AddCommand(
		newConfigInitCmd(flags),
		newConfigShowCmd(flags),
	)

	return configCmd
}

func newConfigInitCmd(flags *rootFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(flags)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			if _, err := fs.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", errConfigExists, path)
			}

			if err := config.WriteDefaults(fs, path); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func newConfigShowCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config after defaults are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != config.FormatJSON && format != config.FormatTOML {
				return fmt.Errorf("unsupported format %q (use json or toml)", format)
			}

			out, release, err := stderrLogs(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			cfg, _, err := loadConfig(cmd, flags, out)
			if err != nil {
				return err
			}

			return config.Encode(cmd.OutOrStdout(), cfg, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", config.FormatJSON, "output format: json or toml")

	return cmd
}
