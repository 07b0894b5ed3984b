package cmd

import (
	"github.com/bnema/volmix/internal/adapters/render/overlay"
	"github.com/spf13/cobra"
)

const (
	backendPulse  = "pulse"
	backendMemory = "memory"
)

type rootFlags struct {
	configPath   string
	backend      string
	pulseServer  string
	logLevel     string
	logFormat    string
	logFile      string
	fakeSessions []string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "volmix",
		Short:         "volmix: per-application volume mixer overlay",
		Long:          "volmix resolves the running audio sessions into an ordered row of volume controls described by your config, and lets you select one with the number keys and adjust it with the arrow keys.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: withAppLogging(flags, overlayLogs, func(cmd *cobra.Command, app *app) error {
			return overlay.Run(cmd.Context(), app.mixer, app.labeler, overlay.Options{
				RenderOptions:   app.renderOptions(),
				AutoClose:       app.cfg.AutoClose,
				CloseOnDeselect: app.cfg.CloseOnDeselect,
			}, app.logger)
		}),
	}

	bindRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newVersionCmd(),
		newControlsCmd(flags),
		newGamesCmd(flags),
		newVolumeCmd(flags),
		newConfigCmd(flags),
	)

	return rootCmd
}

func bindRootFlags(cmd *cobra.Command, flags *rootFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file path (default: <user config dir>/volmix/conf.json)")
	pf.StringVar(&flags.backend, "backend", backendPulse, "audio backend: pulse or memory")
	pf.StringVar(&flags.pulseServer, "pulse-server", "", "pulse server address (default: from the environment)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
	pf.StringVar(&flags.logFile, "log-file", "", "append logs to this file instead of stderr")
	pf.StringArrayVar(&flags.fakeSessions, "fake-session", nil, "session for the memory backend as process[:pid[:volume]] (repeatable)")
	_ = pf.MarkHidden("fake-session")
}
