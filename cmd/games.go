package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/volmix/internal/adapters/gamecache"
	"github.com/bnema/volmix/internal/domain"
	"github.com/spf13/cobra"
)

func newGamesCmd(flags *rootFlags) *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List the game executables matched by <steamgame>",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, app *app) error {
			var (
				games domain.GameSet
				err   error
			)
			switch {
			case refresh && !asJSON:
				games, err = refreshWithProgress(cmd.Context(), cmd.ErrOrStderr(), app.catalog)
			case refresh:
				games, err = app.catalog.Refresh(cmd.Context())
			default:
				games, err = app.catalog.Load(cmd.Context())
			}
			if err != nil {
				if !errors.Is(err, gamecache.ErrCacheWrite) || games == nil {
					return fmt.Errorf("load games: %w", err)
				}
				app.logger.Warn("game cache not persisted", "error", err)
			}

			names := games.Sorted()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(names)
			}

			for _, name := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "rescan the library folders and rewrite the cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output games as JSON")

	return cmd
}
