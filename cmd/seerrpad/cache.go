package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/seerrpad/internal/store"
)

func newCacheCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the on-disk poster store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(opts, func(s *store.ImageStore) error {
				if !s.Enabled() {
					fmt.Fprintln(cmd.OutOrStdout(), "Poster store disabled (cache.dir is empty)")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d posters stored\n", s.Count())
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every stored poster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(opts, func(s *store.ImageStore) error {
				n := s.Count()
				if err := s.InvalidateAll(); err != nil {
					return fmt.Errorf("failed to clear poster store: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d posters\n", n)
				return nil
			})
		},
	})
	return cmd
}

// withStore opens the poster store for the configured server
func withStore(opts *cliOptions, fn func(*store.ImageStore) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	s, err := store.NewImageStore(cfg.Cache.Dir, cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open poster store: %w", err)
	}
	defer s.Close()
	return fn(s)
}
