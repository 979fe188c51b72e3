package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reversi-local/config"
	"reversi-local/history"
	"reversi-local/snapshot"
	"reversi-local/types"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			path, err := cfg.Storage.SaveFilePath()
			if err != nil {
				return err
			}
			s, err := snapshot.NewFileStore(path).Load()
			if errors.Is(err, snapshot.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved game.")
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "  a b c d e f g h")
			for y := 0; y < types.BoardSize; y++ {
				fmt.Fprintf(out, "%d", y+1)
				for x := 0; x < types.BoardSize; x++ {
					fmt.Fprintf(out, " %s", s.Board.At(types.Coordinate{X: x, Y: y}).Symbol())
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "\n%s  (dark %d, light %d)\n", s.Turn, s.Board.Count(types.Dark), s.Board.Count(types.Light))
			fmt.Fprintf(out, "Dark: %s, Light: %s\n", s.Strategies[0], s.Strategies[1])
			return nil
		},
	}
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished games and the overall record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			path, err := cfg.Storage.HistoryDBPath()
			if err != nil {
				return err
			}
			archive, err := history.Open(path)
			if err != nil {
				return err
			}
			defer archive.Close()

			ctx := context.Background()
			games, err := archive.Recent(ctx, limit)
			if err != nil {
				return err
			}
			totals, err := archive.Totals(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, g := range games {
				fmt.Fprintf(out, "%s  %2d-%-2d  %-10s  %s vs %s\n",
					g.FinishedAt.Format("2006-01-02 15:04"), g.Dark, g.Light,
					types.GameOver(g.Winner), g.Strategies[0], g.Strategies[1])
			}
			fmt.Fprintf(out, "%d games: dark %d, light %d, ties %d\n",
				totals.Games(), totals.DarkWins, totals.LightWins, totals.Ties)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of games to list")
	return cmd
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			path := opts.configPath
			if path == "" {
				if path, err = config.Path(); err != nil {
					return err
				}
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", path)
			fmt.Fprintln(out, string(data))
			return nil
		},
	}
}
