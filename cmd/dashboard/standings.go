package main

import (
	"github.com/spf13/cobra"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/loader"
)

func standingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Load the dashboard documents once and print the normalized view",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			source, closer, err := buildSource(ctx, a.cfg.Data)
			if err != nil {
				return err
			}
			defer closer.Close()

			docs := loader.New(source).Load(ctx)
			return printJSON(newNormalizer(a.cfg.Team).NormalizeAll(docs))
		},
	}
}
