package main

import (
	"github.com/spf13/cobra"
)

func newStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print record counts of both stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			worlds, err := opts.catalog.Worlds.Get()
			if err != nil {
				return err
			}
			patterns, err := opts.catalog.Patterns.Get()
			if err != nil {
				return err
			}
			if err := printLine(cmd, worlds.Stats().String()); err != nil {
				return err
			}
			return printLine(cmd, patterns.Stats().String())
		},
	}
}
