package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGamesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List the games defined under config_dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.loader().List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
