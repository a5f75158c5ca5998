package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xtding233/dicesim/internal/die"
)

func newRollCmd() *cobra.Command {
	var (
		weights []float64
		n       int
		seed    uint64
	)
	cmd := &cobra.Command{
		Use:   "roll <face> [face...]",
		Short: "Roll an ad-hoc die built from the given faces",
		Example: `  dicesim roll 1 2 3 4 5 6 -n 10
  dicesim roll heads tails --weights 3,1 --seed 7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rng die.RandomSource
			if cmd.Flags().Changed("seed") {
				rng = die.NewSeededRNG(seed)
			}
			var (
				d   *die.Die[string]
				err error
			)
			if len(weights) > 0 {
				d, err = die.NewWeighted(args, weights, rng)
			} else {
				d, err = die.New(args, rng)
			}
			if err != nil {
				return err
			}
			out, err := d.Roll(n)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
			return err
		},
	}
	cmd.Flags().Float64SliceVar(&weights, "weights", nil, "one weight per face (default all 1)")
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of rolls")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible rolls")
	return cmd
}
