package main

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xtding233/dicesim/internal/config"
	"github.com/xtding233/dicesim/internal/game"
	"github.com/xtding233/dicesim/internal/report"
	"github.com/xtding233/dicesim/internal/transport/grpcapi"
)

// runFlags are shared by play and trials.
type runFlags struct {
	rolls  int
	seed   uint64
	asJSON bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.rolls, "rolls", "n", 0, "rolls per game (default from the game file)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for reproducible runs (default from the game file)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON instead of text")
}

// overrides returns only the values the user actually set.
func (f *runFlags) overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	if cmd.Flags().Changed("rolls") {
		o.Rolls = &f.rolls
	}
	if cmd.Flags().Changed("seed") {
		o.Seed = &f.seed
	}
	return o
}

// remoteRolls is nil unless --rolls was given, so the server applies the
// same default and validation as a local run.
func (f *runFlags) remoteRolls(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("rolls") {
		return nil
	}
	return &f.rolls
}

func (f *runFlags) remoteSeed(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("seed") {
		return ""
	}
	return strconv.FormatUint(f.seed, 10)
}

func newPlayCmd(a *app) *cobra.Command {
	var (
		rf      runFlags
		layout  string
		topN    int
		perRoll bool
	)
	cmd := &cobra.Command{
		Use:   "play <game>",
		Short: "Play one game and print its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				rep report.Report
				err error
			)
			if addr := a.remote(); addr != "" {
				c, closeConn, derr := dial(addr)
				if derr != nil {
					return derr
				}
				defer closeConn()
				rep, err = c.Play(cmd.Context(), grpcapi.PlayRequest{
					Game:    args[0],
					Rolls:   rf.remoteRolls(cmd),
					Seed:    rf.remoteSeed(cmd),
					Top:     topN,
					Layout:  layout,
					PerRoll: perRoll,
				})
			} else {
				var res config.Resolved
				res, err = a.loader().Load(args[0], rf.overrides(cmd))
				if err == nil {
					rep, err = report.Play(res, report.Options{
						Top:     topN,
						Layout:  game.Layout(layout),
						PerRoll: perRoll,
					})
				}
			}
			if err != nil {
				return err
			}
			if rf.asJSON {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return report.Render(cmd.OutOrStdout(), rep)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&layout, "layout", "", "include the roll table: wide or narrow")
	cmd.Flags().IntVar(&topN, "top", 10, "combinations/permutations to show, 0 for all")
	cmd.Flags().BoolVar(&perRoll, "per-roll", false, "include per-roll face counts (JSON only)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
