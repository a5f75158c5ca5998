package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/xtding233/dicesim/internal/transport/grpcapi"
	"github.com/xtding233/dicesim/internal/trials"
)

func newTrialsCmd(a *app) *cobra.Command {
	var (
		rf      runFlags
		goal    string
		n       int
		workers int
		quiet   bool
	)
	cmd := &cobra.Command{
		Use:   "trials <game>",
		Short: "Play a game many times and summarize one metric",
		Long: `Plays the game --trials times and reports mean, spread and percentiles
of the chosen goal: jackpots, first_jackpot, distinct_combinations or
distinct_permutations. Trial i is seeded with seed+i.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := trials.ParseGoal(goal)
			if err != nil {
				return err
			}

			var resp grpcapi.TrialsResponse
			if addr := a.remote(); addr != "" {
				c, closeConn, err := dial(addr)
				if err != nil {
					return err
				}
				defer closeConn()
				resp, err = c.Trials(cmd.Context(), grpcapi.TrialsRequest{
					Game:   args[0],
					Goal:   string(g),
					Trials: n,
					Rolls:  rf.remoteRolls(cmd),
					Seed:   rf.remoteSeed(cmd),
				})
				if err != nil {
					return err
				}
			} else {
				res, err := a.loader().Load(args[0], rf.overrides(cmd))
				if err != nil {
					return err
				}
				seed := res.BaseSeed()

				var progress func()
				if !quiet && !rf.asJSON {
					bar := progressbar.NewOptions(n,
						progressbar.OptionSetWriter(cmd.ErrOrStderr()),
						progressbar.OptionSetDescription("trials"),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
					defer bar.Finish()
					progress = func() { _ = bar.Add(1) }
				}

				stats, err := trials.Run[string](cmd.Context(), res.Build, g,
					trials.Params{Rolls: res.Rolls, Trials: n, Seed: seed, Workers: workers}, progress)
				if err != nil {
					return err
				}
				resp = grpcapi.TrialsResponse{Game: args[0], Goal: g, Seed: seed, Stats: stats}
			}

			if rf.asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return renderStats(cmd.OutOrStdout(), resp)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&goal, "goal", string(trials.GoalJackpots), "metric to summarize")
	cmd.Flags().IntVarP(&n, "trials", "t", 1000, "number of games to play")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers, 0 for GOMAXPROCS")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func renderStats(w io.Writer, r grpcapi.TrialsResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "game\t%s\n", r.Game)
	fmt.Fprintf(tw, "goal\t%s\n", r.Goal)
	fmt.Fprintf(tw, "seed\t%d\n", r.Seed)
	fmt.Fprintf(tw, "trials\t%d\n", r.Stats.Trials)
	fmt.Fprintf(tw, "mean\t%.4f\n", r.Stats.Mean)
	fmt.Fprintf(tw, "stddev\t%.4f\n", r.Stats.StdDev)
	fmt.Fprintf(tw, "min / max\t%d / %d\n", r.Stats.Min, r.Stats.Max)
	fmt.Fprintf(tw, "p50 / p90 / p99\t%.2f / %.2f / %.2f\n", r.Stats.P50, r.Stats.P90, r.Stats.P99)
	return tw.Flush()
}
