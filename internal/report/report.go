// Package report turns an analyzer into a JSON-friendly summary and renders
// it as text.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/xtding233/dicesim/internal/analyzer"
	"github.com/xtding233/dicesim/internal/config"
	"github.com/xtding233/dicesim/internal/game"
)

// Report is what every surface (HTTP, gRPC, CLI) shows for one played game.
type Report struct {
	Game         string           `json:"game,omitempty"`
	Version      string           `json:"version,omitempty"`
	Rolls        int              `json:"rolls"`
	Dice         []string         `json:"dice"`
	Jackpots     int              `json:"jackpots"`
	JackpotRate  float64          `json:"jackpot_rate"`
	FaceTotals   map[string]int   `json:"face_totals"`
	Combinations []Entry          `json:"combinations"`
	Permutations []Entry          `json:"permutations"`
	Distinct     DistinctCounts   `json:"distinct"`
	Wide         [][]string       `json:"wide,omitempty"`
	Narrow       []NarrowRow      `json:"narrow,omitempty"`
	FaceCounts   []map[string]int `json:"face_counts,omitempty"`
}

// Entry is one combination or permutation with its count.
type Entry struct {
	Faces []string `json:"faces"`
	Count int      `json:"count"`
}

// DistinctCounts is how many different combinations/permutations came up.
type DistinctCounts struct {
	Combinations int `json:"combinations"`
	Permutations int `json:"permutations"`
}

// NarrowRow is one (roll, die) observation.
type NarrowRow struct {
	Roll int    `json:"roll"`
	Die  int    `json:"die"`
	Face string `json:"face"`
}

// Options controls how much detail Build includes.
type Options struct {
	Game     string
	Version  string
	DieNames []string    // defaults to die0..dieN-1
	Top      int         // combinations/permutations kept, <=0 means all
	Layout   game.Layout // include the table in this layout; "" leaves it out
	PerRoll  bool        // include per-roll face counts
}

// Build summarizes a.
func Build(a *analyzer.Analyzer[string], o Options) (Report, error) {
	names := o.DieNames
	if len(names) == 0 {
		names = make([]string, a.NumDice())
		for i := range names {
			names[i] = fmt.Sprintf("die%d", i)
		}
	}
	combos := a.CombinationCounts()
	perms := a.PermutationCounts()

	r := Report{
		Game:         o.Game,
		Version:      o.Version,
		Rolls:        a.NumRolls(),
		Dice:         names,
		Jackpots:     a.Jackpot(),
		FaceTotals:   a.FaceTotals(),
		Combinations: top(combos, o.Top),
		Permutations: top(perms, o.Top),
		Distinct:     DistinctCounts{Combinations: combos.Len(), Permutations: perms.Len()},
	}
	if r.Rolls > 0 {
		r.JackpotRate = float64(r.Jackpots) / float64(r.Rolls)
	}

	if o.Layout != "" {
		t, err := a.Results(o.Layout)
		if err != nil {
			return Report{}, err
		}
		r.setTable(t)
	}

	if o.PerRoll {
		fc := a.FaceCounts()
		r.FaceCounts = make([]map[string]int, fc.NumRolls())
		for i := range r.FaceCounts {
			r.FaceCounts[i] = fc.Row(i)
		}
	}
	return r, nil
}

// Play builds, plays and summarizes one resolved game. Name, version and die
// names in o are taken from res. The table, when asked for, is the game's
// own Results.
func Play(res config.Resolved, o Options) (Report, error) {
	g, err := res.Build(nil)
	if err != nil {
		return Report{}, err
	}
	if err := g.Play(res.Rolls); err != nil {
		return Report{}, err
	}
	a, err := analyzer.New(g)
	if err != nil {
		return Report{}, err
	}
	layout := o.Layout
	o.Game = res.Name
	o.Version = res.Version
	o.DieNames = res.DieNames()
	o.Layout = ""
	r, err := Build(a, o)
	if err != nil {
		return Report{}, err
	}
	if layout != "" {
		t, err := g.Results(layout)
		if err != nil {
			return Report{}, err
		}
		r.setTable(t)
	}
	return r, nil
}

// setTable copies t into Wide or Narrow depending on its layout.
func (r *Report) setTable(t game.Table[string]) {
	switch t := t.(type) {
	case *game.WideTable[string]:
		r.Wide = t.Rows()
	case *game.NarrowTable[string]:
		obs := t.Observations()
		r.Narrow = make([]NarrowRow, len(obs))
		for i, ob := range obs {
			r.Narrow[i] = NarrowRow{Roll: ob.Roll, Die: ob.Die, Face: ob.Face}
		}
	}
}

func top(ts analyzer.Tallies[string], n int) []Entry {
	sorted := ts.ByCount()
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]Entry, len(sorted))
	for i, t := range sorted {
		out[i] = Entry{Faces: t.Faces, Count: t.Count}
	}
	return out
}

// Render writes r as aligned text.
func Render(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if r.Game != "" {
		fmt.Fprintf(tw, "game\t%s\n", r.Game)
	}
	fmt.Fprintf(tw, "dice\t%s\n", strings.Join(r.Dice, ", "))
	fmt.Fprintf(tw, "rolls\t%d\n", r.Rolls)
	fmt.Fprintf(tw, "jackpots\t%d (%.4f)\n", r.Jackpots, r.JackpotRate)
	fmt.Fprintf(tw, "distinct combinations\t%d\n", r.Distinct.Combinations)
	fmt.Fprintf(tw, "distinct permutations\t%d\n", r.Distinct.Permutations)

	faces := make([]string, 0, len(r.FaceTotals))
	for f := range r.FaceTotals {
		faces = append(faces, f)
	}
	sort.Strings(faces)
	fmt.Fprintln(tw, "\nface\tcount")
	for _, f := range faces {
		fmt.Fprintf(tw, "%s\t%d\n", f, r.FaceTotals[f])
	}

	writeEntries(tw, "combination", r.Combinations)
	writeEntries(tw, "permutation", r.Permutations)

	if len(r.Wide) > 0 {
		fmt.Fprintf(tw, "\nroll\t%s\n", strings.Join(r.Dice, "\t"))
		for i, row := range r.Wide {
			fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(row, "\t"))
		}
	}
	if len(r.Narrow) > 0 {
		fmt.Fprintln(tw, "\nroll\tdie\tface")
		for _, n := range r.Narrow {
			fmt.Fprintf(tw, "%d\t%d\t%s\n", n.Roll, n.Die, n.Face)
		}
	}
	return tw.Flush()
}

func writeEntries(w io.Writer, title string, es []Entry) {
	if len(es) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\tcount\n", title)
	for _, e := range es {
		fmt.Fprintf(w, "(%s)\t%d\n", strings.Join(e.Faces, ","), e.Count)
	}
}
