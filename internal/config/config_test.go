package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/dicesim/internal/analyzer"
)

const defaultYAML = `
version: "1"
rolls: 100
dice:
  - sides: 6
    count: 2
`

const loadedYAML = `
notes: one loaded die against a fair one
seed: 42
dice:
  - name: loaded
    sides: 6
    weights:
      "6": 5
  - name: fair
    sides: 6
`

const coinYAML = `
version: "2"
rolls: 50
dice:
  - name: coin
    faces: ["H", "T"]
    count: 3
`

func writeGames(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	games := filepath.Join(dir, "games")
	require.NoError(t, os.MkdirAll(games, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(games, name+".yaml"), []byte(body), 0o644))
	}
	return dir
}

func intp(v int) *int       { return &v }
func u64p(v uint64) *uint64 { return &v }

func TestLoadMergedDefaultThenGame(t *testing.T) {
	dir := writeGames(t, map[string]string{"default": defaultYAML, "loaded": loadedYAML})
	l := NewLoader(dir)

	cfg, err := l.LoadMerged("loaded")
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Version, "inherited from default")
	require.NotNil(t, cfg.Rolls)
	assert.Equal(t, 100, *cfg.Rolls)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
	require.Len(t, cfg.Dice, 2, "game dice replace default dice")
	assert.Equal(t, "loaded", cfg.Dice[0].Name)
}

func TestLoadMissingGame(t *testing.T) {
	l := NewLoader(writeGames(t, map[string]string{"default": defaultYAML}))
	_, err := l.LoadMerged("nope")
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = l.LoadMerged("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = l.LoadMerged("default")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLoadWithoutDefault(t *testing.T) {
	l := NewLoader(writeGames(t, map[string]string{"coin": coinYAML}))
	r, err := l.Load("coin", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 50, r.Rolls)
	assert.Equal(t, []string{"coin#1", "coin#2", "coin#3"}, r.DieNames())
	assert.Nil(t, r.Seed)
}

func TestLoadCachesUntilInvalidate(t *testing.T) {
	dir := writeGames(t, map[string]string{"coin": coinYAML})
	l := NewLoader(dir)
	_, err := l.LoadMerged("coin")
	require.NoError(t, err)

	path := filepath.Join(dir, "games", "coin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rolls: 7\ndice:\n  - sides: 2\n"), 0o644))

	cfg, err := l.LoadMerged("coin")
	require.NoError(t, err)
	assert.Equal(t, 50, *cfg.Rolls, "served from cache")

	l.Invalidate()
	cfg, err = l.LoadMerged("coin")
	require.NoError(t, err)
	assert.Equal(t, 7, *cfg.Rolls)
}

func TestInvalidateDuringReadIsNotCached(t *testing.T) {
	l := NewLoader(writeGames(t, map[string]string{"coin": coinYAML}))

	gen := l.gen
	l.Invalidate() // a file event lands while a read is in flight
	l.store("coin", RawConfig{Version: "stale"}, gen)
	_, cached := l.cache["coin"]
	assert.False(t, cached)

	cfg, err := l.LoadMerged("coin")
	require.NoError(t, err)
	assert.NotEqual(t, "stale", cfg.Version)
	assert.Contains(t, l.cache, "coin")
}

func TestBaseSeed(t *testing.T) {
	seed := uint64(77)
	r := Resolved{Seed: &seed}
	assert.Equal(t, uint64(77), r.BaseSeed())

	unseeded := Resolved{}
	assert.NotEqual(t, unseeded.BaseSeed(), unseeded.BaseSeed())
}

func TestList(t *testing.T) {
	l := NewLoader(writeGames(t, map[string]string{"default": defaultYAML, "loaded": loadedYAML, "coin": coinYAML}))
	names, err := l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"coin", "loaded"}, names)

	empty, err := NewLoader(t.TempDir()).List()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestValidateRaw(t *testing.T) {
	assert.NoError(t, ValidateRaw(RawConfig{Dice: []DieSpec{{Sides: 6}}}))

	err := ValidateRaw(RawConfig{
		Rolls: intp(0),
		Dice: []DieSpec{
			{Name: "both", Faces: []string{"a"}, Sides: 2},
			{Name: "none"},
			{Faces: []string{"x", "x"}},
			{Faces: []string{"a", "b"}, Weights: map[string]float64{"c": 1, "a": -1}},
			{Sides: 2, Count: intp(-1)},
		},
	})
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "rolls must be >= 1")
	assert.Contains(t, msg, "dice[0] (both): set either faces or sides")
	assert.Contains(t, msg, "dice[1] (none): faces or sides >= 1 is required")
	assert.Contains(t, msg, `"x" is repeated`)
	assert.Contains(t, msg, `"c" is not a face`)
	assert.Contains(t, msg, "weights[a] must be a finite number >= 0")
	assert.Contains(t, msg, "dice[4].count must be >= 0")

	assert.ErrorContains(t, ValidateRaw(RawConfig{}), "at least one die")
}

func TestResolveOverridesAndWeights(t *testing.T) {
	l := NewLoader(writeGames(t, map[string]string{"default": defaultYAML, "loaded": loadedYAML}))
	r, err := l.Load("loaded", Overrides{Rolls: intp(10), Seed: u64p(9)})
	require.NoError(t, err)
	assert.Equal(t, 10, r.Rolls)
	assert.Equal(t, uint64(9), *r.Seed)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, r.Dice[0].Faces)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 5}, r.Dice[0].Weights)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, r.Dice[1].Weights)

	_, err = Resolve("zero", RawConfig{Dice: []DieSpec{{Sides: 2, Count: intp(0)}}}, Overrides{})
	assert.Error(t, err)

	r, err = Resolve("plain", RawConfig{Dice: []DieSpec{{Sides: 2}}}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, DefaultRolls, r.Rolls)
	assert.Equal(t, []string{"die0"}, r.DieNames())
}

func TestBuildIsReproducibleWithSeed(t *testing.T) {
	l := NewLoader(writeGames(t, map[string]string{"default": defaultYAML, "loaded": loadedYAML}))
	r, err := l.Load("loaded", Overrides{Rolls: intp(200)})
	require.NoError(t, err)

	play := func() [][]string {
		g, err := r.Build(nil)
		require.NoError(t, err)
		require.NoError(t, g.Play(r.Rolls))
		a, err := analyzer.New(g)
		require.NoError(t, err)
		return a.Table().Rows()
	}
	assert.Equal(t, play(), play())
}

func TestBuildAllZeroWeightsFailsOnPlay(t *testing.T) {
	r, err := Resolve("dead", RawConfig{Dice: []DieSpec{{Faces: []string{"a"}, Weights: map[string]float64{"a": 0}}}}, Overrides{})
	require.NoError(t, err)
	g, err := r.Build(nil)
	require.NoError(t, err)
	assert.Error(t, g.Play(1))
}

func TestLoadServerEnv(t *testing.T) {
	t.Setenv("DICESIM_HTTP_ADDR", ":18080")
	t.Setenv("DICESIM_WATCH", "false")
	cfg, err := LoadServerEnv()
	require.NoError(t, err)
	assert.Equal(t, ":18080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.False(t, cfg.Watch)
	assert.Equal(t, 1000000, cfg.MaxRolls)

	t.Setenv("DICESIM_MAX_ROLLS", "0")
	_, err = LoadServerEnv()
	assert.Error(t, err)
}

func TestWatchLoaderInvalidates(t *testing.T) {
	dir := writeGames(t, map[string]string{"coin": coinYAML})
	l := NewLoader(dir)
	_, err := l.LoadMerged("coin")
	require.NoError(t, err)

	var changes atomic.Int32
	w, err := NewWatcher(l.Paths().GamesDir(), func(string) {
		l.Invalidate()
		changes.Add(1)
	})
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "games", "coin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rolls: 3\ndice:\n  - sides: 2\n"), 0o644))

	assert.Eventually(t, func() bool { return changes.Load() > 0 }, 5*time.Second, 20*time.Millisecond)
	cfg, err := l.LoadMerged("coin")
	require.NoError(t, err)
	assert.Equal(t, 3, *cfg.Rolls)
}
