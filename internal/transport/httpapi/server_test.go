package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/dicesim/internal/config"
	"github.com/xtding233/dicesim/internal/report"
	"github.com/xtding233/dicesim/internal/trials"
)

const pairYAML = `
rolls: 60
seed: 3
dice:
  - name: d6
    sides: 6
    count: 2
`

const freeYAML = `
rolls: 40
dice:
  - sides: 6
    count: 2
`

const brokenYAML = `
dice:
  - faces: ["a", "a"]
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	games := filepath.Join(dir, "games")
	require.NoError(t, os.MkdirAll(games, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(games, "pair.yaml"), []byte(pairYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(games, "broken.yaml"), []byte(brokenYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(games, "free.yaml"), []byte(freeYAML), 0o644))

	s := New(config.NewLoader(dir), Limits{MaxRolls: 1000, MaxTrials: 50})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthAndGames(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusOK, get(t, ts, "/healthz", nil))

	var games gamesResp
	assert.Equal(t, http.StatusOK, get(t, ts, "/games", &games))
	assert.Equal(t, []string{"broken", "free", "pair"}, games.Games)
}

func TestPlay(t *testing.T) {
	ts := newTestServer(t)

	var rep report.Report
	code := get(t, ts, "/games/pair/play?layout=narrow&top=3", &rep)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pair", rep.Game)
	assert.Equal(t, 60, rep.Rolls)
	assert.Equal(t, []string{"d6#1", "d6#2"}, rep.Dice)
	assert.Len(t, rep.Narrow, 120)
	assert.LessOrEqual(t, len(rep.Combinations), 3)

	var again report.Report
	get(t, ts, "/games/pair/play?layout=narrow&top=3", &again)
	assert.Equal(t, rep, again, "seed in config makes plays repeatable")

	var short report.Report
	require.Equal(t, http.StatusOK, get(t, ts, "/games/pair/play?rolls=5&seed=11&layout=wide", &short))
	assert.Len(t, short.Wide, 5)
}

func TestPlayErrors(t *testing.T) {
	ts := newTestServer(t)
	var e errResp

	assert.Equal(t, http.StatusNotFound, get(t, ts, "/games/nope/play", &e))
	assert.Equal(t, http.StatusUnprocessableEntity, get(t, ts, "/games/broken/play", &e))
	assert.Contains(t, e.Err, "repeated")
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/games/pair/play?rolls=0", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/games/pair/play?rolls=5000", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/games/pair/play?layout=tall", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/games/pair/play?seed=-1", &e))
}

func TestTrials(t *testing.T) {
	ts := newTestServer(t)
	var resp trialsResp
	require.Equal(t, http.StatusOK, get(t, ts, "/games/pair/trials?trials=20&rolls=36&goal=jackpots", &resp))
	assert.Equal(t, trials.GoalJackpots, resp.Goal)
	assert.Equal(t, 20, resp.Stats.Trials)
	assert.LessOrEqual(t, resp.Stats.Max, 36)

	var e errResp
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/games/pair/trials", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/games/pair/trials?trials=51", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/games/pair/trials?trials=5&goal=bogus", &e))
}

func TestTrialsSeed(t *testing.T) {
	ts := newTestServer(t)

	var seeded trialsResp
	require.Equal(t, http.StatusOK, get(t, ts, "/games/pair/trials?trials=5", &seeded))
	assert.Equal(t, uint64(3), seeded.Seed)

	var a, b trialsResp
	require.Equal(t, http.StatusOK, get(t, ts, "/games/free/trials?trials=20", &a))
	require.Equal(t, http.StatusOK, get(t, ts, "/games/free/trials?trials=20", &b))
	assert.NotEqual(t, a.Seed, b.Seed, "unseeded games draw a fresh base seed")

	var replay trialsResp
	path := "/games/free/trials?trials=20&seed=" + strconv.FormatUint(a.Seed, 10)
	require.Equal(t, http.StatusOK, get(t, ts, path, &replay))
	assert.Equal(t, a.Seed, replay.Seed)
	assert.Equal(t, a.Stats, replay.Stats)
}

func TestRoll(t *testing.T) {
	ts := newTestServer(t)

	var out rollResp
	require.Equal(t, http.StatusOK, get(t, ts, "/roll?faces=a,b,c&weights=0,0,1&n=4", &out))
	assert.Equal(t, []string{"c", "c", "c", "c"}, out.Faces)

	var e errResp
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/roll", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/roll?faces=a,a", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/roll?faces=a,b&weights=1", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/roll?faces=a,b&weights=1,-1", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/roll?faces=a,b&weights=0,0", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/roll?faces=a&n=0", &e))
}
