// Package httpapi serves game simulations over JSON/HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/xtding233/dicesim/internal/config"
	"github.com/xtding233/dicesim/internal/die"
	"github.com/xtding233/dicesim/internal/game"
	"github.com/xtding233/dicesim/internal/report"
	"github.com/xtding233/dicesim/internal/trials"
)

// Limits caps request sizes.
type Limits struct {
	MaxRolls  int
	MaxTrials int
}

// Server answers simulation requests for games known to a Loader.
type Server struct {
	loader *config.Loader
	limits Limits
}

type errResp struct {
	Err string `json:"err"`
}

type rollResp struct {
	Faces []string `json:"faces"`
}

type gamesResp struct {
	Games []string `json:"games"`
}

type trialsResp struct {
	Game  string       `json:"game"`
	Goal  trials.Goal  `json:"goal"`
	Seed  uint64       `json:"seed,string"` // pass back as ?seed= to repeat the run
	Stats trials.Stats `json:"stats"`
}

// New creates a Server.
func New(loader *config.Loader, limits Limits) *Server {
	return &Server{loader: loader, limits: limits}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /games", s.handleGames)
	mux.HandleFunc("GET /games/{name}/play", s.handlePlay)
	mux.HandleFunc("GET /games/{name}/trials", s.handleTrials)
	mux.HandleFunc("GET /roll", s.handleRoll)
	return mux
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseUint(r *http.Request, key string) (uint64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errResp{Err: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrInvalidName),
		errors.Is(err, game.ErrUnknownLayout),
		errors.Is(err, game.ErrInvalidRollCount),
		errors.Is(err, die.ErrNoFaces),
		errors.Is(err, die.ErrDuplicateFace),
		errors.Is(err, die.ErrWeightCount),
		errors.Is(err, die.ErrInvalidWeight),
		errors.Is(err, die.ErrNegativeWeight),
		errors.Is(err, die.ErrInvalidRollCount),
		errors.Is(err, die.ErrZeroWeight),
		errors.Is(err, trials.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	names, err := s.loader.List()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, gamesResp{Games: names})
}

// overrides reads rolls and seed from the query string.
func (s *Server) overrides(r *http.Request) (config.Overrides, string) {
	var o config.Overrides
	rolls, ok, msg := parseInt(r, "rolls")
	if msg != "" {
		return o, msg
	}
	if ok {
		if rolls < 1 || rolls > s.limits.MaxRolls {
			return o, "rolls must be in [1, " + strconv.Itoa(s.limits.MaxRolls) + "]"
		}
		o.Rolls = &rolls
	}
	seed, ok, msg := parseUint(r, "seed")
	if msg != "" {
		return o, msg
	}
	if ok {
		o.Seed = &seed
	}
	return o, ""
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	o, msg := s.overrides(r)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	topN, _, msg := parseInt(r, "top")
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	res, err := s.loader.Load(name, o)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	if res.Rolls > s.limits.MaxRolls {
		writeErr(w, http.StatusBadRequest, "rolls exceed server limit")
		return
	}
	rep, err := report.Play(res, report.Options{
		Top:     topN,
		Layout:  game.Layout(r.URL.Query().Get("layout")),
		PerRoll: r.URL.Query().Get("per_roll") == "true",
	})
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTrials(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	o, msg := s.overrides(r)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	n, ok, msg := parseInt(r, "trials")
	if !ok || msg != "" || n < 1 || n > s.limits.MaxTrials {
		writeErr(w, http.StatusBadRequest, "missing/invalid param trials")
		return
	}
	goal, err := trials.ParseGoal(r.URL.Query().Get("goal"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.loader.Load(name, o)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	seed := res.BaseSeed()
	stats, err := trials.Run[string](r.Context(), res.Build, goal, trials.Params{Rolls: res.Rolls, Trials: n, Seed: seed}, nil)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trialsResp{Game: name, Goal: goal, Seed: seed, Stats: stats})
}

// handleRoll rolls an ad-hoc die: /roll?faces=a,b,c&weights=1,1,2&n=3
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("faces") == "" {
		writeErr(w, http.StatusBadRequest, "missing param faces")
		return
	}
	faces := strings.Split(q.Get("faces"), ",")
	n := 1
	if v, ok, msg := parseInt(r, "n"); msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	} else if ok {
		n = v
	}
	if n > s.limits.MaxRolls {
		writeErr(w, http.StatusBadRequest, "n exceeds server limit")
		return
	}

	weights := make([]float64, len(faces))
	for i := range weights {
		weights[i] = 1
	}
	if ws := q.Get("weights"); ws != "" {
		parts := strings.Split(ws, ",")
		if len(parts) != len(faces) {
			writeErr(w, http.StatusBadRequest, die.ErrWeightCount.Error())
			return
		}
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				writeErr(w, http.StatusBadRequest, "invalid weights")
				return
			}
			weights[i] = v
		}
	}
	var rng die.RandomSource
	if seed, ok, msg := parseUint(r, "seed"); msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	} else if ok {
		rng = die.NewSeededRNG(seed)
	}

	d, err := die.NewWeighted(faces, weights, rng)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	out, err := d.Roll(n)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rollResp{Faces: out})
}
