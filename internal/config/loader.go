package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidName  = errors.New("invalid game name")
)

const defaultName = "default"

// Paths helper for default/game files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) GamesDir() string {
	return filepath.Join(p.BaseDir, "games")
}
func (p Paths) DefaultPath() string {
	return filepath.Join(p.GamesDir(), defaultName+".yaml")
}
func (p Paths) GamePath(game string) string {
	return filepath.Join(p.GamesDir(), game+".yaml")
}

// Loader reads YAML game definitions and merges default → game.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: game name
	gen   uint64               // bumped by Invalidate
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the directories the loader reads from.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → game. The default file is optional;
// the game file is not.
func (l *Loader) LoadMerged(game string) (RawConfig, error) {
	if err := checkName(game); err != nil {
		return RawConfig{}, err
	}
	l.mu.RLock()
	if cfg, ok := l.cache[game]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	gen := l.gen
	l.mu.RUnlock()

	defCfg, _, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	gameCfg, found, err := readYAML(l.paths.GamePath(game))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read game %q: %w", game, err)
	}
	if !found {
		return RawConfig{}, fmt.Errorf("%w: %s", ErrGameNotFound, game)
	}

	merged := mergeRaw(defCfg, gameCfg)
	l.store(game, merged, gen)
	return merged, nil
}

// store caches cfg unless Invalidate ran after gen was read; the files may
// have changed under the read.
func (l *Loader) store(game string, cfg RawConfig, gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen == gen {
		l.cache[game] = cfg
	}
}

// Load is LoadMerged followed by Resolve.
func (l *Loader) Load(game string, o Overrides) (Resolved, error) {
	raw, err := l.LoadMerged(game)
	if err != nil {
		return Resolved{}, err
	}
	return Resolve(game, raw, o)
}

// List returns the names of every game file, sorted.
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.paths.GamesDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".yaml")
		if e.IsDir() || !ok || name == defaultName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
	l.gen++
}

func checkName(game string) error {
	if game == "" || game == defaultName || strings.ContainsAny(game, `/\`) || strings.HasPrefix(game, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, game)
	}
	return nil
}

// readYAML loads a YAML file into RawConfig. Missing files return a zero
// cfg with found=false and no error.
func readYAML(path string) (cfg RawConfig, found bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, err
	}
	return cfg, true, nil
}

// mergeRaw overlays b on a: b wins wherever it sets a value.
// Dice are replaced as a whole, never merged die by die.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Rolls != nil {
		r := *b.Rolls
		out.Rolls = &r
	}
	if b.Seed != nil {
		s := *b.Seed
		out.Seed = &s
	}
	if len(b.Dice) > 0 {
		out.Dice = append([]DieSpec(nil), b.Dice...)
	}
	return out
}
