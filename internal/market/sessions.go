package market

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Window is a named intraday session window in local exchange time.
//
// When Complement is set the window means "everything outside
// [Start, End]" — the usual way extended hours are defined relative to
// the regular session. When End precedes Start the window crosses
// midnight (overnight sessions).
type Window struct {
	Start      string `yaml:"start"`
	End        string `yaml:"end"`
	Complement bool   `yaml:"complement,omitempty"`
}

// CrossesMidnight reports whether the window wraps past 00:00.
func (w Window) CrossesMidnight() bool {
	start, err1 := parseClock(w.Start)
	end, err2 := parseClock(w.End)
	if err1 != nil || err2 != nil {
		return false
	}
	return end.Before(start)
}

func parseClock(s string) (time.Time, error) {
	if strings.Count(s, ":") == 2 {
		return time.Parse("15:04:05", s)
	}
	return time.Parse("15:04", s)
}

// SessionConfig maps session names to windows, with optional per-symbol
// overrides. Names are matched case-insensitively.
type SessionConfig struct {
	Defaults map[string]Window            `yaml:"defaults"`
	Symbols  map[string]map[string]Window `yaml:"symbols,omitempty"`
}

// DefaultSessions returns the built-in US-equity session table: a
// regular-hours window and extended hours as its complement.
func DefaultSessions() *SessionConfig {
	return &SessionConfig{
		Defaults: map[string]Window{
			"rth": {Start: "09:30:00", End: "16:00:00"},
			"eth": {Start: "09:30:00", End: "16:00:00", Complement: true},
		},
	}
}

// LoadSessions reads a session config from a YAML file and merges it over
// the built-in defaults. Windows in the file replace same-named defaults;
// per-symbol tables are taken as-is.
func LoadSessions(path string) (*SessionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session config: %w", err)
	}

	var loaded SessionConfig
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parsing session config: %w", err)
	}

	cfg := DefaultSessions()
	for name, w := range loaded.Defaults {
		if err := checkWindow(name, w); err != nil {
			return nil, err
		}
		cfg.Defaults[strings.ToLower(name)] = w
	}
	if len(loaded.Symbols) > 0 {
		cfg.Symbols = make(map[string]map[string]Window, len(loaded.Symbols))
		for sym, table := range loaded.Symbols {
			dst := make(map[string]Window, len(table))
			for name, w := range table {
				if err := checkWindow(sym+"."+name, w); err != nil {
					return nil, err
				}
				dst[strings.ToLower(name)] = w
			}
			cfg.Symbols[sym] = dst
		}
	}
	return cfg, nil
}

func checkWindow(name string, w Window) error {
	if _, err := parseClock(w.Start); err != nil {
		return fmt.Errorf("session %s: bad start time %q", name, w.Start)
	}
	if _, err := parseClock(w.End); err != nil {
		return fmt.Errorf("session %s: bad end time %q", name, w.End)
	}
	return nil
}

// SessionWindow resolves a named session for a symbol. Per-symbol tables
// shadow the defaults.
func (c *SessionConfig) SessionWindow(symbol, name string) (Window, bool) {
	name = strings.ToLower(name)
	if table, ok := c.Symbols[symbol]; ok {
		if w, ok := table[name]; ok {
			return w, true
		}
	}
	w, ok := c.Defaults[name]
	return w, ok
}

// ListSessions returns every session name configured for a symbol,
// sorted for deterministic output.
func (c *SessionConfig) ListSessions(symbol string) []string {
	names := make(map[string]bool, len(c.Defaults))
	for name := range c.Defaults {
		names[name] = true
	}
	for name := range c.Symbols[symbol] {
		names[name] = true
	}

	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
