// Package config loads runbook's configuration via Viper: root_dir, ttl,
// env_variables, and the runtime flags (dry, silent, no_cache, defaults).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
)

// Config is the resolved set of options runbook reads at startup.
type Config struct {
	RootDirs     []string
	TTL          time.Duration
	EnvVariables map[string]string
	Executor     string // "shell" (default) or "tmux"
	TmuxSession  string

	Dry      bool
	Silent   bool
	NoCache  bool
	Defaults map[ids.Identifier][]choice.Choice

	HistoryPath string
	HistoryMax  int
	CachePath   string
}

// Load reads configFile (if non-empty) plus RUNBOOK_-prefixed environment
// variables into a Config. Missing or malformed config files fail with
// ErrLoad.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RUNBOOK")
	v.AutomaticEnv()

	v.SetDefault("ttl", 300)
	v.SetDefault("executor", "shell")
	v.SetDefault("history_max", 500)
	v.SetDefault("history_path", "~/.local/share/runbook/history.json")
	v.SetDefault("cache_path", "~/.local/share/runbook/cache.json")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading config %s: %v", errs.ErrLoad, configFile, err)
		}
	}

	cfg := &Config{
		RootDirs:     v.GetStringSlice("root_dir"),
		TTL:          time.Duration(v.GetInt64("ttl")) * time.Second,
		EnvVariables: v.GetStringMapString("env_variables"),
		Executor:     v.GetString("executor"),
		TmuxSession:  v.GetString("tmux_session"),
		Dry:          v.GetBool("dry"),
		Silent:       v.GetBool("silent"),
		NoCache:      v.GetBool("no_cache"),
		HistoryPath:  expandHome(v.GetString("history_path")),
		HistoryMax:   v.GetInt("history_max"),
		CachePath:    expandHome(v.GetString("cache_path")),
	}
	for i, r := range cfg.RootDirs {
		cfg.RootDirs[i] = expandHome(r)
	}

	defaults, err := parseDefaults(v.GetStringMap("defaults"))
	if err != nil {
		return nil, err
	}
	cfg.Defaults = defaults

	return cfg, nil
}

// parseDefaults turns the raw "defaults" map (identifier string -> list of
// scalar or {value,desc} entries) into the typed overlay the VarStore
// expects.
func parseDefaults(raw map[string]interface{}) (map[ids.Identifier][]choice.Choice, error) {
	out := make(map[ids.Identifier][]choice.Choice, len(raw))
	for k, v := range raw {
		id, err := ids.Sanitize(k)
		if err != nil {
			return nil, fmt.Errorf("%w: defaults key %q: %v", errs.ErrLoad, k, err)
		}
		items, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: defaults for %s must be a list", errs.ErrLoad, id)
		}
		var choices []choice.Choice
		for _, item := range items {
			switch t := item.(type) {
			case string:
				choices = append(choices, choice.New(t, ""))
			case map[string]interface{}:
				value, _ := t["value"].(string)
				desc, _ := t["desc"].(string)
				choices = append(choices, choice.New(value, desc))
			default:
				return nil, fmt.Errorf("%w: defaults for %s: unsupported entry %v", errs.ErrLoad, id, item)
			}
		}
		out[id] = choices
	}
	return out, nil
}
