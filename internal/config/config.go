package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// BackendKind selects which remote backend, if any, is authoritative.
type BackendKind string

const (
	BackendNone        BackendKind = "none"
	BackendSpreadsheet BackendKind = "spreadsheet"
	BackendDocStore    BackendKind = "docstore"
)

// CacheDriver selects how the local cache slots are persisted.
type CacheDriver string

const (
	CacheFile   CacheDriver = "file"
	CacheSQLite CacheDriver = "sqlite"
)

// Config is the root configuration for heatlog, stored in ~/.heatlog/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Backend     BackendConfig `json:"backend"`
	Cache       CacheConfig   `json:"cache"`
	Goal        GoalConfig    `json:"goal"`
	Bootstrap   string        `json:"bootstrap"    env:"HEATLOG_BOOTSTRAP"`
	ContentBase string        `json:"content_base" env:"HEATLOG_CONTENT_BASE"`
	Timezone    string        `json:"timezone"     env:"HEATLOG_TIMEZONE"     env-default:"Local"`
}

// BackendConfig describes the remote backend.
type BackendConfig struct {
	Kind BackendKind `json:"kind"     env:"HEATLOG_BACKEND"  env-default:"none"`
	// Endpoint is the spreadsheet web-app URL or the document-store contents URL.
	Endpoint string `json:"endpoint" env:"HEATLOG_ENDPOINT"`
	// Credential is passed through as a bearer token. Prefer the keyring.
	Credential string `json:"credential" env:"HEATLOG_CREDENTIAL"`
	// Path is the repository-relative document holding all records.
	Path   string `json:"path"   env:"HEATLOG_DOC_PATH"   env-default:"data/records.json"`
	Branch string `json:"branch" env:"HEATLOG_DOC_BRANCH"`
}

// CacheConfig describes the local cache.
type CacheConfig struct {
	Driver CacheDriver `json:"driver" env:"HEATLOG_CACHE_DRIVER" env-default:"file"`
	// Dir defaults to ~/.heatlog/cache.
	Dir string `json:"dir" env:"HEATLOG_CACHE_DIR"`
}

// GoalConfig is the interval the progress bar is measured against.
type GoalConfig struct {
	Start string `json:"start" env:"HEATLOG_GOAL_START" env-default:"2026-01-01"`
	End   string `json:"end"   env:"HEATLOG_GOAL_END"   env-default:"2029-12-31"`
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return timecalc.LoadLocation(c.Timezone)
}

// Validate checks the resolved configuration for contradictions.
func (c Config) Validate() error {
	switch c.Backend.Kind {
	case BackendNone:
	case BackendSpreadsheet, BackendDocStore:
		if c.Backend.Endpoint == "" {
			return fmt.Errorf("backend %q requires an endpoint", c.Backend.Kind)
		}
	default:
		return fmt.Errorf("unknown backend kind %q (want none, spreadsheet or docstore)", c.Backend.Kind)
	}

	switch c.Cache.Driver {
	case CacheFile, CacheSQLite:
	default:
		return fmt.Errorf("unknown cache driver %q (want file or sqlite)", c.Cache.Driver)
	}

	loc, err := c.Location()
	if err != nil {
		return err
	}
	start, err := timecalc.ParseDateKey(c.Goal.Start, loc)
	if err != nil {
		return fmt.Errorf("goal start: %w", err)
	}
	end, err := timecalc.ParseDateKey(c.Goal.End, loc)
	if err != nil {
		return fmt.Errorf("goal end: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("goal end %s must be after goal start %s", c.Goal.End, c.Goal.Start)
	}
	return nil
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// heatlog configuration – ~/.heatlog/config.json
//
// Every setting can also be supplied through HEATLOG_* environment variables,
// which take precedence over this file.
{
  // ── Remote backend ───────────────────────────────────────────────────────
  "backend": {
    // • "none"        – local cache and bootstrap file only (default)
    // • "spreadsheet" – web-app endpoint answering ?action=getAll / POST
    // • "docstore"    – contents API of a version-controlled repository
    "kind": "none",

    // Spreadsheet web-app URL, or the contents URL of the repository,
    // e.g. "https://api.github.com/repos/<owner>/<repo>/contents".
    "endpoint": "",

    // Repository-relative path of the records document (docstore only).
    "path": "data/records.json",

    // Branch to read and commit to; empty = repository default.
    "branch": ""
  },

  // ── Local cache ──────────────────────────────────────────────────────────
  "cache": {
    // "file" (one JSON file per slot) or "sqlite".
    "driver": "file",
    // Empty = ~/.heatlog/cache
    "dir": ""
  },

  // Static bootstrap file used when neither backend nor cache has data.
  // Either a URL or a local path.
  "bootstrap": "",

  // Location of the per-day markdown files (data/<YYYY-MM-DD>.md).
  // Either a URL or a local directory.
  "content_base": "",

  // ── Progress goal ────────────────────────────────────────────────────────
  "goal": {
    "start": "2026-01-01",
    "end": "2029-12-31"
  },

  // IANA timezone used to decide what "today" is. "Local" = system zone.
  "timezone": "Local"
}
`

// BaseDir returns the root data directory (~/.heatlog).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".heatlog"), nil
}

// DefaultPath returns the path to ~/.heatlog/config.json.
func DefaultPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path, creating it with annotated defaults on first
// run. Environment variables override file values and fill in defaults.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := cleanenv.ParseJSON(bytes.NewReader(stripLineComments(data)), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.Cache.Dir == "" {
		if dir, err := BaseDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(dir, "cache")
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
