// Package config holds the explicit configuration of a mirror run.
//
// Values are layered: [Default], then an optional .env file and the
// GITHUB_CLONER_* environment ([Load]), then command line flags, which the
// cmd package applies on top. The resulting [Config] is passed to
// constructors; nothing here is global.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kb-dk/github-cloner/internal/application"
	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/kb-dk/github-cloner/internal/store"
)

const (
	DefaultAPIURL      = "https://api.github.com/"
	DefaultPerPage     = 100
	DefaultParallel    = 1
	DefaultHTTPTimeout = 30 * time.Second
	DefaultGitTimeout  = 10 * time.Minute

	MaxPerPage  = 100
	MaxParallel = 32
)

// Journal drivers.
const (
	DriverBolt   = store.DriverBolt
	DriverSQLite = store.DriverSQLite
	DriverNone   = store.DriverNone
)

// Config is everything a run needs to know.
type Config struct {
	// Dest is the root under which repos/<owner> and gists/<owner> live.
	Dest string

	Orgs  []string
	Users []string
	Kinds []model.CollectionKind

	APIURL            string
	PerPage           int
	HTTPTimeout       time.Duration
	StrictContentType bool
	Token             string

	GitPath       string
	GitTimeout    time.Duration
	RepointRemote bool

	Parallel int
	DryRun   bool

	JournalPath   string
	JournalDriver string

	LogLevel string
	JSONLogs bool
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Dest:              ".",
		Kinds:             append([]model.CollectionKind(nil), model.AllKinds...),
		APIURL:            DefaultAPIURL,
		PerPage:           DefaultPerPage,
		HTTPTimeout:       DefaultHTTPTimeout,
		StrictContentType: true,
		GitPath:           "git",
		GitTimeout:        DefaultGitTimeout,
		RepointRemote:     true,
		Parallel:          DefaultParallel,
		JournalDriver:     DriverBolt,
		LogLevel:          "info",
	}
}

// Load returns the defaults overlaid with the environment. A .env file in
// the working directory and then config.env in the application directory
// are read first when present.
func Load() (Config, error) {
	paths := []string{".env"}
	if dir, err := application.GetApplicationDirectory(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.env"))
	}

	if err := LoadDotEnv(paths...); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given files, skipping missing ones.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	return nil
}

// ApplyEnv overlays GITHUB_CLONER_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(application.EnvPrefix + name)
		if !ok {
			return "", false
		}

		v = strings.TrimSpace(v)

		return v, v != ""
	}

	if v, ok := get("DEST"); ok {
		c.Dest = v
	}

	if v, ok := get("ORGS"); ok {
		c.Orgs = SplitList(v)
	}

	if v, ok := get("USERS"); ok {
		c.Users = SplitList(v)
	}

	if v, ok := get("KINDS"); ok {
		kinds, err := model.ParseCollectionKinds(SplitList(v))
		if err != nil {
			return fmt.Errorf("%sKINDS: %w", application.EnvPrefix, err)
		}

		c.Kinds = kinds
	}

	if v, ok := get("API_URL"); ok {
		c.APIURL = v
	}

	if v, ok := get("GIT"); ok {
		c.GitPath = v
	}

	if v, ok := get("JOURNAL"); ok {
		c.JournalPath = v
	}

	if v, ok := get("JOURNAL_DRIVER"); ok {
		c.JournalDriver = strings.ToLower(v)
	}

	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"PER_PAGE", &c.PerPage},
		{"PARALLEL", &c.Parallel},
	}

	for _, it := range ints {
		if v, ok := get(it.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", application.EnvPrefix, it.name, err)
			}

			*it.dst = n
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"HTTP_TIMEOUT", &c.HTTPTimeout},
		{"GIT_TIMEOUT", &c.GitTimeout},
	}

	for _, it := range durations {
		if v, ok := get(it.name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", application.EnvPrefix, it.name, err)
			}

			*it.dst = d
		}
	}

	return nil
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	if c.Dest == "" {
		return errors.New("destination directory is empty")
	}

	if c.PerPage < 1 || c.PerPage > MaxPerPage {
		return fmt.Errorf("per-page must be between 1 and %d", MaxPerPage)
	}

	if c.Parallel < 1 || c.Parallel > MaxParallel {
		return fmt.Errorf("parallel must be between 1 and %d", MaxParallel)
	}

	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}

	if c.GitTimeout <= 0 {
		return errors.New("git timeout must be positive")
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL %q", c.APIURL)
	}

	switch c.JournalDriver {
	case DriverBolt, DriverSQLite, DriverNone:
	default:
		return fmt.Errorf("unknown journal driver %q (want %s, %s or %s)",
			c.JournalDriver, DriverBolt, DriverSQLite, DriverNone)
	}

	if len(c.Kinds) == 0 {
		return errors.New("no collection kinds selected")
	}

	return nil
}

// ValidateTargets checks that at least one owner was requested and that no
// owner name is blank or could escape the destination tree.
func (c *Config) ValidateTargets() error {
	if len(c.Orgs) == 0 && len(c.Users) == 0 {
		return errors.New("nothing to mirror: give at least one --org or --user")
	}

	for _, name := range append(append([]string(nil), c.Orgs...), c.Users...) {
		if err := ValidateOwnerName(name); err != nil {
			return err
		}
	}

	return nil
}

// ValidateOwnerName rejects names GitHub would never issue and that would be
// unsafe as a directory name.
func ValidateOwnerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("owner name is empty")
	}

	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid owner name %q", name)
	}

	return nil
}

// Targets builds the owner × kinds matrix for the run.
func (c *Config) Targets() []model.Target {
	return model.Targets(c.Orgs, c.Users, c.Kinds)
}

// JournalFile is the journal location, defaulting to a file in Dest.
func (c *Config) JournalFile() string {
	if c.JournalPath != "" {
		return c.JournalPath
	}

	name := "." + application.AppName + ".bolt"
	if c.JournalDriver == DriverSQLite {
		name = "." + application.AppName + ".sqlite"
	}

	return filepath.Join(c.Dest, name)
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
