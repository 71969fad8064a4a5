package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// CoreSection is the [core] section of a repository config.
type CoreSection struct {
	RepositoryFormatVersion int  `ini:"repositoryformatversion"`
	Bare                    bool `ini:"bare"`
}

// RemoteSection is one [remote "name"] section.
type RemoteSection struct {
	URL    string `ini:"url"`
	Fetch  string `ini:"fetch"`
	Mirror bool   `ini:"mirror"`
}

// Config is the subset of a repository config the mirror reads.
type Config struct {
	Core    CoreSection
	Remotes map[string]RemoteSection
}

// IsMirror reports whether the config describes a bare mirror of origin.
func (c *Config) IsMirror() bool {
	remote, ok := c.Remotes[DefaultRemote]
	return c.Core.Bare && ok && remote.Mirror
}

// LoadConfig parses <gitDir>/config. For a bare mirror gitDir is the
// mirror directory itself.
func LoadConfig(gitDir string) (*Config, error) {
	path := filepath.Join(gitDir, "config")

	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read git config %s: %w", path, err)
	}

	gitConfig := Config{Remotes: make(map[string]RemoteSection)}

	if err := cfg.Section("core").MapTo(&gitConfig.Core); err != nil {
		return nil, fmt.Errorf("failed to parse core section of %s: %w", path, err)
	}

	for _, sec := range cfg.Sections() {
		name, ok := subsection(sec.Name(), "remote")
		if !ok {
			continue
		}

		var remote RemoteSection
		if err := sec.MapTo(&remote); err != nil {
			return nil, fmt.Errorf("failed to parse remote %q of %s: %w", name, path, err)
		}

		remote.URL = strings.TrimSpace(remote.URL)
		gitConfig.Remotes[name] = remote
	}

	return &gitConfig, nil
}

// subsection extracts "origin" from `remote "origin"`.
func subsection(section, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(section, prefix+" ")
	if !ok {
		return "", false
	}

	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false
	}

	return rest[1 : len(rest)-1], true
}
