// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vmunix/grabarr/internal/importer"
	"github.com/vmunix/grabarr/internal/search"
	"github.com/vmunix/grabarr/pkg/naming"
)

// Config is the root configuration structure.
type Config struct {
	Server       ServerConfig             `toml:"server"`
	Database     DatabaseConfig           `toml:"database"`
	Library      LibraryConfig            `toml:"library"`
	Quality      QualityConfig            `toml:"quality"`
	Formats      []FormatConfig           `toml:"formats"`
	Indexers     map[string]IndexerConfig `toml:"indexers"`
	Downloaders  DownloadersConfig        `toml:"downloaders"`
	PathMappings []PathMapping            `toml:"path_mappings"`
	Poll         PollConfig               `toml:"poll"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LibraryConfig struct {
	Root           string `toml:"root"`
	MovieFormat    string `toml:"movie_format"`
	FolderFormat   string `toml:"folder_format"`
	ColonMode      string `toml:"colon_mode"`
	MinVideoSizeMB int64  `toml:"min_video_size_mb"`
	FFProbePath    string `toml:"ffprobe_path"`
}

type QualityConfig struct {
	Default  string                   `toml:"default"`
	Profiles map[string]ProfileConfig `toml:"profiles"`
}

type ProfileConfig struct {
	MinFormatScore    int          `toml:"min_format_score"`
	UpgradesAllowed   bool         `toml:"upgrades_allowed"`
	UpgradeUntil      string       `toml:"upgrade_until"`
	UpgradeUntilScore int          `toml:"upgrade_until_score"`
	Tiers             []TierConfig `toml:"tiers"`
}

type TierConfig struct {
	Name    string `toml:"name"`
	Enabled bool   `toml:"enabled"`
	Score   int    `toml:"score"`
}

type FormatConfig struct {
	Name  string       `toml:"name"`
	Score int          `toml:"score"`
	Specs []SpecConfig `toml:"specs"`
}

type SpecConfig struct {
	Pattern    string `toml:"pattern"`
	Required   bool   `toml:"required"`
	Negate     bool   `toml:"negate"`
	Resolution bool   `toml:"resolution"`
}

type IndexerConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

type DownloadersConfig struct {
	SABnzbd []SABnzbdConfig `toml:"sabnzbd"`
	NZBGet  []NZBGetConfig  `toml:"nzbget"`
}

type SABnzbdConfig struct {
	Name     string `toml:"name"`
	URL      string `toml:"url"`
	APIKey   string `toml:"api_key"`
	Category string `toml:"category"`
}

type NZBGetConfig struct {
	Name     string `toml:"name"`
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Category string `toml:"category"`
}

type PathMapping struct {
	Client string `toml:"client"`
	Remote string `toml:"remote"`
	Local  string `toml:"local"`
}

type PollConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Interval returns the poll interval as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8485
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/grabarr.db"
	}
	if c.Library.MovieFormat == "" {
		c.Library.MovieFormat = naming.DefaultMovieFormat
	}
	if c.Library.FolderFormat == "" {
		c.Library.FolderFormat = naming.DefaultFolderFormat
	}
	if c.Library.MinVideoSizeMB == 0 {
		c.Library.MinVideoSizeMB = 50
	}
	if c.Poll.IntervalSeconds == 0 {
		c.Poll.IntervalSeconds = 30
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}

// colonModes maps configuration values to naming colon modes.
var colonModes = map[string]naming.ColonMode{
	"":                 naming.ColonSmart,
	"smart":            naming.ColonSmart,
	"delete":           naming.ColonDelete,
	"dash":             naming.ColonDash,
	"space-dash":       naming.ColonSpaceDash,
	"space-dash-space": naming.ColonSpaceDashSpace,
}

// ColonMode resolves the configured colon handling mode.
func (c *Config) ColonMode() naming.ColonMode {
	return colonModes[c.Library.ColonMode]
}

// Profile builds the search profile with the given name. The returned
// bool reports whether the profile exists.
func (c *Config) Profile(name string) (search.Profile, bool) {
	pc, ok := c.Quality.Profiles[name]
	if !ok {
		return search.Profile{}, false
	}

	profile := search.Profile{
		Name:              name,
		Default:           name == c.Quality.Default,
		UpgradesAllowed:   pc.UpgradesAllowed,
		UpgradeUntil:      pc.UpgradeUntil,
		MinFormatScore:    pc.MinFormatScore,
		UpgradeUntilScore: pc.UpgradeUntilScore,
	}
	for i, tc := range pc.Tiers {
		profile.Tiers = append(profile.Tiers, search.QualityTier{
			ID:      i + 1,
			Name:    tc.Name,
			Enabled: tc.Enabled,
			Order:   i,
			Score:   tc.Score,
		})
	}
	return profile, true
}

// DefaultProfile returns the configured default profile, or a permissive
// empty profile when none is configured.
func (c *Config) DefaultProfile() search.Profile {
	if p, ok := c.Profile(c.Quality.Default); ok {
		return p
	}
	return search.Profile{Name: "any"}
}

// CustomFormats builds the scorer rules from the configuration.
func (c *Config) CustomFormats() []search.CustomFormat {
	formats := make([]search.CustomFormat, 0, len(c.Formats))
	for _, fc := range c.Formats {
		cf := search.CustomFormat{Name: fc.Name, Score: fc.Score}
		for _, sc := range fc.Specs {
			cf.Specs = append(cf.Specs, search.FormatSpec{
				Pattern:      sc.Pattern,
				Required:     sc.Required,
				Negate:       sc.Negate,
				IsResolution: sc.Resolution,
			})
		}
		formats = append(formats, cf)
	}
	return formats
}

// ImporterConfig builds the import executor configuration.
func (c *Config) ImporterConfig() importer.Config {
	mappings := make([]importer.PathMapping, 0, len(c.PathMappings))
	for _, m := range c.PathMappings {
		mappings = append(mappings, importer.PathMapping{
			Client:     m.Client,
			RemotePath: m.Remote,
			LocalPath:  m.Local,
		})
	}
	return importer.Config{
		DefaultRoot:  c.Library.Root,
		MovieFormat:  c.Library.MovieFormat,
		FolderFormat: c.Library.FolderFormat,
		ColonMode:    c.ColonMode(),
		MinVideoSize: c.Library.MinVideoSizeMB * 1024 * 1024,
		PathMappings: mappings,
	}
}
