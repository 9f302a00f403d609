package config

import (
	"fmt"
	"os"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Library.Root == "" {
		errs = append(errs, "library.root: required")
	} else if _, err := os.Stat(c.Library.Root); os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("library.root: directory %q does not exist", c.Library.Root))
	}

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if _, ok := colonModes[c.Library.ColonMode]; !ok {
		errs = append(errs, fmt.Sprintf("library.colon_mode: must be one of smart, delete, dash, space-dash, space-dash-space; got %q", c.Library.ColonMode))
	}

	if c.Quality.Default != "" && len(c.Quality.Profiles) > 0 {
		if _, ok := c.Quality.Profiles[c.Quality.Default]; !ok {
			errs = append(errs, fmt.Sprintf("quality.default: profile %q not defined", c.Quality.Default))
		}
	}

	for i, fc := range c.Formats {
		if fc.Name == "" {
			errs = append(errs, fmt.Sprintf("formats[%d].name: required", i))
		}
		if len(fc.Specs) == 0 {
			errs = append(errs, fmt.Sprintf("formats[%d]: at least one spec required", i))
		}
	}

	if len(c.Indexers) == 0 {
		errs = append(errs, "indexers: at least one indexer must be configured")
	}
	for name, indexer := range c.Indexers {
		if indexer.URL == "" {
			errs = append(errs, fmt.Sprintf("indexers.%s.url: required", name))
		}
		if indexer.APIKey == "" {
			errs = append(errs, fmt.Sprintf("indexers.%s.api_key: required", name))
		}
	}

	if len(c.Downloaders.SABnzbd) == 0 && len(c.Downloaders.NZBGet) == 0 {
		errs = append(errs, "downloaders: at least one download client must be configured")
	}
	names := make(map[string]bool)
	for i, dc := range c.Downloaders.SABnzbd {
		if dc.Name == "" {
			errs = append(errs, fmt.Sprintf("downloaders.sabnzbd[%d].name: required", i))
		} else if names[dc.Name] {
			errs = append(errs, fmt.Sprintf("downloaders.sabnzbd[%d].name: duplicate client name %q", i, dc.Name))
		}
		names[dc.Name] = true
		if dc.URL == "" {
			errs = append(errs, fmt.Sprintf("downloaders.sabnzbd[%d].url: required", i))
		}
		if dc.APIKey == "" {
			errs = append(errs, fmt.Sprintf("downloaders.sabnzbd[%d].api_key: required", i))
		}
	}
	for i, dc := range c.Downloaders.NZBGet {
		if dc.Name == "" {
			errs = append(errs, fmt.Sprintf("downloaders.nzbget[%d].name: required", i))
		} else if names[dc.Name] {
			errs = append(errs, fmt.Sprintf("downloaders.nzbget[%d].name: duplicate client name %q", i, dc.Name))
		}
		names[dc.Name] = true
		if dc.URL == "" {
			errs = append(errs, fmt.Sprintf("downloaders.nzbget[%d].url: required", i))
		}
	}

	clientNames := names
	for i, m := range c.PathMappings {
		if m.Client == "" || m.Remote == "" || m.Local == "" {
			errs = append(errs, fmt.Sprintf("path_mappings[%d]: client, remote and local are all required", i))
			continue
		}
		if !clientNames[m.Client] {
			errs = append(errs, fmt.Sprintf("path_mappings[%d].client: unknown client %q", i, m.Client))
		}
	}

	return errs
}
