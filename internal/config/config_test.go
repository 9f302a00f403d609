package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/grabarr/pkg/naming"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grabarr.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleConfig = `
[server]
port = 9000
log_level = "debug"

[library]
root = "/movies"
colon_mode = "smart"

[quality]
default = "standard"

[quality.profiles.standard]
min_format_score = 0

[[quality.profiles.standard.tiers]]
name = "WEB 1080p"
enabled = true

[[quality.profiles.standard.tiers]]
name = "Bluray-2160p"
enabled = false

[[formats]]
name = "x265"
score = 10

[[formats.specs]]
pattern = "x265|hevc"
required = true

[indexers.primary]
url = "http://indexer.local"
api_key = "${GRABARR_TEST_INDEXER_KEY}"

[[downloaders.sabnzbd]]
name = "sab"
url = "http://sab.local:8080"
api_key = "sabkey"
category = "movies"

[[downloaders.nzbget]]
name = "nzb"
url = "http://nzbget.local:6789"
username = "nzbget"
password = "tegbzn"

[[path_mappings]]
client = "sab"
remote = "/remote/downloads"
local = "/mnt/downloads"

[poll]
interval_seconds = 45
`

func TestLoad(t *testing.T) {
	t.Setenv("GRABARR_TEST_INDEXER_KEY", "secret-key")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "host defaults")
	assert.Equal(t, "secret-key", cfg.Indexers["primary"].APIKey, "env var substituted")
	assert.Equal(t, 45*time.Second, cfg.Poll.Interval())
	assert.Equal(t, naming.DefaultMovieFormat, cfg.Library.MovieFormat, "format defaults")
	assert.Len(t, cfg.Downloaders.SABnzbd, 1)
	assert.Len(t, cfg.Downloaders.NZBGet, 1)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[library]\nroot = \"/movies\"\n"))
	require.NoError(t, err)

	assert.Equal(t, 8485, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Poll.Interval())
	assert.Equal(t, int64(50), cfg.Library.MinVideoSizeMB)
	assert.Equal(t, naming.ColonSmart, cfg.ColonMode())
}

func TestProfile(t *testing.T) {
	t.Setenv("GRABARR_TEST_INDEXER_KEY", "k")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	profile, ok := cfg.Profile("standard")
	require.True(t, ok)
	assert.True(t, profile.Default)
	require.Len(t, profile.Tiers, 2)
	assert.Equal(t, "WEB 1080p", profile.Tiers[0].Name)
	assert.True(t, profile.Tiers[0].Enabled)
	assert.False(t, profile.Tiers[1].Enabled)

	_, ok = cfg.Profile("ghost")
	assert.False(t, ok)

	assert.Equal(t, "standard", cfg.DefaultProfile().Name)
}

func TestCustomFormats(t *testing.T) {
	t.Setenv("GRABARR_TEST_INDEXER_KEY", "k")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	formats := cfg.CustomFormats()
	require.Len(t, formats, 1)
	assert.Equal(t, "x265", formats[0].Name)
	assert.Equal(t, 10, formats[0].Score)
	require.Len(t, formats[0].Specs, 1)
	assert.True(t, formats[0].Specs[0].Required)
}

func TestImporterConfig(t *testing.T) {
	t.Setenv("GRABARR_TEST_INDEXER_KEY", "k")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	ic := cfg.ImporterConfig()
	assert.Equal(t, "/movies", ic.DefaultRoot)
	assert.Equal(t, int64(50*1024*1024), ic.MinVideoSize)
	require.Len(t, ic.PathMappings, 1)
	assert.Equal(t, "sab", ic.PathMappings[0].Client)
	assert.Equal(t, "/remote/downloads", ic.PathMappings[0].RemotePath)
}

func TestValidate(t *testing.T) {
	t.Setenv("GRABARR_TEST_INDEXER_KEY", "k")

	root := t.TempDir()
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	cfg.Library.Root = root

	assert.Empty(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Library.ColonMode = "bogus"
	cfg.PathMappings = []PathMapping{{Client: "ghost", Remote: "/a", Local: "/b"}}

	errs := cfg.Validate()
	assert.NotEmpty(t, errs)

	joined := ""
	for _, e := range errs {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "library.root: required")
	assert.Contains(t, joined, "colon_mode")
	assert.Contains(t, joined, "at least one indexer")
	assert.Contains(t, joined, "at least one download client")
	assert.Contains(t, joined, `unknown client "ghost"`)
}

func TestSubstituteEnvVars_UnknownLeftUnchanged(t *testing.T) {
	out := substituteEnvVars("key = \"${GRABARR_DOES_NOT_EXIST}\"")
	assert.Contains(t, out, "${GRABARR_DOES_NOT_EXIST}")
}
