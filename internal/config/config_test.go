package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybermatrixco/strand/internal/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
stack_size: 65536
resolver_timeout_ms: 1000
script: |
  let greeting = "hi"
run:
  - greeting
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 65536, cfg.StackSize)
	assert.Equal(t, 1000, cfg.ResolverTimeoutMS)
	assert.Contains(t, cfg.Script, "greeting")
	assert.Equal(t, []string{"greeting"}, cfg.Run)
	assert.Equal(t, path, cfg.Path())
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `script: "let x = 1"`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultStackSize, cfg.StackSize)
	assert.Equal(t, DefaultResolverTimeoutMS, cfg.ResolverTimeoutMS)
	assert.Empty(t, cfg.Run)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
script: "1"
stak_size: 4096
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestLoad_RejectsOutOfRangeStackSize(t *testing.T) {
	_, err := Load(writeConfig(t, "stack_size: 16"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "stack_size: 999999999"))
	require.Error(t, err)
}

func TestLoad_RejectsWrongTypes(t *testing.T) {
	_, err := Load(writeConfig(t, `stack_size: "big"`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "run: 5"))
	require.Error(t, err)
}

func TestLoad_EmptyConfigIsValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultStackSize, cfg.StackSize)
}

func TestSources_InlineScriptFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.str"), []byte("let b = 2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.str"), []byte("let a = 1"), 0o644))

	path := filepath.Join(dir, "strand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
script: "let inline = 0"
include:
  - "*.str"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	sources, err := cfg.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 3)

	// inline first, then glob matches in sorted order
	assert.Equal(t, path, sources[0].Name)
	assert.Equal(t, "let inline = 0", sources[0].Text)
	assert.Equal(t, filepath.Join(dir, "a.str"), sources[1].Name)
	assert.Equal(t, filepath.Join(dir, "b.str"), sources[2].Name)
}

func TestSources_EmptyGlobIsError(t *testing.T) {
	path := writeConfig(t, `
include:
  - "missing-*.str"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Sources()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched no files")
}

func TestSources_NoScriptNoIncludes(t *testing.T) {
	cfg, err := Load(writeConfig(t, `run: ["1 + 1"]`))
	require.NoError(t, err)

	sources, err := cfg.Sources()
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestValidate_DirectUse(t *testing.T) {
	assert.NoError(t, Validate([]byte("script: ok")))
	assert.Error(t, Validate([]byte("bogus: true")))
	assert.Error(t, Validate([]byte("script: [unclosed")))
}
