package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func fakeEnv(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func newSettings(env map[string]string, local, global FileConfig) *Settings {
	s := New(local, global)
	s.lookupEnv = fakeEnv(env)
	return s
}

func TestSettings_Precedence(t *testing.T) {
	local := FileConfig{Owner: strPtr("local"), Repo: strPtr("local-repo")}
	global := FileConfig{Owner: strPtr("global"), Repo: strPtr("global-repo"), OutputFile: strPtr("g.xlsx")}
	s := newSettings(map[string]string{KeyOwner: "env"}, local, global)

	owner, err := s.String(KeyOwner)
	require.NoError(t, err)
	assert.Equal(t, "env", owner)

	repo, err := s.String(KeyRepo)
	require.NoError(t, err)
	assert.Equal(t, "local-repo", repo)

	file, err := s.String(KeyOutputFile)
	require.NoError(t, err)
	assert.Equal(t, "g.xlsx", file)

	s.Set(KeyOwner, "override")
	owner, _ = s.String(KeyOwner)
	assert.Equal(t, "override", owner)
}

func TestSettings_MissingKey(t *testing.T) {
	s := newSettings(nil, FileConfig{}, FileConfig{})
	_, err := s.String(KeyCodeQLCron)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Contains(t, err.Error(), KeyCodeQLCron)

	_, err = s.List(KeySeverityOrder)
	assert.True(t, errors.Is(err, ErrMissingKey))

	assert.Equal(t, DefaultTemplate, s.StringOr(KeyCodeQLTemplate, DefaultTemplate))
}

func TestSettings_BlankEnvIsUnset(t *testing.T) {
	s := newSettings(map[string]string{KeyOwner: "  "}, FileConfig{Owner: strPtr("file")}, FileConfig{})
	v, err := s.String(KeyOwner)
	require.NoError(t, err)
	assert.Equal(t, "file", v)
}

func TestSettings_List(t *testing.T) {
	s := newSettings(map[string]string{KeySeverityOrder: "critical, high,,medium ,low"}, FileConfig{}, FileConfig{})
	got, err := s.List(KeySeverityOrder)
	require.NoError(t, err)
	assert.Equal(t, []string{"critical", "high", "medium", "low"}, got)

	s = newSettings(map[string]string{KeySeverityOrder: " , "}, FileConfig{}, FileConfig{})
	_, err = s.List(KeySeverityOrder)
	assert.True(t, errors.Is(err, ErrMissingKey))
}

func TestSettings_Mapping(t *testing.T) {
	s := newSettings(map[string]string{KeyCodeQLMapping: `{"typescript":"javascript"}`}, FileConfig{}, FileConfig{})
	m, err := s.Mapping(KeyCodeQLMapping)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"typescript": "javascript"}, m)

	s = newSettings(map[string]string{KeyCodeQLMapping: `{}`}, FileConfig{}, FileConfig{})
	m, err = s.Mapping(KeyCodeQLMapping)
	require.NoError(t, err)
	assert.Empty(t, m)

	s = newSettings(nil, FileConfig{CodeQL: &CodeQLConfig{Mapping: map[string]string{"kotlin": "java"}}}, FileConfig{})
	m, err = s.Mapping(KeyCodeQLMapping)
	require.NoError(t, err)
	assert.Equal(t, "java", m["kotlin"])
}

func TestSettings_MappingErrors(t *testing.T) {
	s := newSettings(map[string]string{KeyCodeQLMapping: `not json`}, FileConfig{}, FileConfig{})
	_, err := s.Mapping(KeyCodeQLMapping)
	assert.True(t, errors.Is(err, ErrInvalidKey))

	s = newSettings(nil, FileConfig{}, FileConfig{})
	_, err = s.Mapping(KeyCodeQLMapping)
	assert.True(t, errors.Is(err, ErrMissingKey))
}

func TestSettings_Dir(t *testing.T) {
	s := newSettings(map[string]string{KeyOutputDirectory: "var,reports, codeql"}, FileConfig{}, FileConfig{})
	dir, err := s.Dir(KeyOutputDirectory)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(string(filepath.Separator), "var", "reports", "codeql"), dir)

	abs := t.TempDir()
	assert.Equal(t, abs, RootedPath([]string{abs}))
}

func TestSettings_CodeQLFileKeys(t *testing.T) {
	local := FileConfig{CodeQL: &CodeQLConfig{
		Supports:    strPtr("go,python"),
		Branch:      strPtr("main"),
		ConfigRepo:  strPtr(".github,workflows"),
		ConfigFile:  strPtr("codeql.yml"),
		ConfigLocal: strPtr("tmp,codeql"),
	}}
	s := newSettings(nil, local, FileConfig{})
	supports, err := s.List(KeyCodeQLSupports)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "python"}, supports)
	repo, err := s.List(KeyCodeQLConfigRepo)
	require.NoError(t, err)
	assert.Equal(t, []string{".github", "workflows"}, repo)
}
