package cloudapi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

func TestParseKeyValuesTyping(t *testing.T) {
	out, warnings, err := ParseKeyValues([]string{
		"role=database",
		"replicas=3",
		"ratio=0.5",
		"primary=true",
		"standby=false",
		"version=1.2.3",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, map[string]interface{}{
		"role":     "database",
		"replicas": int64(3),
		"ratio":    0.5,
		"primary":  true,
		"standby":  false,
		"version":  "1.2.3",
	}, out)
}

func TestParseKeyValuesJSONObject(t *testing.T) {
	out, _, err := ParseKeyValues([]string{`{"role":"database","replicas":3}`})
	require.NoError(t, err)
	assert.Equal(t, "database", out["role"])
	assert.Equal(t, float64(3), out["replicas"])

	_, _, err = ParseKeyValues([]string{`{"role":`})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}

func TestParseKeyValuesFromFile(t *testing.T) {
	dir := t.TempDir()

	kvFile := filepath.Join(dir, "meta.txt")
	require.NoError(t, os.WriteFile(kvFile, []byte("role=database\n# a comment\n\nreplicas=3\n"), 0600))

	out, _, err := ParseKeyValues([]string{"@" + kvFile})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"role": "database", "replicas": int64(3)}, out)

	jsonFile := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"role":"cache"}`), 0600))
	out, _, err = ParseKeyValues([]string{"@" + jsonFile})
	require.NoError(t, err)
	assert.Equal(t, "cache", out["role"])

	_, _, err = ParseKeyValues([]string{"@" + filepath.Join(dir, "missing.txt")})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}

func TestParseKeyValuesWarnsOnRebind(t *testing.T) {
	out, warnings, err := ParseKeyValues([]string{"role=database", "role=cache"})
	require.NoError(t, err)
	assert.Equal(t, "cache", out["role"])
	require.Len(t, warnings, 1)
	assert.Equal(t, "role", warnings[0].Key)
	assert.Contains(t, warnings[0].String(), "database")
}

func TestParseKeyValuesRejectsBareWords(t *testing.T) {
	_, _, err := ParseKeyValues([]string{"not-a-pair"})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))

	_, _, err = ParseKeyValues([]string{"=value"})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}

func TestParseMetadataFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud-init.yaml")
	require.NoError(t, os.WriteFile(path, []byte("#cloud-config\n"), 0600))

	md := map[string]interface{}{"cloud-init:user-data": "old"}
	warnings, err := ParseMetadataFiles(md, []string{"cloud-init:user-data=" + path})
	require.NoError(t, err)
	assert.Equal(t, "#cloud-config\n", md["cloud-init:user-data"])
	require.Len(t, warnings, 1)
	assert.Equal(t, "cloud-init:user-data", warnings[0].Key)

	_, err = ParseMetadataFiles(md, []string{"nofile"})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}

func TestApplyScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boot.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0700))

	md := map[string]interface{}{}
	warnings, err := ApplyScript(md, path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "#!/bin/sh\necho hi\n", md[ScriptMetadataKey])

	// a second script binding warns about the first
	warnings, err = ApplyScript(md, path)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	warnings, err = ApplyScript(md, "")
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestWriteWarnings(t *testing.T) {
	var buf bytes.Buffer
	WriteWarnings(&buf, []KVWarning{{Key: "role", OldValue: "database"}})
	assert.Contains(t, buf.String(), `warning: overwriting earlier value of "role"`)
}
