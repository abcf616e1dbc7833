package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/errs"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Get("east1")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	p := validProfile()
	require.NoError(t, store.Save(p, SaveOptions{}))

	got, err := store.Get("east1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// saving did not move the current pointer
	current, err := store.CurrentName()
	require.NoError(t, err)
	assert.Equal(t, EnvProfileName, current)
}

func TestStoreSaveRejectsInvalid(t *testing.T) {
	store := NewStore(t.TempDir())

	bad := validProfile()
	bad.KeyID = ""
	assert.Error(t, store.Save(bad, SaveOptions{}))

	env := validProfile()
	env.Name = EnvProfileName
	err := store.Save(env, SaveOptions{})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}

func TestStoreSetCurrent(t *testing.T) {
	store := NewStore(t.TempDir())

	// pointing at a missing profile fails
	assert.Error(t, store.SetCurrent("nope"))

	p := validProfile()
	require.NoError(t, store.Save(p, SaveOptions{SetCurrent: true}))

	current, err := store.CurrentName()
	require.NoError(t, err)
	assert.Equal(t, "east1", current)

	// clearing reverts to env
	require.NoError(t, store.SetCurrent(""))
	current, err = store.CurrentName()
	require.NoError(t, err)
	assert.Equal(t, EnvProfileName, current)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	p := validProfile()
	require.NoError(t, store.Save(p, SaveOptions{SetCurrent: true}))

	// deleting the current profile needs force
	err := store.Delete("east1", DeleteOptions{})
	require.Error(t, err)
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))

	require.NoError(t, store.Delete("east1", DeleteOptions{Force: true}))
	_, err = store.Get("east1")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	current, err := store.CurrentName()
	require.NoError(t, err)
	assert.Equal(t, EnvProfileName, current)
}

func TestStoreList(t *testing.T) {
	store := NewStore(t.TempDir())

	profiles, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)

	b := validProfile()
	b.Name = "west1"
	require.NoError(t, store.Save(b, SaveOptions{}))
	require.NoError(t, store.Save(validProfile(), SaveOptions{}))

	profiles, err = store.List()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "east1", profiles[0].Name)
	assert.Equal(t, "west1", profiles[1].Name)
}

func TestStoreGetMismatchedName(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(validProfile(), SaveOptions{}))

	// rename the file out from under the stored name
	old := filepath.Join(dir, triton.ProfilesDir, "east1.json")
	renamed := filepath.Join(dir, triton.ProfilesDir, "other.json")
	require.NoError(t, os.Rename(old, renamed))

	_, err := store.Get("other")
	require.Error(t, err)
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
}

func TestLoadPrefersExplicitProfile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	a := validProfile()
	require.NoError(t, store.Save(a, SaveOptions{SetCurrent: true}))
	b := validProfile()
	b.Name = "west1"
	b.URL = "https://cloudapi.west-1.example.com"
	require.NoError(t, store.Save(b, SaveOptions{}))

	conf, err := Load(dir, Env{}, LoadOptions{ProfileName: "west1"})
	require.NoError(t, err)
	assert.Equal(t, "west1", conf.Profile.Name)

	// without an explicit name the current pointer wins
	conf, err = Load(dir, Env{}, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "east1", conf.Profile.Name)

	// env profile name selects the synthetic env profile
	_, err = Load(dir, Env{}, LoadOptions{ProfileName: EnvProfileName})
	require.Error(t, err)
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
}

func TestLoadCacheDirIsProfileScoped(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(validProfile(), SaveOptions{SetCurrent: true}))

	conf, err := Load(dir, Env{}, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, triton.CacheDir, conf.Profile.Digest()), conf.ProfileCacheDir())
}
