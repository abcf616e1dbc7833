package operations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFields(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "state"}, splitFields("id,name,state"))
	assert.Equal(t, []string{"id", "name"}, splitFields(" ID , Name "))
	assert.Equal(t, []string{"id"}, splitFields("id,,"))
	assert.Empty(t, splitFields(""))
}

func TestSortRows(t *testing.T) {
	rows := []row{
		{"name": "web", "state": "running"},
		{"name": "db1", "state": "stopped"},
		{"name": "db0", "state": "running"},
	}
	sortRows(rows, []string{"state", "name"})
	assert.Equal(t, "db0", rows[0]["name"])
	assert.Equal(t, "web", rows[1]["name"])
	assert.Equal(t, "db1", rows[2]["name"])
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "b6979942", shortID("b6979942-7d5d-4fe6-a2ec-b812e950625a"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "", shortID(""))
}

func TestShortAge(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "-", shortAge(time.Time{}))
	assert.Equal(t, "30s", shortAge(now.Add(-30*time.Second)))
	assert.Equal(t, "5m", shortAge(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h", shortAge(now.Add(-3*time.Hour)))
	assert.Equal(t, "4d", shortAge(now.Add(-4*24*time.Hour)))
	assert.Equal(t, "3w", shortAge(now.Add(-25*24*time.Hour)))
	assert.Equal(t, "2y", shortAge(now.Add(-800*24*time.Hour)))
}

func TestMibSize(t *testing.T) {
	assert.Equal(t, "-", mibSize(0))
	assert.Equal(t, "-", mibSize(-5))
	assert.Equal(t, "256 MiB", mibSize(256))
	assert.Equal(t, "10 GiB", mibSize(10240))
}

func TestParseVolumeMount(t *testing.T) {
	mount, err := parseVolumeMount("data")
	require.NoError(t, err)
	assert.Equal(t, "data", mount.Name)
	assert.Empty(t, mount.Mountpoint)

	mount, err = parseVolumeMount("data:/var/db")
	require.NoError(t, err)
	assert.Equal(t, "/var/db", mount.Mountpoint)

	mount, err = parseVolumeMount("data:/var/db:ro")
	require.NoError(t, err)
	assert.Equal(t, "ro", mount.Mode)

	_, err = parseVolumeMount("data:/var/db:rwx")
	assert.Error(t, err)

	_, err = parseVolumeMount(":/var/db")
	assert.Error(t, err)
}

func TestParseMiB(t *testing.T) {
	size, err := parseMiB("10240")
	require.NoError(t, err)
	assert.Equal(t, int64(10240), size)

	_, err = parseMiB("ten")
	assert.Error(t, err)
}

func TestPastTense(t *testing.T) {
	assert.Equal(t, "Started", pastTense("start"))
	assert.Equal(t, "Stopped", pastTense("stop"))
	assert.Equal(t, "Rebooted", pastTense("reboot"))
}
