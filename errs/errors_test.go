package errs

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "no instance matches %q", "db0")))
	assert.Equal(t, KindCanceled, KindOf(context.Canceled))
	assert.Equal(t, KindTimeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, Kind(""), KindOf(errors.New("unclassified")))

	// the kind survives wrapping with pkg/errors
	wrapped := errors.Wrap(New(KindAuth, "signature rejected"), "running request")
	assert.Equal(t, KindAuth, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindAuth))
}

func TestWrapKeepsCause(t *testing.T) {
	assert.Nil(t, Wrap(KindTransport, nil, "ignored"))

	cause := errors.New("connection refused")
	err := Wrap(KindTransport, cause, "GET /admin/machines")
	require.NotNil(t, err)
	assert.Equal(t, "GET /admin/machines: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorStringIncludesServerCode(t *testing.T) {
	err := New(KindNotFound, "machine not found").WithServer("ResourceNotFound", 404)
	assert.Equal(t, "ResourceNotFound: machine not found", err.Error())
	assert.Equal(t, "ResourceNotFound", CodeOf(err))
	assert.Equal(t, 404, err.Status)

	assert.Empty(t, CodeOf(errors.New("plain")))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(New(KindUsage, "bad flag")))
	assert.Equal(t, ExitNotFound, ExitCode(New(KindNotFound, "gone")))
	assert.Equal(t, ExitError, ExitCode(New(KindServer, "boom")))
	assert.Equal(t, ExitError, ExitCode(errors.New("unclassified")))

	// not-found inside a wrap still exits 3
	assert.Equal(t, ExitNotFound, ExitCode(errors.Wrap(New(KindNotFound, "gone"), "listing")))
}

func TestMultiResolve(t *testing.T) {
	var m Multi
	assert.NoError(t, m.Resolve())
	assert.Zero(t, m.Len())

	m.Add(nil)
	assert.NoError(t, m.Resolve())

	first := New(KindServer, "dc east-1 failed")
	m.Add(first)
	assert.Equal(t, error(first), m.Resolve())

	m.Add(New(KindTransport, "dc west-1 unreachable"))
	err := m.Resolve()
	require.Error(t, err)
	assert.Equal(t, KindMulti, KindOf(err))
	assert.Contains(t, err.Error(), "east-1")
	assert.Contains(t, err.Error(), "west-1")
	assert.Len(t, m.Errors(), 2)
}
