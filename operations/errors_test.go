package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

func TestFormatError(t *testing.T) {
	runningCommand = ""
	t.Cleanup(func() { runningCommand = "" })

	msg := FormatError(errs.New(errs.KindUsage, "missing IMAGE argument"), false)
	assert.Equal(t, "triton: error (Usage): missing IMAGE argument", msg)

	runningCommand = "instance"
	msg = FormatError(errs.New(errs.KindNotFound, "no instance matches \"db0\"").
		WithServer("ResourceNotFound", 404), false)
	assert.Equal(t, `triton instance: error (ResourceNotFound): ResourceNotFound: no instance matches "db0"`, msg)

	// server-kind errors with no code print a bare "error" label
	msg = FormatError(errs.New(errs.KindServer, "internal error"), false)
	assert.Equal(t, "triton instance: error: internal error", msg)
}

func TestFormatErrorVerboseShowsCauseChain(t *testing.T) {
	runningCommand = "instance"
	t.Cleanup(func() { runningCommand = "" })

	inner := errs.New(errs.KindTransport, "connection refused")
	outer := errs.Wrap(errs.KindTransport, inner, "GET /admin/machines")

	terse := FormatError(outer, false)
	assert.NotContains(t, terse, "caused by")

	verbose := FormatError(outer, true)
	assert.Contains(t, verbose, "caused by:")
	assert.Contains(t, verbose, "connection refused")
}

func TestSplitFieldArg(t *testing.T) {
	key, val, err := splitFieldArg("email=ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, "email", key)
	assert.Equal(t, "ops@example.com", val)

	// empty values are allowed, empty keys are not
	_, val, err = splitFieldArg("phone=")
	require.NoError(t, err)
	assert.Empty(t, val)

	_, _, err = splitFieldArg("=x")
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))

	_, _, err = splitFieldArg("bare")
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}
