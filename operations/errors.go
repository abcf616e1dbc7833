package operations

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

var runningCommand string

// RecordCommand remembers the invoked subcommand for error messages. It is
// meant to run from the app's Before hook.
func RecordCommand(c *cli.Context) error {
	if args := c.Args(); len(args) > 0 {
		runningCommand = args[0]
	}
	return nil
}

// FormatError renders err the way the CLI reports failures:
//
//	triton instance: error (ResourceNotFound): no instance named "db0"
//
// With verbose, each cause in the chain is printed on its own line.
func FormatError(err error, verbose bool) string {
	prefix := "triton"
	if runningCommand != "" {
		prefix += " " + runningCommand
	}

	label := "error"
	if code := errs.CodeOf(err); code != "" {
		label = fmt.Sprintf("error (%s)", code)
	} else if kind := errs.KindOf(err); kind != "" && kind != errs.KindServer {
		label = fmt.Sprintf("error (%s)", kind)
	}

	out := fmt.Sprintf("%s: %s: %s", prefix, label, err.Error())
	if verbose {
		var chain []string
		for e := err; e != nil; e = unwrapCause(e) {
			chain = append(chain, e.Error())
		}
		if len(chain) > 1 {
			out += "\ncaused by:\n    " + strings.Join(chain[1:], "\n    ")
		}
	}
	return out
}

func usageErrorf(format string, args ...interface{}) error {
	return errs.New(errs.KindUsage, format, args...)
}

// splitFieldArg parses a FIELD=VALUE positional.
func splitFieldArg(arg string) (string, string, error) {
	key, val, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", "", usageErrorf("invalid argument %q: expected FIELD=VALUE", arg)
	}
	return key, val, nil
}

func unwrapCause(err error) error {
	type causer interface {
		Cause() error
	}
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return errors.Unwrap(err)
}
