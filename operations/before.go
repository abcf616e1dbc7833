package operations

import (
	"strings"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

var setPlainLogger = func(c *cli.Context) error {
	grip.Warning(grip.SetSender(send.MakePlainLogger()))
	return nil
}

func mergeBeforeFuncs(ops ...cli.BeforeFunc) cli.BeforeFunc {
	return func(c *cli.Context) error {
		catcher := grip.NewBasicCatcher()

		for _, op := range ops {
			catcher.Add(op(c))
		}

		return catcher.Resolve()
	}
}

// requireNArgs fails the command before its action runs when the positional
// argument count is wrong.
func requireNArgs(n int, names []string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		if c.NArg() != n {
			return errs.New(errs.KindUsage, "expected %d argument(s) %s, got %d",
				n, strings.Join(names, " "), c.NArg())
		}
		return nil
	}
}

func requireAtLeastNArgs(n int, usage string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		if c.NArg() < n {
			return errs.New(errs.KindUsage, "expected at least %d argument(s): %s", n, usage)
		}
		return nil
	}
}

func requireOnlyOneBool(names ...string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		count := 0
		for _, name := range names {
			if c.Bool(name) {
				count++
			}
		}
		if count > 1 {
			return errs.Wrap(errs.KindUsage, errors.Errorf("flags %v are mutually exclusive", names), "parsing flags")
		}
		return nil
	}
}
