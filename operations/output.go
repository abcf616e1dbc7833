package operations

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cheynewallace/tabby"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrap(err, "rendering JSON")
	}
	fmt.Println(string(out))
	return nil
}

// printJSONLine renders one item per line, for streamed listings.
func printJSONLine(v interface{}) error {
	out, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "rendering JSON")
	}
	fmt.Println(string(out))
	return nil
}

// row is one table line, keyed by lowercase column name.
type row map[string]string

// renderList prints rows as a table, honoring the shared list flags: -o
// column selection, -s sorting, -H header suppression, and -l long columns.
func renderList(c *cli.Context, defaults, long []string, rows []row) error {
	columns := defaults
	if c.Bool(longFlagName) && len(long) > 0 {
		columns = long
	}
	if v := c.String(outputFieldsName); v != "" {
		columns = splitFields(v)
	}

	if v := c.String(sortFieldsName); v != "" {
		sortRows(rows, splitFields(v))
	}

	t := tabby.New()
	if !c.Bool(noHeaderFlagName) {
		header := make([]interface{}, len(columns))
		for i, col := range columns {
			header[i] = strings.ToUpper(col)
		}
		t.AddHeader(header...)
	}
	for _, r := range rows {
		line := make([]interface{}, len(columns))
		for i, col := range columns {
			line[i] = r[col]
		}
		t.AddLine(line...)
	}
	t.Print()
	return nil
}

func splitFields(v string) []string {
	parts := strings.Split(v, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, strings.ToLower(p))
		}
	}
	return fields
}

func sortRows(rows []row, fields []string) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, f := range fields {
			a, b := rows[i][f], rows[j][f]
			if a != b {
				return a < b
			}
		}
		return false
	})
}

// shortID is the first UUID octet group, enough to be unique in practice and
// resolvable back through the short-id lookup.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// shortAge renders the elapsed time since t compactly for table columns.
func shortAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 14*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 90*24*time.Hour:
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	default:
		return fmt.Sprintf("%dy", int(d.Hours()/(24*365)))
	}
}

// mibSize renders a MiB count for humans.
func mibSize(mib int64) string {
	if mib <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(mib) * 1024 * 1024)
}

// promptLine prompts on stderr and reads one line from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm prompts on stderr and reads a y/n answer from stdin.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	var answer string
	fmt.Scanln(&answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
