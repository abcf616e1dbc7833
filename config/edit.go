package config

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/tritoncli/triton/errs"
)

// editableFields are the profile fields exposed by Edit, in render order.
// Name is deliberately excluded: renaming is a delete+create.
var editableFields = []string{"url", "account", "actAsAccount", "keyId", "privKeyPath", "insecure", "dcs"}

func renderProfileText(p *Profile) string {
	var b strings.Builder
	for _, field := range editableFields {
		var val string
		switch field {
		case "url":
			val = p.URL
		case "account":
			val = p.Account
		case "actAsAccount":
			val = p.ActAsAccount
		case "keyId":
			val = p.KeyID
		case "privKeyPath":
			val = p.PrivKeyPath
		case "insecure":
			val = strconv.FormatBool(p.Insecure)
		case "dcs":
			val = strings.Join(p.DCs, ",")
		}
		fmt.Fprintf(&b, "%s=%s\n", field, val)
	}
	return b.String()
}

func parseProfileText(name, text string) (*Profile, error) {
	p := &Profile{Name: name}
	seen := map[string]bool{}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errs.New(errs.KindConfig, "line %d: expected key=value, got %q", i+1, line)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if seen[key] {
			return nil, errs.New(errs.KindConfig, "line %d: duplicate field %q", i+1, key)
		}
		seen[key] = true
		switch key {
		case "url":
			p.URL = val
		case "account":
			p.Account = val
		case "actAsAccount":
			p.ActAsAccount = val
		case "keyId":
			p.KeyID = val
		case "privKeyPath":
			p.PrivKeyPath = val
		case "insecure":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return nil, errs.New(errs.KindConfig, "line %d: insecure must be true or false, got %q", i+1, val)
			}
			p.Insecure = b
		case "dcs":
			if val != "" {
				p.DCs = strings.Split(val, ",")
				for j := range p.DCs {
					p.DCs[j] = strings.TrimSpace(p.DCs[j])
				}
			}
		default:
			return nil, errs.New(errs.KindConfig, "line %d: unknown field %q (known: %s)",
				i+1, key, strings.Join(sortedFields(), ", "))
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func sortedFields() []string {
	out := append([]string{}, editableFields...)
	sort.Strings(out)
	return out
}

// EditResult reports what Edit did.
type EditResult struct {
	// Changed is false when the editor round-trip produced identical text;
	// nothing was written in that case.
	Changed bool
	Profile *Profile
}

// Edit renders the named profile as key=value text, runs the user's editor
// on a temp file, and re-parses the result. retry is consulted on parse
// failure; returning true reopens the editor on the (unparsable) buffer,
// false aborts without writing. A nil retry always aborts.
func (s *Store) Edit(name, editor string, retry func(error) bool) (*EditResult, error) {
	if name == EnvProfileName {
		return nil, errs.New(errs.KindUsage, "the %q profile cannot be edited", EnvProfileName)
	}
	if editor == "" {
		return nil, errs.New(errs.KindUsage, "no editor: set $EDITOR")
	}
	p, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	original := renderProfileText(p)

	tmp, err := os.CreateTemp("", "triton-profile-"+name+"-*.txt")
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "creating temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.WriteString(original); err != nil {
		tmp.Close()
		return nil, errs.Wrap(errs.KindConfig, err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "closing temp file")
	}

	for {
		if err := runEditor(editor, tmpPath); err != nil {
			return nil, err
		}
		edited, err := os.ReadFile(tmpPath)
		if err != nil {
			return nil, errs.Wrap(errs.KindConfig, err, "reading edited file")
		}
		if string(edited) == original {
			return &EditResult{Changed: false, Profile: p}, nil
		}

		updated, perr := parseProfileText(name, string(edited))
		if perr == nil {
			if err := s.Save(updated, SaveOptions{}); err != nil {
				return nil, err
			}
			return &EditResult{Changed: true, Profile: updated}, nil
		}
		if retry == nil || !retry(perr) {
			return nil, perr
		}
	}
}

// runEditor runs the (possibly argument-carrying) editor command attached to
// the terminal.
func runEditor(editor, path string) error {
	words, err := shlex.Split(editor)
	if err != nil || len(words) == 0 {
		return errs.New(errs.KindUsage, "unparsable $EDITOR value %q", editor)
	}
	cmd := exec.Command(words[0], append(words[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errs.Wrap(errs.KindConfig, err, "editor %q failed", editor)
	}
	return nil
}
