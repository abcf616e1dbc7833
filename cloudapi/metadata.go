package cloudapi

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tritoncli/triton/errs"
)

// ScriptMetadataKey is the well-known metadata key holding the boot-time
// user script.
const ScriptMetadataKey = "user-script"

// warnValueMaxLen truncates overwritten values in rebind warnings so a huge
// user-script doesn't flood stderr.
const warnValueMaxLen = 50

// KVWarning records a metadata or tag key being re-bound: a later argument
// overwrote an earlier value.
type KVWarning struct {
	Key      string
	OldValue interface{}
}

func (w KVWarning) String() string {
	val := fmt.Sprintf("%v", w.OldValue)
	if len(val) > warnValueMaxLen {
		val = val[:warnValueMaxLen] + "..."
	}
	return fmt.Sprintf("overwriting earlier value of %q (was %q)", w.Key, val)
}

// ParseKeyValues parses metadata/tag arguments in declaration order. Each
// argument is one of:
//
//   - key=value, with value typed: the literals "true"/"false" parse as
//     booleans, decimal numbers as numbers, anything else as a string;
//   - a JSON object literal, detected by a leading "{";
//   - @file, where the file contains either a JSON object or
//     newline-separated key=value pairs.
//
// Later bindings of a key overwrite earlier ones; each overwrite is
// reported in the returned warnings.
func ParseKeyValues(args []string) (map[string]interface{}, []KVWarning, error) {
	out := map[string]interface{}{}
	var warnings []KVWarning

	set := func(key string, val interface{}) {
		if old, dup := out[key]; dup {
			warnings = append(warnings, KVWarning{Key: key, OldValue: old})
		}
		out[key] = val
	}

	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "{"):
			obj := map[string]interface{}{}
			if err := json.Unmarshal([]byte(arg), &obj); err != nil {
				return nil, nil, errs.Wrap(errs.KindUsage, err, "invalid JSON object argument %q", arg)
			}
			for k, v := range obj {
				set(k, v)
			}

		case strings.HasPrefix(arg, "@"):
			path := arg[1:]
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, errs.Wrap(errs.KindUsage, err, "reading %q", path)
			}
			obj, err := parseKVFile(path, data)
			if err != nil {
				return nil, nil, err
			}
			for k, v := range obj {
				set(k, v)
			}

		default:
			key, rawval, ok := strings.Cut(arg, "=")
			if !ok || key == "" {
				return nil, nil, errs.New(errs.KindUsage,
					"invalid argument %q: expected key=value, a JSON object, or @file", arg)
			}
			set(key, typedValue(rawval))
		}
	}
	return out, warnings, nil
}

// parseKVFile interprets file contents as a JSON object if they start with
// "{", else as newline-separated key=value pairs.
func parseKVFile(path string, data []byte) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		obj := map[string]interface{}{}
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil, errs.Wrap(errs.KindUsage, err, "file %q is not a valid JSON object", path)
		}
		return obj, nil
	}

	out := map[string]interface{}{}
	for i, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, rawval, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			return nil, errs.New(errs.KindUsage, "file %q line %d: expected key=value, got %q", path, i+1, line)
		}
		out[strings.TrimSpace(key)] = typedValue(strings.TrimSpace(rawval))
	}
	return out, nil
}

// typedValue applies the key=value typing rules.
func typedValue(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		// integers stay integral in JSON output
		if n == float64(int64(n)) && !strings.ContainsAny(raw, ".eE") {
			i, _ := strconv.ParseInt(raw, 10, 64)
			return i
		}
		return n
	}
	return raw
}

// ParseMetadataFiles applies --metadata-file KEY=FILE arguments: the raw
// file contents become the value of KEY.
func ParseMetadataFiles(md map[string]interface{}, args []string) ([]KVWarning, error) {
	var warnings []KVWarning
	for _, arg := range args {
		key, path, ok := strings.Cut(arg, "=")
		if !ok || key == "" || path == "" {
			return nil, errs.New(errs.KindUsage, "invalid metadata-file argument %q: expected KEY=FILE", arg)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.KindUsage, err, "reading metadata file %q", path)
		}
		if old, dup := md[key]; dup {
			warnings = append(warnings, KVWarning{Key: key, OldValue: old})
		}
		md[key] = string(data)
	}
	return warnings, nil
}

// ApplyScript loads the --script shortcut, binding the file contents to the
// "user-script" metadata key.
func ApplyScript(md map[string]interface{}, path string) ([]KVWarning, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindUsage, err, "reading script file %q", path)
	}
	var warnings []KVWarning
	if old, dup := md[ScriptMetadataKey]; dup {
		warnings = append(warnings, KVWarning{Key: ScriptMetadataKey, OldValue: old})
	}
	md[ScriptMetadataKey] = string(data)
	return warnings, nil
}

// WriteWarnings renders rebind warnings to w, one per line.
func WriteWarnings(w io.Writer, warnings []KVWarning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
