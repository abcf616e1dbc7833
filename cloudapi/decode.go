package cloudapi

import (
	"encoding/json"

	"github.com/tritoncli/triton/errs"
)

// decodeAll unmarshals a list of raw resources into typed values. what
// names the resource for error messages.
func decodeAll[T any](items []json.RawMessage, what string) ([]*T, error) {
	out := make([]*T, 0, len(items))
	for _, raw := range items {
		v := new(T)
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, errs.Wrap(errs.KindTransport, err, "parsing %s", what)
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeOne unmarshals a single raw resource.
func decodeOne[T any](raw json.RawMessage, what string) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "parsing %s", what)
	}
	return v, nil
}
