package cloudapi

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/tritoncli/triton/errs"
)

// Kind names a resolvable resource kind. The value doubles as the cache
// namespace for the kind's listings.
type Kind string

const (
	KindInstance     Kind = "instances"
	KindImage        Kind = "images"
	KindPackage      Kind = "packages"
	KindNetwork      Kind = "networks"
	KindFirewallRule Kind = "fwrules"
	KindVolume       Kind = "volumes"
	KindUser         Kind = "users"
	KindRole         Kind = "roles"
	KindPolicy       Kind = "policies"
	KindVPC          Kind = "vpcs"
)

// kindSpec describes how a kind is listed and fetched, and its resolution
// quirks.
type kindSpec struct {
	listPath func(c *Client) string
	getPath  func(c *Client, id string) string

	// nameFilter is set for kinds whose list endpoint supports ?name=.
	nameFilter bool

	// cacheable kinds serve full listings through the on-disk cache.
	cacheable bool

	// active reports whether an item is in its kind's active sub-state;
	// inactive items are skipped unless the caller opts in. nil means every
	// item counts.
	active func(e *entity) bool

	// latestPublished resolves multiple equal-name matches to the most
	// recently published item instead of failing AmbiguousName (images).
	latestPublished bool
}

var kindSpecs = map[Kind]kindSpec{
	KindInstance: {
		listPath: func(c *Client) string { return c.path("/machines") },
		getPath:  func(c *Client, id string) string { return c.path("/machines/%s", id) },
		// CloudAPI machine listing matches ?name= as an exact filter
		nameFilter: true,
	},
	KindImage: {
		listPath:        func(c *Client) string { return c.path("/images") },
		getPath:         func(c *Client, id string) string { return c.path("/images/%s", id) },
		nameFilter:      true,
		cacheable:       true,
		active:          func(e *entity) bool { return e.State == "" || e.State == "active" },
		latestPublished: true,
	},
	KindPackage: {
		listPath:   func(c *Client) string { return c.path("/packages") },
		getPath:    func(c *Client, id string) string { return c.path("/packages/%s", id) },
		nameFilter: true,
		active:     func(e *entity) bool { return e.Active == nil || *e.Active },
	},
	KindNetwork: {
		listPath: func(c *Client) string { return c.path("/networks") },
		getPath:  func(c *Client, id string) string { return c.path("/networks/%s", id) },
	},
	KindFirewallRule: {
		listPath: func(c *Client) string { return c.path("/fwrules") },
		getPath:  func(c *Client, id string) string { return c.path("/fwrules/%s", id) },
	},
	KindVolume: {
		listPath:   func(c *Client) string { return c.path("/volumes") },
		getPath:    func(c *Client, id string) string { return c.path("/volumes/%s", id) },
		nameFilter: true,
	},
	KindUser: {
		listPath: func(c *Client) string { return c.path("/users") },
		getPath:  func(c *Client, id string) string { return c.path("/users/%s", id) },
	},
	KindRole: {
		listPath: func(c *Client) string { return c.path("/roles") },
		getPath:  func(c *Client, id string) string { return c.path("/roles/%s", id) },
	},
	KindPolicy: {
		listPath: func(c *Client) string { return c.path("/policies") },
		getPath:  func(c *Client, id string) string { return c.path("/policies/%s", id) },
	},
	KindVPC: {
		listPath: func(c *Client) string { return c.path("/vpcs") },
		getPath:  func(c *Client, id string) string { return c.path("/vpcs/%s", id) },
	},
}

// entity is the minimal view of a resource the resolver needs; raw keeps the
// full server payload for the caller.
type entity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Login       string `json:"login"`
	State       string `json:"state"`
	Active      *bool  `json:"active"`
	PublishedAt string `json:"published_at"`

	raw json.RawMessage
}

func (e *entity) displayName() string {
	if e.Name != "" {
		return e.Name
	}
	// RBAC users are named by login
	return e.Login
}

func entityFromRaw(raw json.RawMessage) (*entity, error) {
	e := &entity{}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "parsing resource")
	}
	e.raw = raw
	return e, nil
}

// ResolveOptions adjusts resolution behavior.
type ResolveOptions struct {
	// IncludeInactive also matches items outside their kind's active
	// sub-state (inactive images, inactive packages).
	IncludeInactive bool
}

// minShortIDLen is the shortest id prefix accepted as a short id.
const minShortIDLen = 4

var hexRe = regexp.MustCompile(`^[0-9a-f]+$`)

// isUUID reports whether s is a canonical 36-char UUID.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// normalizeShortID lowercases s and strips dashes; container-style long hex
// ids (e.g. 64-char docker ids) are truncated to UUID length. It returns
// "" when s cannot be an id prefix.
func normalizeShortID(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "-", "")
	if len(s) < minShortIDLen || !hexRe.MatchString(s) {
		return ""
	}
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}

// Resolve turns a user-supplied identifier (full UUID, short id prefix, or
// exact name) into the matching resource's raw payload.
//
// Resolution order: a canonical UUID is fetched directly; then a
// server-side name filter is tried for kinds that support one; finally the
// full listing is scanned for exact-name and id-prefix matches. One name
// match wins; multiple name matches fail AmbiguousName except for images,
// which pick the latest published_at; with no name match a unique short-id
// match wins.
func (c *Client) Resolve(ctx context.Context, kind Kind, input string, opts ResolveOptions) (json.RawMessage, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, errs.New(errs.KindUsage, "unresolvable resource kind %q", kind)
	}
	if input == "" {
		return nil, errs.New(errs.KindUsage, "empty %s identifier", kindNoun(kind))
	}

	if isUUID(input) {
		var raw json.RawMessage
		err := c.get(ctx, spec.getPath(c, strings.ToLower(input)), nil, &raw)
		if err == nil {
			return raw, nil
		}
		if errs.KindOf(err) != errs.KindNotFound {
			return nil, err
		}
		// fall through: a name could happen to look like a UUID
	}

	include := func(e *entity) bool {
		return opts.IncludeInactive || spec.active == nil || spec.active(e)
	}

	if spec.nameFilter {
		items, err := c.listAll(ctx, spec.listPath(c), url.Values{"name": []string{input}})
		if err != nil {
			return nil, err
		}
		var match *entity
		matches := 0
		for _, raw := range items {
			e, err := entityFromRaw(raw)
			if err != nil {
				return nil, err
			}
			if e.displayName() == input && include(e) {
				match = e
				matches++
			}
		}
		if matches == 1 {
			return match.raw, nil
		}
	}

	var items []json.RawMessage
	var err error
	if spec.cacheable {
		items, err = c.cachedList(ctx, string(kind), spec.listPath(c))
	} else {
		items, err = c.listAll(ctx, spec.listPath(c), nil)
	}
	if err != nil {
		return nil, err
	}

	shortID := normalizeShortID(input)
	var nameMatches, shortIDMatches []*entity
	for _, raw := range items {
		e, err := entityFromRaw(raw)
		if err != nil {
			return nil, err
		}
		if !include(e) {
			continue
		}
		if e.displayName() == input {
			nameMatches = append(nameMatches, e)
		}
		if shortID != "" && strings.HasPrefix(strings.ReplaceAll(strings.ToLower(e.ID), "-", ""), shortID) {
			shortIDMatches = append(shortIDMatches, e)
		}
	}

	switch {
	case len(nameMatches) == 1:
		return nameMatches[0].raw, nil
	case len(nameMatches) > 1:
		if spec.latestPublished {
			return latestPublished(nameMatches).raw, nil
		}
		return nil, errs.New(errs.KindAmbiguousName,
			"%s name %q matches %d %s; use the id or short id instead",
			kindNoun(kind), input, len(nameMatches), string(kind))
	case len(shortIDMatches) == 1:
		return shortIDMatches[0].raw, nil
	case len(shortIDMatches) > 1:
		return nil, errs.New(errs.KindAmbiguousShortID,
			"short id %q matches %d %s; use a longer prefix or the full id",
			input, len(shortIDMatches), string(kind))
	default:
		return nil, errs.New(errs.KindNotFound, "no %s matches %q", kindNoun(kind), input)
	}
}

// ResolveID resolves input to the matching resource's canonical id.
func (c *Client) ResolveID(ctx context.Context, kind Kind, input string, opts ResolveOptions) (string, error) {
	if isUUID(input) {
		// already canonical; no round-trip needed
		return strings.ToLower(input), nil
	}
	raw, err := c.Resolve(ctx, kind, input, opts)
	if err != nil {
		return "", err
	}
	e, err := entityFromRaw(raw)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

func latestPublished(matches []*entity) *entity {
	best := matches[0]
	for _, e := range matches[1:] {
		// published_at is RFC 3339, so string order is chronological
		if e.PublishedAt > best.PublishedAt {
			best = e
		}
	}
	return best
}

// kindNoun renders a Kind as its singular noun for messages.
func kindNoun(kind Kind) string {
	switch kind {
	case KindPolicy:
		return "policy"
	default:
		return strings.TrimSuffix(string(kind), "s")
	}
}
