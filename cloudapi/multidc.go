package cloudapi

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/tritoncli/triton/errs"
)

// defaultDCConcurrency bounds parallel per-datacenter list calls.
const defaultDCConcurrency = 8

// DC is one datacenter endpoint from a profile. Profile entries are either
// a bare URL (tagged by its host) or "name=url".
type DC struct {
	Name string
	URL  string
}

// ParseDCs parses a profile's dcs entries.
func ParseDCs(entries []string) ([]DC, error) {
	var dcs []DC
	for _, entry := range entries {
		name, rawurl, ok := strings.Cut(entry, "=")
		if !ok {
			rawurl = entry
			name = hostOf(entry)
		}
		if name == "" || rawurl == "" {
			return nil, errs.New(errs.KindConfig, "invalid dcs entry %q (want URL or name=URL)", entry)
		}
		dcs = append(dcs, DC{Name: name, URL: rawurl})
	}
	return dcs, nil
}

func hostOf(rawurl string) string {
	rest := rawurl
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/:"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// DCItem is a listed resource annotated with the datacenter it came from.
type DCItem struct {
	DC       string
	Resource json.RawMessage
}

// MultiDCOptions configures a fan-out list.
type MultiDCOptions struct {
	// Concurrency bounds parallel datacenter calls (default 8).
	Concurrency int

	// OnDCError, when set, is invoked as each datacenter failure happens,
	// for live progress reporting. It may be called from multiple
	// goroutines.
	OnDCError func(dc string, err error)
}

// ListAcrossDCs runs list against a per-datacenter client for every dc in
// parallel and merges the results, tagging each item with its datacenter.
// Partial data is always returned: per-datacenter failures are collected
// and returned alongside the successful items (a single failure returns as
// itself, two or more as a Multi error). Result order across datacenters is
// undefined.
func (c *Client) ListAcrossDCs(ctx context.Context, dcs []DC, opts MultiDCOptions,
	list func(ctx context.Context, dc *Client) ([]json.RawMessage, error)) ([]DCItem, error) {

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultDCConcurrency
	}

	var (
		mu    sync.Mutex
		items []DCItem
		multi errs.Multi
	)
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, dc := range dcs {
		wg.Add(1)
		go func(dc DC) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			dcClient, err := New(ClientOptions{
				URL:          dc.URL,
				Account:      c.account,
				ActAsAccount: c.actAs,
				Signer:       c.signer,
				Insecure:     c.insecure,
				APIVersion:   c.apiVersion,
			})
			if err == nil {
				defer dcClient.Close()
				var listed []json.RawMessage
				listed, err = list(ctx, dcClient)
				if err == nil {
					mu.Lock()
					for _, raw := range listed {
						items = append(items, DCItem{DC: dc.Name, Resource: raw})
					}
					mu.Unlock()
					return
				}
			}

			err = errs.Wrap(errs.KindOf(err), err, "dc %s", dc.Name)
			grip.Debug(message.WrapError(err, message.Fields{
				"message": "datacenter list failed",
				"dc":      dc.Name,
			}))
			if opts.OnDCError != nil {
				opts.OnDCError(dc.Name, err)
			}
			mu.Lock()
			multi.Add(err)
			mu.Unlock()
		}(dc)
	}
	wg.Wait()

	return items, multi.Resolve()
}
