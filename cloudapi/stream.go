package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// streamPageSize is the per-page limit used when paginating list endpoints.
const streamPageSize = 1000

// stream lazily pages through a CloudAPI list endpoint, sending one raw
// resource at a time. The returned finish func reports the terminal error
// (nil on clean completion) and must be called after the channel closes.
// Cancelling ctx stops the stream promptly.
func (c *Client) stream(ctx context.Context, path string, query url.Values) (<-chan json.RawMessage, func() error) {
	out := make(chan json.RawMessage)
	var streamErr error

	go func() {
		defer close(out)

		offset := 0
		for {
			q := url.Values{}
			for k, vals := range query {
				q[k] = vals
			}
			q.Set("limit", strconv.Itoa(streamPageSize))
			if offset > 0 {
				q.Set("offset", strconv.Itoa(offset))
			}

			resp, err := c.request(ctx, http.MethodGet, path, &requestOptions{query: q})
			if err != nil {
				streamErr = err
				return
			}

			var page []json.RawMessage
			if err := resp.decode(&page); err != nil {
				streamErr = err
				return
			}

			for _, item := range page {
				select {
				case out <- item:
				case <-ctx.Done():
					streamErr = ctxError(ctx, http.MethodGet, path)
					return
				}
			}

			offset += len(page)
			if len(page) < streamPageSize || !moreAvailable(resp.header, offset) {
				return
			}
		}
	}()

	return out, func() error { return streamErr }
}

// moreAvailable consults the x-resource-count header when the server sends
// one; a full page with no header is assumed to have more.
func moreAvailable(header http.Header, seen int) bool {
	v := header.Get("x-resource-count")
	if v == "" {
		return true
	}
	total, err := strconv.Atoi(v)
	if err != nil {
		return true
	}
	return seen < total
}

// listAll drains a stream into a slice of raw resources.
func (c *Client) listAll(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	items, finish := c.stream(ctx, path, query)
	var all []json.RawMessage
	for item := range items {
		all = append(all, item)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return all, nil
}
