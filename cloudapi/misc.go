package cloudapi

import (
	"context"
	"net/http"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/errs"
	"github.com/tritoncli/triton/util"
)

const (
	pingAttempts = 3
	pingMinDelay = 250 * time.Millisecond
	pingMaxDelay = 2 * time.Second
)

// ListDatacenters returns the datacenters advertised by the endpoint, as a
// name to URL map.
func (c *Client) ListDatacenters(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if err := c.get(ctx, c.path("/datacenters"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListServices returns the services advertised by the datacenter, as a name
// to URL map.
func (c *Client) ListServices(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if err := c.get(ctx, c.path("/services"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PingResult is the unauthenticated ping response plus the API version the
// endpoint reported.
type PingResult struct {
	Ping       string `json:"ping"`
	CloudAPI   struct {
		Versions []string `json:"versions,omitempty"`
	} `json:"cloudapi"`
	APIVersion string `json:"-"`
}

// Ping hits the endpoint's unauthenticated ping route. It retries transient
// failures a few times before giving up.
func (c *Client) Ping(ctx context.Context) (*PingResult, error) {
	httpClient := util.GetRetryableHTTPClient(c.insecure)
	defer util.PutHTTPClient(httpClient)

	out := &PingResult{}
	err := utility.Retry(ctx, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/--ping", nil)
		if err != nil {
			return false, errors.Wrap(err, "building ping request")
		}
		req.Header.Set(triton.AcceptHeader, triton.ContentTypeValue)
		req.Header.Set(triton.UserAgentHeader, c.userAgent)
		resp, err := httpClient.Do(req)
		if err != nil {
			return true, errs.Wrap(errs.KindTransport, err, "ping %s", c.baseURL)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return true, errs.New(errs.KindServer, "ping %s: status %d", c.baseURL, resp.StatusCode)
		}
		if err := util.ReadJSONInto(resp.Body, out); err != nil {
			return false, err
		}
		out.APIVersion = resp.Header.Get(triton.APIVersionHeader)
		return false, nil
	}, utility.RetryOptions{
		MaxAttempts: pingAttempts,
		MinDelay:    pingMinDelay,
		MaxDelay:    pingMaxDelay,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
