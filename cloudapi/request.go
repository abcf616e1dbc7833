package cloudapi

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"

	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/authn"
	"github.com/tritoncli/triton/errs"
)

// requestOptions carries the per-request knobs. All fields are optional.
type requestOptions struct {
	query   url.Values
	headers http.Header
	body    interface{}
	timeout time.Duration
}

// response is a fully-read CloudAPI response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// decode unmarshals the response body into out, which may be nil for
// callers that only care about the status.
func (r *response) decode(out interface{}) error {
	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return errs.Wrap(errs.KindTransport, err, "parsing CloudAPI response body")
	}
	return nil
}

// errorBody is the shape of CloudAPI error responses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (c *Client) path(format string, args ...interface{}) string {
	return "/" + c.Account() + fmt.Sprintf(format, args...)
}

// newSignedRequest builds and signs one request attempt. The Date header and
// signature are regenerated per attempt so retried requests never reuse a
// stale date.
func (c *Client) newSignedRequest(ctx context.Context, method, path string, opts *requestOptions, body []byte) (*http.Request, error) {
	requestURI := path
	if len(opts.query) > 0 {
		requestURI += "?" + opts.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestURI, reader)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "building request")
	}

	date := time.Now().UTC().Format(http.TimeFormat)
	authz, err := authn.AuthorizationHeader(c.signer, c.account, authn.SigningString(method, requestURI, date))
	if err != nil {
		return nil, err
	}

	req.Header.Set(triton.DateHeader, date)
	req.Header.Set(triton.AuthzHeader, authz)
	req.Header.Set(triton.AcceptHeader, triton.ContentTypeValue)
	req.Header.Set(triton.APIVersionHeader, c.apiVersion)
	req.Header.Set(triton.UserAgentHeader, c.userAgent)
	if body != nil {
		req.Header.Set(triton.ContentTypeHeader, triton.ContentTypeValue)
		req.ContentLength = int64(len(body))
	}
	for k, vals := range opts.headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// request executes a signed JSON request against CloudAPI. Idempotent
// methods retry on connect errors and 5xx responses with exponential
// backoff; POST is never retried. Retries count against the per-request
// timeout budget.
func (c *Client) request(ctx context.Context, method, path string, opts *requestOptions) (*response, error) {
	if opts == nil {
		opts = &requestOptions{}
	}
	timeout := opts.timeout
	if timeout <= 0 {
		timeout = c.requestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body []byte
	if opts.body != nil {
		var err error
		if body, err = json.Marshal(opts.body); err != nil {
			return nil, errs.Wrap(errs.KindUsage, err, "marshalling request body")
		}
	}

	attempts := 1
	if idempotent(method) {
		attempts += c.maxRetries
	}
	delay := &backoff.Backoff{Min: retryBaseDelay, Max: retryMaxDelay, Factor: 2, Jitter: true}

	var lastErr error
	timer := time.NewTimer(0)
	defer timer.Stop()
	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctxError(ctx, method, path)
		case <-timer.C:
		}

		req, err := c.newSignedRequest(ctx, method, path, opts, body)
		if err != nil {
			return nil, err
		}

		grip.Debug(message.Fields{
			"message": "cloudapi request",
			"method":  method,
			"path":    path,
			"attempt": attempt,
		})

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctxError(ctx, method, path)
			}
			lastErr = errs.Wrap(errs.KindTransport, err, "%s %s", method, path)
			if certError(err) {
				// cert validation failure will not improve on retry
				return nil, errs.Wrap(errs.KindTransport, err,
					"%s %s: certificate validation failed (use insecure=true to skip validation)", method, path)
			}
			timer.Reset(delay.Duration())
			continue
		}

		out, rerr := readResponse(resp)
		if rerr != nil {
			lastErr = rerr
			timer.Reset(delay.Duration())
			continue
		}

		grip.Debug(message.Fields{
			"message": "cloudapi response",
			"method":  method,
			"path":    path,
			"status":  out.status,
			"attempt": attempt,
		})

		if out.status >= 200 && out.status < 300 {
			return out, nil
		}
		serverErr := c.serverError(method, path, out)
		if out.status >= 500 && attempt < attempts {
			lastErr = serverErr
			timer.Reset(retryAfterOr(out.header, delay))
			continue
		}
		return nil, serverErr
	}
	return nil, errors.Wrapf(lastErr, "after %d attempts", attempts)
}

func ctxError(ctx context.Context, method, path string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errs.New(errs.KindTimeout, "%s %s: request timed out", method, path)
	}
	return errs.New(errs.KindCanceled, "%s %s: request canceled", method, path)
}

func readResponse(resp *http.Response) (*response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "reading response body")
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// serverError maps a non-2xx response to the error taxonomy, carrying the
// CloudAPI error body's code when present.
func (c *Client) serverError(method, path string, r *response) error {
	eb := errorBody{}
	_ = json.Unmarshal(r.body, &eb)
	if eb.Message == "" {
		eb.Message = fmt.Sprintf("%s %s returned %d", method, path, r.status)
	}

	kind := errs.KindServer
	switch r.status {
	case http.StatusUnauthorized:
		kind = errs.KindAuth
	case http.StatusNotFound, http.StatusGone:
		kind = errs.KindNotFound
	}
	return errs.New(kind, "%s", eb.Message).WithServer(eb.Code, r.status)
}

// retryAfterOr returns the server-requested delay for a 5xx with
// Retry-After, else the next backoff duration.
func retryAfterOr(header http.Header, delay *backoff.Backoff) time.Duration {
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return delay.Duration()
}

func certError(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var certInvalid x509.CertificateInvalidError
	return errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) || errors.As(err, &certInvalid)
}

// get issues a GET and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.request(ctx, http.MethodGet, path, &requestOptions{query: query})
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// post issues a POST with a JSON body and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	resp, err := c.request(ctx, http.MethodPost, path, &requestOptions{query: query, body: body})
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.request(ctx, http.MethodPut, path, &requestOptions{body: body})
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// del issues a DELETE.
func (c *Client) del(ctx context.Context, path string) error {
	_, err := c.request(ctx, http.MethodDelete, path, nil)
	return err
}
