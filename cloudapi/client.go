// Package cloudapi implements the CloudAPI client engine: a signed HTTPS
// transport with retries, an on-disk list cache, a human-identifier
// resolver, a state waiter, a multi-datacenter list aggregator, and typed
// per-resource-kind facades on top of them.
package cloudapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/authn"
	"github.com/tritoncli/triton/config"
	"github.com/tritoncli/triton/errs"
	"github.com/tritoncli/triton/util"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultMaxRetries     = 3
	retryBaseDelay        = 250 * time.Millisecond
	retryMaxDelay         = 5 * time.Second
)

// ClientOptions configures a Client. URL, Account, and Signer are required.
type ClientOptions struct {
	URL          string
	Account      string
	ActAsAccount string
	Signer       authn.Signer
	Insecure     bool

	// CacheDir is the profile-scoped cache directory; empty disables the
	// on-disk cache.
	CacheDir string

	APIVersion     string
	RequestTimeout time.Duration
	MaxRetries     int
}

// Client is a CloudAPI client bound to one endpoint and caller identity.
// It is safe for concurrent use.
type Client struct {
	baseURL        string
	account        string
	actAs          string
	signer         authn.Signer
	httpClient     *http.Client
	cache          *Cache
	apiVersion     string
	requestTimeout time.Duration
	maxRetries     int
	userAgent      string
	insecure       bool
}

// New returns a Client for opts. Call Close when done to return the pooled
// HTTP client.
func New(opts ClientOptions) (*Client, error) {
	if opts.URL == "" {
		return nil, errs.New(errs.KindConfig, "cloudapi: no URL configured")
	}
	if opts.Account == "" {
		return nil, errs.New(errs.KindConfig, "cloudapi: no account configured")
	}
	if opts.Signer == nil {
		return nil, errs.New(errs.KindConfig, "cloudapi: no request signer configured")
	}

	c := &Client{
		baseURL:        strings.TrimSuffix(opts.URL, "/"),
		account:        opts.Account,
		actAs:          opts.ActAsAccount,
		signer:         opts.Signer,
		apiVersion:     opts.APIVersion,
		requestTimeout: opts.RequestTimeout,
		maxRetries:     opts.MaxRetries,
		userAgent:      triton.UserAgent(),
		insecure:       opts.Insecure,
	}
	if c.apiVersion == "" {
		c.apiVersion = triton.DefaultAPIVersion
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = defaultRequestTimeout
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if opts.CacheDir != "" {
		c.cache = NewCache(opts.CacheDir)
	}
	if opts.Insecure {
		c.httpClient = util.GetInsecureHTTPClient()
	} else {
		c.httpClient = util.GetHTTPClient()
	}
	return c, nil
}

// NewFromConfig builds a Client from a resolved profile, constructing the
// signer from the profile's key settings: a PEM file when privKeyPath is
// set, otherwise the SSH agent.
func NewFromConfig(conf *config.Config) (*Client, error) {
	p := conf.Profile

	var signer authn.Signer
	var err error
	if p.PrivKeyPath != "" {
		signer, err = authn.NewPrivateKeySigner(p.KeyID, p.PrivKeyPath, nil)
	} else {
		signer, err = authn.NewAgentSigner(p.KeyID, "")
	}
	if err != nil {
		return nil, err
	}

	return New(ClientOptions{
		URL:          p.URL,
		Account:      p.Account,
		ActAsAccount: p.ActAsAccount,
		Signer:       signer,
		Insecure:     p.Insecure,
		CacheDir:     conf.ProfileCacheDir(),
	})
}

// Close returns the client's pooled HTTP client. The Client must not be
// used afterwards.
func (c *Client) Close() {
	if c.httpClient != nil {
		util.PutHTTPClient(c.httpClient)
		c.httpClient = nil
	}
}

// Account returns the login used in request paths: the acting account when
// the profile sets one, else the authenticated account.
func (c *Client) Account() string {
	if c.actAs != "" {
		return c.actAs
	}
	return c.account
}

// URL returns the client's base CloudAPI endpoint.
func (c *Client) URL() string { return c.baseURL }
