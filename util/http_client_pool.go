package util

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/rehttp"
)

const httpClientTimeout = 5 * time.Minute

var httpClientPool *sync.Pool
var insecureClientPool *sync.Pool

func newConfiguredBaseTransport(insecure bool) *http.Transport {
	return &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: insecure},
		Proxy:               http.ProxyFromEnvironment,
		DisableCompression:  false,
		DisableKeepAlives:   true,
		IdleConnTimeout:     20 * time.Second,
		MaxIdleConnsPerHost: 10,
		MaxIdleConns:        50,
		Dial: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 0,
		}).Dial,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

func newBaseConfiguredHTTPClient(insecure bool) *http.Client {
	return &http.Client{
		Timeout:   httpClientTimeout,
		Transport: newConfiguredBaseTransport(insecure),
	}
}

func init() {
	httpClientPool = &sync.Pool{
		New: func() interface{} { return newBaseConfiguredHTTPClient(false) },
	}
	insecureClientPool = &sync.Pool{
		New: func() interface{} { return newBaseConfiguredHTTPClient(true) },
	}
}

// GetHTTPClient returns an HTTP client from the pool that validates TLS
// certificates.
func GetHTTPClient() *http.Client { return httpClientPool.Get().(*http.Client) }

// GetInsecureHTTPClient returns an HTTP client that skips TLS certificate
// validation, for profiles with insecure=true.
func GetInsecureHTTPClient() *http.Client { return insecureClientPool.Get().(*http.Client) }

// PutHTTPClient returns a client to the appropriate pool, unwrapping any
// rehttp retry transport first.
func PutHTTPClient(c *http.Client) {
	c.Timeout = httpClientTimeout

	switch t := c.Transport.(type) {
	case *http.Transport:
		if t.TLSClientConfig.InsecureSkipVerify {
			insecureClientPool.Put(c)
		} else {
			httpClientPool.Put(c)
		}
	case *rehttp.Transport:
		c.Transport = t.RoundTripper
		PutHTTPClient(c)
	default:
		c.Transport = newConfiguredBaseTransport(false)
		httpClientPool.Put(c)
	}
}

// GetRetryableHTTPClient wraps a pooled client in a rehttp transport that
// retries temporary network errors. The CloudAPI-aware retry policy (status
// codes, idempotency) lives in the cloudapi package; this is only the
// low-level connection-error safety net used for unauthenticated endpoints
// such as ping.
func GetRetryableHTTPClient(insecure bool) *http.Client {
	var c *http.Client
	if insecure {
		c = GetInsecureHTTPClient()
	} else {
		c = GetHTTPClient()
	}

	c.Transport = rehttp.NewTransport(c.Transport,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(3),
			rehttp.RetryAny(
				rehttp.RetryTemporaryErr(),
				rehttp.RetryStatuses(
					http.StatusInternalServerError,
					http.StatusBadGateway,
					http.StatusServiceUnavailable,
					http.StatusGatewayTimeout,
				),
			),
		),
		rehttp.ExpJitterDelay(250*time.Millisecond, 5*time.Second),
	)

	return c
}
