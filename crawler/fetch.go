package crawler

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lukemcguire/plowcrawl/urlutil"
)

// ErrUnsupportedScheme is returned for URLs that are not http or https.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// ErrNoCertificates is returned when a cert file or directory yields no
// PEM certificates.
var ErrNoCertificates = errors.New("no PEM certificates found")

// Page is a retrieved document.
type Page struct {
	URL         string // The URL that was requested
	FinalURL    string // The URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// FetchError records a page that could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	Proxy        string // host:port or URL; empty for a direct connection
	CertFile     string // PEM bundle or directory of PEM files; empty for system roots
	UserAgent    string
	MaxBodyBytes int64 // 0 for no limit
}

// HTTPFetcher fetches pages over HTTP(S) with an optional proxy and CA
// bundle. Requests have no timeout of their own; cancel ctx to abort.
type HTTPFetcher struct {
	client   *http.Client
	opts     FetcherOptions
	setupErr error
}

// NewHTTPFetcher builds a fetcher from opts. Problems with the proxy or
// cert file do not fail construction; they are returned by every Fetch so
// that each page reports them.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	var setupErrs []error

	if opts.Proxy != "" {
		proxyURL, err := parseProxy(opts.Proxy)
		if err != nil {
			setupErrs = append(setupErrs, err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	if opts.CertFile != "" {
		pool, err := loadCertPool(opts.CertFile)
		if err != nil {
			setupErrs = append(setupErrs, err)
		} else {
			transport.TLSClientConfig = &tls.Config{
				RootCAs:    pool,
				MinVersion: tls.VersionTLS12,
			}
		}
	}

	return &HTTPFetcher{
		client:   &http.Client{Transport: transport},
		opts:     opts,
		setupErr: errors.Join(setupErrs...),
	}
}

// Fetch issues a GET for rawURL and reads the body. Non-2xx responses are
// returned as pages, not errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (page *Page, err error) {
	if f.setupErr != nil {
		return nil, f.setupErr
	}

	if !urlutil.IsHTTPScheme(rawURL) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close response body: %w", closeErr)
		}
	}()

	var body io.Reader = resp.Body
	if f.opts.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.opts.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// parseProxy accepts either a full proxy URL or a bare host:port, which is
// treated as an HTTP proxy.
func parseProxy(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	proxyURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("parse proxy %q: missing host", raw)
	}
	return proxyURL, nil
}

// loadCertPool builds a root pool from a PEM file, or from every regular
// file in a directory.
func loadCertPool(path string) (*x509.CertPool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read cert file: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read cert directory: %w", err)
		}
		files = files[:0]
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}

	pool := x509.NewCertPool()
	added := false
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read cert file: %w", err)
		}
		if pool.AppendCertsFromPEM(data) {
			added = true
		}
	}
	if !added {
		return nil, fmt.Errorf("%w in %s", ErrNoCertificates, path)
	}
	return pool, nil
}
