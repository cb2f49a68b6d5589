package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/lukemcguire/plowcrawl/result"
	"github.com/lukemcguire/plowcrawl/urlutil"
)

// Extractor fetches a page and returns the resources it references that
// pass the domain policy.
type Extractor struct {
	fetcher Fetcher
	policy  urlutil.DomainPolicy
	logger  zerolog.Logger
}

// NewExtractor creates an Extractor that retrieves pages through f.
func NewExtractor(f Fetcher, policy urlutil.DomainPolicy) *Extractor {
	return &Extractor{fetcher: f, policy: policy, logger: zerolog.Nop()}
}

// Extract retrieves pageURL and returns its links followed by its scripts.
// A page outside the domain policy yields no resources and no error.
// Retrieval problems are returned as *FetchError.
func (e *Extractor) Extract(ctx context.Context, pageURL string) ([]result.Resource, error) {
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	e.logger.Debug().
		Str("url", pageURL).
		Str("final_url", page.FinalURL).
		Int("status", page.StatusCode).
		Int("bytes", len(page.Body)).
		Msg("fetched page")

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	expected, ok := e.policy.ExpectedDomain(parsed.Host)
	if !ok {
		return nil, nil
	}

	resources, err := ExtractResources(bytes.NewReader(page.Body), page.ContentType, parsed.Scheme, parsed.Host, expected)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	return resources, nil
}

// ExtractResources parses an HTML document and returns the href of every
// anchor followed by the src of every script, in document order. References
// are normalized against pageScheme and pageHost and kept only when their
// host matches expected (empty accepts all). Fragment-only and empty hrefs
// are skipped.
func ExtractResources(body io.Reader, contentType, pageScheme, pageHost, expected string) ([]result.Resource, error) {
	decoded, err := charset.NewReader(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	root, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	var resources []result.Resource
	keep := func(ref string, kind result.Kind) {
		ref = urlutil.Normalize(ref, pageScheme, pageHost)
		if urlutil.HasAcceptableDomain(ref, expected) {
			resources = append(resources, result.Resource{URL: ref, Kind: kind})
		}
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		keep(href, result.KindLink)
	})

	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		keep(src, result.KindScript)
	})

	return resources, nil
}
