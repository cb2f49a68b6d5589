package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/lukemcguire/plowcrawl/result"
	"github.com/lukemcguire/plowcrawl/urlutil"
)

const (
	// AppName is used for the XDG config directory.
	AppName = "plowcrawl"

	DefaultDelay        = "1"
	DefaultMaxDepth     = "1"
	DefaultUserAgent    = "plowcrawl/1.0 (+https://github.com/lukemcguire/plowcrawl)"
	DefaultMaxBodyBytes = 10 * 1024 * 1024
)

// Options holds crawl settings exactly as they arrive from flags or the
// config file. Numeric values stay strings until Build validates them.
type Options struct {
	URL            string `yaml:"url"`
	Delay          string `yaml:"delay"`
	Proxy          string `yaml:"proxy"`
	CertFile       string `yaml:"certfile"`
	SpecificDomain string `yaml:"specificdomain"`
	SameDomain     bool   `yaml:"samedomain"`
	MaxDepth       string `yaml:"maxdepth"`
	Format         string `yaml:"format"`
	UserAgent      string `yaml:"useragent"`
	Verbose        bool   `yaml:"verbose"`
	LowMemory      bool   `yaml:"lowmemory"`
	Progress       bool   `yaml:"progress"`
	Summary        bool   `yaml:"summary"`
}

// Defaults returns the options used when nothing else is configured.
func Defaults() Options {
	return Options{
		Delay:     DefaultDelay,
		MaxDepth:  DefaultMaxDepth,
		Format:    string(result.FormatText),
		UserAgent: DefaultUserAgent,
	}
}

// Merge overlays every non-empty string and every true flag of over onto o.
func (o Options) Merge(over Options) Options {
	mergeString(&o.URL, over.URL)
	mergeString(&o.Delay, over.Delay)
	mergeString(&o.Proxy, over.Proxy)
	mergeString(&o.CertFile, over.CertFile)
	mergeString(&o.SpecificDomain, over.SpecificDomain)
	mergeString(&o.MaxDepth, over.MaxDepth)
	mergeString(&o.Format, over.Format)
	mergeString(&o.UserAgent, over.UserAgent)
	o.SameDomain = o.SameDomain || over.SameDomain
	o.Verbose = o.Verbose || over.Verbose
	o.LowMemory = o.LowMemory || over.LowMemory
	o.Progress = o.Progress || over.Progress
	o.Summary = o.Summary || over.Summary
	return o
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Crawl is the validated configuration of a single run. It is built once
// before traversal and never modified afterwards.
type Crawl struct {
	Seeds          []string
	Delay          time.Duration
	Proxy          string
	CertFile       string
	SpecificDomain string
	SameDomainOnly bool
	MaxDepth       int

	Format       result.Format
	UserAgent    string
	MaxBodyBytes int64
	Verbose      bool
	LowMemory    bool
	Progress     bool
	Summary      bool
}

// Policy returns the domain policy the crawl applies to pages and resources.
func (c Crawl) Policy() urlutil.DomainPolicy {
	return urlutil.DomainPolicy{
		SpecificDomain: c.SpecificDomain,
		SameDomainOnly: c.SameDomainOnly,
	}
}

// WithSeeds returns a copy of c that crawls seeds.
func (c Crawl) WithSeeds(seeds []string) Crawl {
	c.Seeds = append([]string(nil), seeds...)
	return c
}

// Build validates opts and converts them into a Crawl for the given seeds.
// All validation failures are reported together.
func Build(opts Options, seeds []string) (Crawl, error) {
	var errs []error

	delay, err := positiveInt(opts.Delay)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidDelay, err))
	}

	maxDepth, err := positiveInt(opts.MaxDepth)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidMaxDepth, err))
	}

	format, err := result.ParseFormat(opts.Format)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidFormat, err))
	}

	if len(errs) > 0 {
		return Crawl{}, errors.Join(errs...)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return Crawl{
		Seeds:          append([]string(nil), seeds...),
		Delay:          time.Duration(delay) * time.Second,
		Proxy:          strings.TrimSpace(opts.Proxy),
		CertFile:       opts.CertFile,
		SpecificDomain: opts.SpecificDomain,
		SameDomainOnly: opts.SameDomain,
		MaxDepth:       maxDepth,
		Format:         format,
		UserAgent:      userAgent,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		Verbose:        opts.Verbose,
		LowMemory:      opts.LowMemory,
		Progress:       opts.Progress,
		Summary:        opts.Summary,
	}, nil
}

// positiveInt parses raw as an integer greater than zero. Unset values are
// filled in by Defaults, so an empty raw value is rejected.
func positiveInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

// ReadSeeds reads newline-delimited seed URLs. Trailing whitespace is
// trimmed and blank lines are skipped.
func ReadSeeds(r io.Reader) ([]string, error) {
	var seeds []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if line == "" {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return seeds, fmt.Errorf("read seeds: %w", err)
	}

	return seeds, nil
}

// MergeSeeds puts the --url seed, when given, ahead of the seeds read from
// standard input.
func MergeSeeds(url string, stdinSeeds []string) []string {
	seeds := make([]string, 0, len(stdinSeeds)+1)
	if url != "" {
		seeds = append(seeds, url)
	}
	return append(seeds, stdinSeeds...)
}
