package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lukemcguire/plowcrawl/result"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErr  error
		validate func(t *testing.T, c Crawl)
	}{
		{
			name: "defaults",
			opts: Defaults(),
			validate: func(t *testing.T, c Crawl) {
				if c.Delay != time.Second {
					t.Errorf("Delay = %v, want 1s", c.Delay)
				}
				if c.MaxDepth != 1 {
					t.Errorf("MaxDepth = %d, want 1", c.MaxDepth)
				}
				if c.Format != result.FormatText {
					t.Errorf("Format = %q, want text", c.Format)
				}
			},
		},
		{
			name: "explicit values",
			opts: Options{
				Delay:          "3",
				MaxDepth:       " 4 ",
				Proxy:          " 127.0.0.1:8080 ",
				CertFile:       "/etc/ssl/ca.pem",
				SpecificDomain: "a.com",
				SameDomain:     true,
				Format:         "csv",
			},
			validate: func(t *testing.T, c Crawl) {
				if c.Delay != 3*time.Second {
					t.Errorf("Delay = %v, want 3s", c.Delay)
				}
				if c.MaxDepth != 4 {
					t.Errorf("MaxDepth = %d, want 4", c.MaxDepth)
				}
				if c.Proxy != "127.0.0.1:8080" {
					t.Errorf("Proxy = %q", c.Proxy)
				}
				policy := c.Policy()
				if policy.SpecificDomain != "a.com" || !policy.SameDomainOnly {
					t.Errorf("Policy() = %+v", policy)
				}
				if c.Format != result.FormatCSV {
					t.Errorf("Format = %q, want csv", c.Format)
				}
				if c.UserAgent != DefaultUserAgent {
					t.Errorf("UserAgent = %q, want default", c.UserAgent)
				}
			},
		},
		{
			name:    "zero delay",
			opts:    Options{Delay: "0"},
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "negative delay",
			opts:    Options{Delay: "-2"},
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "non-numeric delay",
			opts:    Options{Delay: "soon"},
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "fractional max depth",
			opts:    Options{MaxDepth: "1.5"},
			wantErr: ErrInvalidMaxDepth,
		},
		{
			name:    "zero max depth",
			opts:    Options{MaxDepth: "0"},
			wantErr: ErrInvalidMaxDepth,
		},
		{
			name:    "unknown format",
			opts:    Options{Format: "xml"},
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "empty delay",
			opts:    Options{Delay: "", MaxDepth: "1"},
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "blank max depth",
			opts:    Options{Delay: "1", MaxDepth: "   "},
			wantErr: ErrInvalidMaxDepth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.opts, []string{"http://x.com"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Build() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Seeds, []string{"http://x.com"}) {
				t.Errorf("Seeds = %v", got.Seeds)
			}
			tt.validate(t, got)
		})
	}
}

func TestBuild_ReportsAllErrors(t *testing.T) {
	_, err := Build(Options{Delay: "x", MaxDepth: "-1"}, nil)
	if !errors.Is(err, ErrInvalidDelay) {
		t.Errorf("expected ErrInvalidDelay in %v", err)
	}
	if !errors.Is(err, ErrInvalidMaxDepth) {
		t.Errorf("expected ErrInvalidMaxDepth in %v", err)
	}
}

func TestBuild_CopiesSeeds(t *testing.T) {
	seeds := []string{"http://a.com"}
	c, err := Build(Defaults(), seeds)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	seeds[0] = "http://changed.com"
	if c.Seeds[0] != "http://a.com" {
		t.Errorf("Crawl.Seeds aliases caller slice: %v", c.Seeds)
	}
}

func TestCrawl_WithSeeds(t *testing.T) {
	base, err := Build(Defaults(), []string{"http://a.com"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	seeds := []string{"http://b.com", "http://c.com"}
	c := base.WithSeeds(seeds)
	seeds[0] = "http://changed.com"

	if !reflect.DeepEqual(c.Seeds, []string{"http://b.com", "http://c.com"}) {
		t.Errorf("Seeds = %v", c.Seeds)
	}
	if !reflect.DeepEqual(base.Seeds, []string{"http://a.com"}) {
		t.Errorf("WithSeeds modified the original: %v", base.Seeds)
	}
	if c.Delay != base.Delay || c.MaxDepth != base.MaxDepth {
		t.Errorf("WithSeeds changed other fields: %+v", c)
	}
}

func TestMerge(t *testing.T) {
	base := Defaults()
	merged := base.Merge(Options{
		Delay:      "5",
		SameDomain: true,
		Proxy:      "proxy:3128",
	})

	if merged.Delay != "5" {
		t.Errorf("Delay = %q, want 5", merged.Delay)
	}
	if merged.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %q, want default kept", merged.MaxDepth)
	}
	if !merged.SameDomain {
		t.Error("SameDomain should be true after merge")
	}
	if merged.Proxy != "proxy:3128" {
		t.Errorf("Proxy = %q", merged.Proxy)
	}
	if base.Delay != DefaultDelay {
		t.Error("Merge must not modify the receiver")
	}
}

func TestReadSeeds(t *testing.T) {
	input := "http://a.com\n\n   \nhttp://b.com  \r\n  http://c.com\n"

	got, err := ReadSeeds(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSeeds() error: %v", err)
	}

	want := []string{"http://a.com", "http://b.com", "  http://c.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadSeeds() = %q, want %q", got, want)
	}
}

func TestMergeSeeds(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		stdin []string
		want  []string
	}{
		{
			name:  "url first then stdin",
			url:   "http://a.com",
			stdin: []string{"http://b.com"},
			want:  []string{"http://a.com", "http://b.com"},
		},
		{
			name:  "stdin only",
			stdin: []string{"http://b.com"},
			want:  []string{"http://b.com"},
		},
		{
			name: "url only",
			url:  "http://a.com",
			want: []string{"http://a.com"},
		},
		{
			name: "nothing",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSeeds(tt.url, tt.stdin)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeSeeds() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `url: http://a.com
delay: 2
maxdepth: 3
samedomain: true
specificdomain: a.com
format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if opts.URL != "http://a.com" || opts.Delay != "2" || opts.MaxDepth != "3" {
		t.Errorf("unexpected options: %+v", opts)
	}
	if !opts.SameDomain || opts.SpecificDomain != "a.com" || opts.Format != "json" {
		t.Errorf("unexpected options: %+v", opts)
	}

	c, err := Build(Defaults().Merge(*opts), nil)
	if err != nil {
		t.Fatalf("Build() from file options: %v", err)
	}
	if c.Delay != 2*time.Second || c.MaxDepth != 3 {
		t.Errorf("unexpected crawl config: %+v", c)
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadFile() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("delay: [1, 2\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() should fail on malformed YAML")
	}
}

func TestFindConfigFile_Explicit(t *testing.T) {
	if got := FindConfigFile("/some/where.yaml"); got != "/some/where.yaml" {
		t.Errorf("FindConfigFile() = %q, want explicit path", got)
	}
}
