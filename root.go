package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lukemcguire/plowcrawl/config"
	"github.com/lukemcguire/plowcrawl/crawler"
	"github.com/lukemcguire/plowcrawl/result"
	"github.com/lukemcguire/plowcrawl/tui"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

// rootOptions holds the raw flag values of the root command.
type rootOptions struct {
	configPath string
	flags      config.Options
}

// NewRootCmd creates the plowcrawl command.
func NewRootCmd() *cobra.Command {
	return newRootCmd()
}

// newRootCmd builds the command; extra options are applied to the crawler
// after the defaults.
func newRootCmd(extra ...crawler.Option) *cobra.Command {
	ro := &rootOptions{}
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "plowcrawl",
		Short: "Breadth-first crawler that lists the links and scripts of web pages",
		Long: `plowcrawl fetches each seed URL, prints every <a href> and <script src>
reference it finds as "<url> <link|script>", and follows the links
breadth-first up to --maxdepth.

Seeds come from --url followed by one URL per line on standard input.
Settings can also be read from a YAML file given with --config, or from
$XDG_CONFIG_HOME/plowcrawl/config.yaml. Flags override the file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, ro, extra)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ro.flags.URL, "url", "", "seed URL, crawled before any read from standard input")
	flags.StringVar(&ro.flags.Delay, "delay", defaults.Delay, "seconds to wait after each page (positive integer)")
	flags.StringVar(&ro.flags.Proxy, "proxy", "", "proxy for HTTP and HTTPS requests (host:port or URL)")
	flags.StringVar(&ro.flags.CertFile, "certfile", "", "CA bundle file or directory used to verify TLS servers")
	flags.StringVar(&ro.flags.SpecificDomain, "specificdomain", "", "only report resources on this domain")
	flags.BoolVar(&ro.flags.SameDomain, "samedomain", false, "only report resources on the domain of the page they were found on")
	flags.StringVar(&ro.flags.MaxDepth, "maxdepth", defaults.MaxDepth, "maximum crawl depth; seeds are depth 1 (positive integer)")
	flags.StringVar(&ro.flags.Format, "format", defaults.Format, "output format: text, json or csv")
	flags.StringVar(&ro.configPath, "config", "", "YAML file with default settings")
	flags.BoolVarP(&ro.flags.Verbose, "verbose", "v", false, "enable debug logging on stderr")
	flags.BoolVar(&ro.flags.Progress, "progress", false, "show a live progress view on stderr")
	flags.BoolVar(&ro.flags.Summary, "summary", false, "print a crawl summary on stderr when done")
	flags.BoolVar(&ro.flags.LowMemory, "low-memory", false, "track visited pages in a disk-backed bloom filter")

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitError
	}
}

// resolveOptions layers defaults, the config file and explicitly set flags.
func resolveOptions(cmd *cobra.Command, ro *rootOptions) (config.Options, error) {
	opts := config.Defaults()

	if path := config.FindConfigFile(ro.configPath); path != "" {
		fileOpts, err := config.LoadFile(path)
		if err != nil {
			return config.Options{}, fmt.Errorf("load config: %w", err)
		}
		opts = opts.Merge(*fileOpts)
	}

	changed := cmd.Flags().Changed
	setString := func(name string, dst *string, val string) {
		if changed(name) {
			*dst = val
		}
	}
	setBool := func(name string, dst *bool, val bool) {
		if changed(name) {
			*dst = val
		}
	}

	setString("url", &opts.URL, ro.flags.URL)
	setString("delay", &opts.Delay, ro.flags.Delay)
	setString("proxy", &opts.Proxy, ro.flags.Proxy)
	setString("certfile", &opts.CertFile, ro.flags.CertFile)
	setString("specificdomain", &opts.SpecificDomain, ro.flags.SpecificDomain)
	setString("maxdepth", &opts.MaxDepth, ro.flags.MaxDepth)
	setString("format", &opts.Format, ro.flags.Format)
	setBool("samedomain", &opts.SameDomain, ro.flags.SameDomain)
	setBool("verbose", &opts.Verbose, ro.flags.Verbose)
	setBool("progress", &opts.Progress, ro.flags.Progress)
	setBool("summary", &opts.Summary, ro.flags.Summary)
	setBool("low-memory", &opts.LowMemory, ro.flags.LowMemory)

	return opts, nil
}

// readStdinSeeds reads seeds from in unless it is an interactive terminal.
func readStdinSeeds(in io.Reader) ([]string, error) {
	if in == nil || isTerminal(in) {
		return nil, nil
	}
	return config.ReadSeeds(in)
}

func runCrawl(cmd *cobra.Command, ro *rootOptions, extra []crawler.Option) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	opts, err := resolveOptions(cmd, ro)
	if err != nil {
		return err
	}

	// Validate before reading stdin, which may be a pipe that stays open.
	cfg, err := config.Build(opts, nil)
	if err != nil {
		return err
	}

	stdinSeeds, err := readStdinSeeds(cmd.InOrStdin())
	if err != nil {
		return err
	}
	cfg = cfg.WithSeeds(config.MergeSeeds(opts.URL, stdinSeeds))

	logger := newLogger(stderr, cfg.Verbose)
	logger.Debug().
		Strs("seeds", cfg.Seeds).
		Int("maxdepth", cfg.MaxDepth).
		Dur("delay", cfg.Delay).
		Str("specificdomain", cfg.SpecificDomain).
		Bool("samedomain", cfg.SameDomainOnly).
		Msg("starting crawl")
	if len(cfg.Seeds) == 0 {
		logger.Warn().Msg("no seed URLs given")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	crawlOpts := append([]crawler.Option{
		crawler.WithOutput(result.NewWriter(cfg.Format, stdout)),
		crawler.WithErrorOutput(stderr),
		crawler.WithLogger(logger),
	}, extra...)

	var stats *result.Stats
	if cfg.Progress && isTerminal(stderr) {
		stats, err = runWithProgress(ctx, cfg, stderr, crawlOpts)
	} else {
		if cfg.Progress {
			logger.Warn().Msg("progress view needs a terminal on stderr, continuing without it")
		}
		stats, err = crawler.New(cfg, crawlOpts...).Run(ctx)
	}

	if stats != nil {
		logger.Debug().
			Int("pages", stats.PagesFetched).
			Int("resources", stats.Resources()).
			Int("errors", stats.FetchErrors).
			Dur("duration", stats.Duration).
			Msg("crawl finished")
		if cfg.Summary {
			printSummary(stderr, *stats)
		}
	}

	if errors.Is(err, context.Canceled) {
		logger.Warn().Msg("crawl interrupted")
	}
	return err
}

// runWithProgress runs the crawl behind the Bubble Tea progress view.
// Fetch failures are printed by the view instead of the crawler.
func runWithProgress(ctx context.Context, cfg config.Crawl, out io.Writer, crawlOpts []crawler.Option) (*result.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan crawler.CrawlEvent, 100)
	crawlOpts = append(crawlOpts,
		crawler.WithErrorOutput(io.Discard),
		crawler.WithProgress(progressCh),
	)
	crawlerInstance := crawler.New(cfg, crawlOpts...)

	model := tui.NewModel(ctx, cancel, crawlerInstance, progressCh)
	program := tea.NewProgram(model,
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}

	final := finalModel.(tui.Model)
	return final.Stats(), final.Err()
}

// printSummary writes the styled summary to a terminal and the plain one
// elsewhere.
func printSummary(w io.Writer, stats result.Stats) {
	if isTerminal(w) {
		_, _ = fmt.Fprint(w, tui.RenderSummary(&stats))
		return
	}
	result.PrintSummary(w, stats)
}
