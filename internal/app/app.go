// Package app contains the core application logic for the typograf CLI
// tool. It wires configuration, fetching, the pattern registry, the
// text processor, and the DOM applier into one pipeline, separated from
// CLI concerns.
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"typograf/internal/apply"
	"typograf/internal/config"
	"typograf/internal/extract"
	"typograf/internal/fetch"
	"typograf/internal/pattern"
	"typograf/internal/process"
	"typograf/internal/spinner"
	"typograf/internal/watch"
)

// Config holds all options for one typograf run.
type Config struct {
	Sources         []string // URLs, file paths, or "-" for stdin
	Output          string   // output file path; empty writes to stdout
	Readable        bool     // isolate main article content before transforming
	PreviewMarkdown bool     // render transformed output as Markdown
	Watch           bool     // re-transform when the source file changes
	QuietPeriod     time.Duration
	Quiet           bool // suppress info messages
	Debug           bool

	Transform config.Config // pattern/selector/cache configuration
}

// Pipeline is the built transformation core shared by one-shot and
// watch runs.
type Pipeline struct {
	Processor *process.Processor
	Applier   *apply.Applier
}

// BuildPipeline validates the transform configuration and constructs
// the pattern set, processor, and applier. Configuration errors are
// fatal here, before any content is touched.
func BuildPipeline(cfg config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	set, err := pattern.Build(cfg.PatternOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build pattern registry: %w", err)
	}
	combined, err := set.Combine()
	if err != nil {
		return nil, err
	}

	proc := process.New(combined, cfg.CacheSize)
	applier, err := apply.New(proc, cfg.Selectors.Include, cfg.Selectors.Exclude)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Processor: proc, Applier: applier}, nil
}

// Run executes the typograf pipeline for the given configuration.
//
// One-shot runs transform every source through the server (string)
// path and write the combined result once. Watch mode holds a live
// document path instead: the single file source is re-read, re-parsed,
// and re-applied on every coalesced burst of file changes, with the
// segment cache cleared between documents.
func Run(ctx context.Context, cfg Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources provided")
	}

	pipe, err := BuildPipeline(cfg.Transform)
	if err != nil {
		return err
	}

	if cfg.Watch {
		return runWatch(ctx, cfg, pipe)
	}

	var out []string
	for _, source := range cfg.Sources {
		result, err := transformSource(ctx, cfg, pipe, source)
		if err != nil {
			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Warning: failed to process source %q: %v\n", source, err)
			}
			continue
		}
		out = append(out, result)
	}
	if len(out) == 0 {
		return fmt.Errorf("no content transformed from any source")
	}

	slog.Debug("run complete", "sources", len(out), "cache", pipe.Processor.CacheStats())
	return writeOutput(cfg.Output, strings.Join(out, "\n"))
}

// transformSource fetches one source and runs it through the server
// path.
func transformSource(ctx context.Context, cfg Config, pipe *Pipeline, source string) (string, error) {
	markup, err := readSource(ctx, cfg, source)
	if err != nil {
		return "", err
	}

	transformed, err := pipe.Applier.Document(markup)
	if err != nil {
		return "", fmt.Errorf("failed to transform %q: %w", source, err)
	}

	if cfg.PreviewMarkdown {
		return extract.MarkdownPreview(transformed)
	}
	return transformed, nil
}

// readSource fetches a source into a markup string, applying the
// readability pre-pass when configured.
func readSource(ctx context.Context, cfg Config, source string) (string, error) {
	reader, err := fetch.Open(ctx, source)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content: %w", err)
	}
	defer reader.Close()

	isURL := strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
	var sp *spinner.Spinner
	if isURL && !cfg.Quiet {
		sp = spinner.New(os.Stderr, "Fetching "+source+"...")
		sp.Start(ctx)
		defer sp.Stop()
	}

	if cfg.Readable {
		var baseURL *url.URL
		if isURL {
			baseURL, _ = url.Parse(source) // nil on parse failure is fine
		}
		return extract.Readable(reader, baseURL)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return string(data), nil
}

// runWatch transforms the single file source once, then re-runs on
// every coalesced burst of file changes until ctx is canceled.
func runWatch(ctx context.Context, cfg Config, pipe *Pipeline) error {
	if len(cfg.Sources) != 1 {
		return fmt.Errorf("watch mode requires exactly one source, got %d", len(cfg.Sources))
	}
	source := cfg.Sources[0]
	if source == "-" || strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fmt.Errorf("watch mode requires a file source, got %q", source)
	}

	render := func() {
		// the document context changed, so memoized segments for the
		// old document are stale
		pipe.Processor.ClearCache()

		result, err := transformLive(ctx, cfg, pipe, source)
		if err != nil {
			slog.Warn("watch re-transform failed", "source", source, "error", err)
			return
		}
		if err := writeOutput(cfg.Output, result); err != nil {
			slog.Warn("watch write failed", "output", cfg.Output, "error", err)
			return
		}
		if !cfg.Quiet {
			fmt.Fprintf(os.Stderr, "transformed %s\n", source)
		}
	}

	render()
	err := watch.File(ctx, source, cfg.QuietPeriod, render)
	if err == context.Canceled {
		return nil
	}
	return err
}

// transformLive runs one source through the live-document path: parse
// into a goquery document, mutate it in place, serialize. Behaviorally
// equivalent to the server path on identical input.
func transformLive(ctx context.Context, cfg Config, pipe *Pipeline, source string) (string, error) {
	markup, err := readSource(ctx, cfg, source)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse %q: %w", source, err)
	}

	n, err := pipe.Applier.Subtree(doc)
	if err != nil {
		return "", fmt.Errorf("failed to transform %q: %w", source, err)
	}
	slog.Debug("live transform", "source", source, "textNodes", n)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Get(0)); err != nil {
		return markup, fmt.Errorf("failed to serialize %q: %w", source, err)
	}

	if cfg.PreviewMarkdown {
		return extract.MarkdownPreview(buf.String())
	}
	return buf.String(), nil
}

// writeOutput writes the result to the output file, or stdout when no
// file is configured.
func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output %q: %w", path, err)
	}
	return nil
}
