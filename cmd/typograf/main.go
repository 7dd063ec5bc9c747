package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"typograf/internal/app"
	"typograf/internal/config"
)

// familyFlags maps --disable names onto configuration toggles.
func familyFlags(cfg *config.Config) map[string]*bool {
	return map[string]*bool{
		"trademark":  &cfg.Families.Trademark,
		"registered": &cfg.Families.Registered,
		"copyright":  &cfg.Families.Copyright,
		"ordinal":    &cfg.Families.Ordinal,
		"chemical":   &cfg.Families.Chemical,
		"mathSuper":  &cfg.Families.MathSuper,
		"mathSub":    &cfg.Families.MathSub,
	}
}

// buildConfig constructs an app.Config from command flags and arguments.
// Precedence: defaults, then config file, then flags.
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	transform, err := config.Load(configPath)
	if err != nil {
		return app.Config{}, err
	}

	disabled, _ := cmd.Flags().GetStringSlice("disable")
	toggles := familyFlags(&transform)
	for _, name := range disabled {
		t, ok := toggles[name]
		if !ok {
			return app.Config{}, fmt.Errorf("unknown pattern family %q", name)
		}
		*t = false
	}

	if cmd.Flags().Changed("include") {
		transform.Selectors.Include, _ = cmd.Flags().GetStringSlice("include")
	}
	if cmd.Flags().Changed("exclude") {
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		transform.Selectors.Exclude = append(transform.Selectors.Exclude, exclude...)
	}
	if cmd.Flags().Changed("cache-size") {
		transform.CacheSize, _ = cmd.Flags().GetInt("cache-size")
	}

	output, _ := cmd.Flags().GetString("output")
	readable, _ := cmd.Flags().GetBool("readable")
	previewMD, _ := cmd.Flags().GetBool("preview-md")
	watchFlag, _ := cmd.Flags().GetBool("watch")
	quietPeriod, _ := cmd.Flags().GetDuration("quiet-period")
	quiet, _ := cmd.Flags().GetBool("quiet")
	debug, _ := cmd.Flags().GetBool("debug")

	// no arguments means stdin
	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	return app.Config{
		Sources:         sources,
		Output:          output,
		Readable:        readable,
		PreviewMarkdown: previewMD,
		Watch:           watchFlag,
		QuietPeriod:     quietPeriod,
		Quiet:           quiet,
		Debug:           debug,
		Transform:       transform,
	}, nil
}

// setupLogger configures the default slog logger based on debug mode.
func setupLogger(debug bool) {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "typograf [sources...]",
	Short: "Rewrite typographic tokens in HTML into semantic markup",
	Long: `Typograf scans the human-readable text of an HTML document and rewrites
trademark/registered/copyright marks, ordinal suffixes, chemical formulas,
and math sub/superscript notation into semantic <sup>, <sub>, and <span>
elements, leaving code blocks and excluded regions untouched.

Examples:
  typograf page.html
  typograf -o out.html --readable https://example.com/article
  cat page.html | typograf --disable ordinal --preview-md
  typograf -w -o out.html page.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		setupLogger(cfg.Debug)

		// graceful shutdown, mainly for watch mode
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := app.Run(ctx, cfg); err != nil {
			return fmt.Errorf("typograf failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringP("output", "o", "", "Write transformed markup to a file instead of stdout")
	rootCmd.Flags().String("config", "", "Path to a config file (JSON, YAML, or TOML)")

	// family and selector configuration
	rootCmd.Flags().StringSlice("disable", nil, "Disable pattern families (trademark, registered, copyright, ordinal, chemical, mathSuper, mathSub)")
	rootCmd.Flags().StringSlice("include", nil, "CSS selectors whose subtrees are transformed (overrides config)")
	rootCmd.Flags().StringSlice("exclude", nil, "CSS selectors to skip (appended to config)")
	rootCmd.Flags().Int("cache-size", 0, "Segment cache entry limit")

	// content handling
	rootCmd.Flags().Bool("readable", false, "Isolate the main article content before transforming")
	rootCmd.Flags().Bool("preview-md", false, "Render the transformed output as Markdown")

	// watch mode
	rootCmd.Flags().BoolP("watch", "w", false, "Re-transform when the source file changes")
	rootCmd.Flags().Duration("quiet-period", 0, "Debounce window for watch mode (default 250ms)")

	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress info messages")
	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")

	rootCmd.MarkFlagsMutuallyExclusive("watch", "readable")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
