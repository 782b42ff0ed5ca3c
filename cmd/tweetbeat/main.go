// Package main implements the tweetbeat CLI: analyze when an X/Twitter
// account posts, in any timezone offset.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tweetbeat/tweetbeat/pkg/analyzer"
	"github.com/tweetbeat/tweetbeat/pkg/histogram"
)

var (
	tzOffset     = flag.Float64("tz", 0, "Timezone offset in hours, fractional allowed (e.g. 5.5 for IST)")
	demoMode     = flag.Bool("demo", false, "Use generated demo data instead of scraping")
	maxTweets    = flag.Int("max-tweets", 50, "Maximum number of recent posts to analyze")
	jsonOutput   = flag.Bool("json", false, "Print the raw JSON report instead of the histogram")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key for the AI summary (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	gcpProject   = flag.String("gcp-project", "", "GCP project ID for Vertex AI (or set GCP_PROJECT)")
	cacheDir     = flag.String("cache-dir", "", "Cache directory (or set CACHE_DIR)")
	noCache      = flag.Bool("no-cache", false, "Disable caching")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("tweetbeat CLI v1.0.0")
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <username>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	username := args[0]

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *gcpProject == "" {
		*gcpProject = os.Getenv("GCP_PROJECT")
	}
	if *cacheDir == "" {
		*cacheDir = os.Getenv("CACHE_DIR")
	}

	opts := []analyzer.Option{
		analyzer.WithMaxTweets(*maxTweets),
		analyzer.WithGeminiAPIKey(*geminiAPIKey),
		analyzer.WithGeminiModel(*geminiModel),
		analyzer.WithGCPProject(*gcpProject),
	}
	if *noCache {
		opts = append(opts, analyzer.WithNoCache())
	} else if *cacheDir != "" {
		opts = append(opts, analyzer.WithCacheDir(*cacheDir))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	a := analyzer.New(ctx, logger, opts...)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close analyzer", "error", err)
		}
	}()

	rep, err := a.Analyze(ctx, username, *tzOffset, *demoMode)
	if err != nil {
		cancel()
		logger.Error("analysis failed", "username", username, "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			logger.Error("failed to encode report", "error", err)
			os.Exit(1)
		}
		return
	}

	stats, err := rep.Stats()
	if err != nil {
		logger.Error("report is malformed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\n%s (@%s)\n", rep.DisplayName, rep.Username)
	if rep.IsDemo {
		fmt.Println("(demo data)")
	}
	fmt.Println(histogram.Render(stats, rep.Insights(), rep.TimezoneOffset))

	if rep.AISummary != "" {
		fmt.Println("🤖 AI summary")
		fmt.Println("   " + rep.AISummary)
	}
}
