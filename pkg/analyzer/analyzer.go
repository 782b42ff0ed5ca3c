// Package analyzer wires the pipeline together: scrape (or generate
// demo data), aggregate in UTC, re-project into the requested timezone
// offset, derive insights, and assemble the report. It owns the result
// cache and the optional AI summary; all the numeric work lives in the
// activity, tzshift, and insight packages.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
	"github.com/tweetbeat/tweetbeat/pkg/demo"
	"github.com/tweetbeat/tweetbeat/pkg/gemini"
	"github.com/tweetbeat/tweetbeat/pkg/insight"
	"github.com/tweetbeat/tweetbeat/pkg/report"
	"github.com/tweetbeat/tweetbeat/pkg/resultcache"
	"github.com/tweetbeat/tweetbeat/pkg/twitter"
	"github.com/tweetbeat/tweetbeat/pkg/tzshift"
)

const cacheTTL = 12 * time.Hour

// Analyzer runs the full analysis pipeline for one profile at a time.
// It holds no per-request state; concurrent Analyze calls are safe.
type Analyzer struct {
	logger   *slog.Logger
	scraper  *twitter.Scraper
	cache    *resultcache.Cache
	gemini   *gemini.Client
	now      func() time.Time
	demoSeed uint64
}

// New creates an Analyzer. The cache is optional infrastructure:
// initialization failures degrade to uncached operation.
func New(ctx context.Context, logger *slog.Logger, opts ...Option) *Analyzer {
	holder := &optionHolder{}
	for _, opt := range opts {
		opt(holder)
	}

	var cache *resultcache.Cache
	switch {
	case holder.noCache:
		logger.Info("result caching disabled")
	case holder.memoryCache:
		cache = resultcache.NewMemory(cacheTTL, logger)
	default:
		cacheDir := holder.cacheDir
		if cacheDir == "" {
			if userCacheDir, err := os.UserCacheDir(); err == nil {
				cacheDir = filepath.Join(userCacheDir, "tweetbeat")
			} else {
				logger.Debug("could not determine user cache directory", "error", err)
			}
		}
		if cacheDir != "" {
			var err error
			cache, err = resultcache.New(ctx, cacheDir, cacheTTL, logger)
			if err != nil {
				logger.Warn("cache initialization failed", "error", err, "cache_dir", cacheDir)
				cache = nil
			}
		}
	}

	a := &Analyzer{
		logger:   logger,
		scraper:  twitter.New(logger, holder.maxTweets),
		cache:    cache,
		now:      time.Now,
		demoSeed: holder.demoSeed,
	}
	if holder.geminiAPIKey != "" || holder.gcpProject != "" {
		a.gemini = gemini.NewClient(holder.geminiAPIKey, holder.geminiModel, holder.gcpProject)
	}
	return a
}

// Close flushes and releases the result cache.
func (a *Analyzer) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// Analyze produces the report for username at the given timezone
// offset. demoMode skips scraping and feeds synthetic timestamps
// through the identical pipeline.
func (a *Analyzer) Analyze(ctx context.Context, username string, offsetHours float64, demoMode bool) (*report.Report, error) {
	cacheKey := resultcache.Key(username, demoMode, offsetHours)
	if a.cache != nil {
		if data, found := a.cache.Get(cacheKey); found {
			var cached report.Report
			if err := json.Unmarshal(data, &cached); err == nil {
				a.logger.Debug("analysis cache hit", "username", username)
				return &cached, nil
			}
			a.logger.Debug("discarding undecodable cache entry", "username", username)
		}
	}

	meta, timestamps, err := a.collect(ctx, username, demoMode)
	if err != nil {
		return nil, err
	}

	stats := activity.Aggregate(timestamps)
	shifted := tzshift.Reproject(stats, offsetHours)
	day, hour := tzshift.LocalClock(a.now(), offsetHours)
	bundle := insight.Derive(shifted, day, hour)

	rep, err := report.Build(meta, shifted, bundle, offsetHours)
	if err != nil {
		return nil, fmt.Errorf("assembling report for @%s: %w", username, err)
	}

	if a.gemini != nil {
		var summaryCache gemini.Cache
		if a.cache != nil {
			summaryCache = a.cache
		}
		if summary, err := a.gemini.Summarize(ctx, gemini.BuildPrompt(rep), summaryCache, a.logger); err != nil {
			a.logger.Warn("AI summary failed", "username", username, "error", err)
		} else {
			rep.AISummary = summary.Summary
		}
	}

	if a.cache != nil {
		if data, err := json.Marshal(rep); err == nil {
			a.cache.Set(cacheKey, data)
		}
	}

	a.logger.Info("analysis complete",
		"username", username,
		"posts", rep.TotalAnalyzed,
		"offset", offsetHours,
		"demo", demoMode,
		"pattern", rep.ActivityPattern.Label)

	return rep, nil
}

func (a *Analyzer) collect(ctx context.Context, username string, demoMode bool) (report.Meta, []time.Time, error) {
	if demoMode {
		seed := a.demoSeed
		if seed == 0 {
			h := fnv.New64a()
			h.Write([]byte(username))
			seed = h.Sum64()
		}
		meta := report.Meta{
			Username:     username,
			DisplayName:  "@" + username,
			TimezoneNote: "demo data",
			Demo:         true,
		}
		return meta, demo.Timestamps(seed), nil
	}

	profile, err := a.scraper.FetchActivity(ctx, username)
	if err != nil {
		return report.Meta{}, nil, err
	}
	meta := report.Meta{
		Username:     profile.Username,
		DisplayName:  profile.DisplayName,
		ProfileImage: profile.ProfileImage,
		TimezoneNote: "scraped from public profile",
	}
	return meta, profile.Timestamps, nil
}
