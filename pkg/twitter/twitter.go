// Package twitter fetches a public X/Twitter profile and its recent
// post timestamps. It is the data-collection collaborator for the
// aggregation engine: it supplies UTC timestamps and profile metadata,
// and nothing downstream ever touches the network.
package twitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/codeGROOVE-dev/retry"
	twitterscraper "github.com/imperatrona/twitter-scraper"
)

// DefaultMaxTweets caps how many recent posts are analyzed per profile.
const DefaultMaxTweets = 50

const websiteExcerptLimit = 600

// ErrNotFound reports a profile that does not exist or is suspended.
// Callers map this to a 404 rather than retrying.
var ErrNotFound = errors.New("profile not found or suspended")

// X/Twitter handles: 1-15 word characters.
var usernameRegex = regexp.MustCompile(`^\w{1,15}$`)

// IsValidUsername reports whether s can be an X/Twitter handle.
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// Profile holds the scraped metadata and post timestamps for one account.
type Profile struct {
	Username       string
	DisplayName    string
	ProfileImage   string
	Bio            string
	Website        string
	WebsiteExcerpt string
	Timestamps     []time.Time
}

// Scraper fetches profiles with bounded retries.
type Scraper struct {
	logger     *slog.Logger
	httpClient *http.Client
	maxTweets  int
}

// New creates a Scraper. maxTweets <= 0 selects DefaultMaxTweets.
func New(logger *slog.Logger, maxTweets int) *Scraper {
	if maxTweets <= 0 {
		maxTweets = DefaultMaxTweets
	}
	return &Scraper{
		logger:    logger,
		maxTweets: maxTweets,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchActivity scrapes the profile and collects up to maxTweets post
// timestamps, skipping retweets so the activity pattern reflects when
// the account itself writes. Returns ErrNotFound (wrapped) for missing
// or suspended accounts.
func (s *Scraper) FetchActivity(ctx context.Context, username string) (*Profile, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, errors.New("username is required")
	}

	scraper := twitterscraper.New()

	var tsProfile twitterscraper.Profile
	err := retry.Do(
		func() error {
			var fetchErr error
			tsProfile, fetchErr = scraper.GetProfile(username)
			if fetchErr != nil && isPermanent(fetchErr) {
				return retry.Unrecoverable(fetchErr)
			}
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("retrying profile fetch", "attempt", n+1, "username", username, "error", err)
		}),
	)
	if err != nil {
		if isPermanent(err) {
			return nil, fmt.Errorf("@%s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching profile @%s: %w", username, err)
	}

	profile := &Profile{
		Username:     username,
		DisplayName:  tsProfile.Name,
		ProfileImage: tsProfile.Avatar,
		Bio:          tsProfile.Biography,
		Website:      tsProfile.Website,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = "@" + username
	}

	for tweet := range scraper.GetTweets(ctx, username, s.maxTweets) {
		if tweet.Error != nil {
			s.logger.Debug("tweet stream error", "username", username, "error", tweet.Error)
			continue
		}
		if tweet.IsRetweet {
			continue
		}
		profile.Timestamps = append(profile.Timestamps, tweet.TimeParsed.UTC())
	}

	if len(profile.Timestamps) == 0 {
		return nil, fmt.Errorf("no posts found for @%s: %w", username, ErrNotFound)
	}

	if profile.Website != "" {
		profile.WebsiteExcerpt = s.websiteExcerpt(ctx, profile.Website)
	}

	s.logger.Debug("scraped profile",
		"username", username,
		"name", profile.DisplayName,
		"posts", len(profile.Timestamps),
		"has_website", profile.Website != "")

	return profile, nil
}

// websiteExcerpt fetches the profile's linked website and converts it
// to a short markdown excerpt, used as extra context for the optional
// AI summary. Failures degrade to an empty excerpt.
func (s *Scraper) websiteExcerpt(ctx context.Context, websiteURL string) string {
	if !strings.HasPrefix(websiteURL, "http://") && !strings.HasPrefix(websiteURL, "https://") {
		websiteURL = "https://" + websiteURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, websiteURL, http.NoBody)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; tweetbeat/1.0)")

	var body string
	err = retry.Do(
		func() error {
			resp, doErr := s.httpClient.Do(req)
			if doErr != nil {
				return doErr
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					s.logger.Debug("failed to close response body", "error", closeErr)
				}
			}()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("HTTP %d", resp.StatusCode))
			}
			data, readErr := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
			if readErr != nil {
				return readErr
			}
			body = string(data)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(15*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("retrying website fetch", "attempt", n+1, "url", websiteURL, "error", err)
		}),
	)
	if err != nil {
		s.logger.Debug("website fetch failed", "url", websiteURL, "error", err)
		return ""
	}

	markdown, err := md.ConvertString(body)
	if err != nil {
		s.logger.Debug("markdown conversion failed", "url", websiteURL, "error", err)
		return ""
	}
	markdown = strings.TrimSpace(markdown)
	if len(markdown) > websiteExcerptLimit {
		markdown = markdown[:websiteExcerptLimit]
	}
	return markdown
}

// isPermanent reports errors that no amount of retrying will fix.
func isPermanent(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"not found", "suspended", "does not exist", "user unavailable"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
