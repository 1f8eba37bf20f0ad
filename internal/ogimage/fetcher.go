package ogimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const UserAgent = "aquarium-visit-log (og image fetcher)"

// pages larger than this are truncated before parsing
const maxBodyBytes = 2 << 20

var errUnsupportedURL = errors.New("unsupported url")

// Cache remembers lookups by page URL. An empty value records a page without an og:image.
type Cache interface {
	Get(ctx context.Context, pageURL string) (string, bool, error)
	Set(ctx context.Context, pageURL, imageURL string) error
}

type Options struct {
	Timeout       time.Duration
	RatePerSecond int
	Cache         Cache
	Logger        *slog.Logger
	Client        *http.Client
}

// Fetcher looks up the Open Graph image of external pages.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cache   Cache
	logger  *slog.Logger
}

func New(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	perSecond := opts.RatePerSecond
	if perSecond < 1 {
		perSecond = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		cache:   opts.Cache,
		logger:  logger,
	}
}

// Fetch returns the absolute og:image URL of pageURL. Every failure yields nil.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) *string {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil
	}

	if f.cache != nil {
		cached, ok, err := f.cache.Get(ctx, pageURL)
		if err != nil {
			f.logger.Warn("[og_image] cache read failed", "url", pageURL, "error", err)
		} else if ok {
			return nonEmpty(cached)
		}
	}

	image, err := f.fetch(ctx, pageURL)
	if err != nil {
		f.logger.Warn("[og_image] fetch failed", "url", pageURL, "error", err)
		return nil
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, pageURL, image); err != nil {
			f.logger.Warn("[og_image] cache write failed", "url", pageURL, "error", err)
		}
	}
	return nonEmpty(image)
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", errUnsupportedURL, pageURL)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	content = strings.TrimSpace(content)
	if content == "" {
		return "", nil
	}

	ref, err := url.Parse(content)
	if err != nil {
		return "", fmt.Errorf("parse og:image: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
