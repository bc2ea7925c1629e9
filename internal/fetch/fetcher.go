// Package fetch acquires the raw material for an audit: the page HTML, the
// site's robots.txt and sitemap probes, an optional AI user-agent probe, and
// an optional headless-rendered snapshot. Acquisition degrades rather than
// aborts: a failed probe or render leaves its field zero and the audit
// proceeds on what was collected.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aeoscope/aeoscope/pkg/config"
	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// maxBodyBytes caps how much of a response we read. Pages beyond this are
// truncated, which is fine for auditing purposes.
const maxBodyBytes = 5 << 20

// aiProbeUserAgent is the user-agent used for the simulated AI crawler probe.
const aiProbeUserAgent = "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko); compatible; GPTBot/1.2; +https://openai.com/gptbot"

// Result is everything acquisition collected about one URL.
type Result struct {
	URL                 string
	HTML                string
	RenderedHTML        string
	StatusCode          int
	Headers             http.Header
	RobotsTxt           string
	RobotsTxtFound      bool
	SitemapFound        bool
	ResponseTimeMs      int
	AIUserAgentStatus   int
	SPALikely           bool
	CloudflareChallenge bool
	RenderTimedOut      bool
}

// EvidenceInput converts the fetch result into the scoring engine's input.
func (r *Result) EvidenceInput() evidence.Input {
	return evidence.Input{
		URL:                 r.URL,
		HTML:                r.HTML,
		RenderedHTML:        r.RenderedHTML,
		StatusCode:          r.StatusCode,
		Headers:             r.Headers,
		RobotsTxt:           r.RobotsTxt,
		RobotsTxtFound:      r.RobotsTxtFound,
		SitemapFound:        r.SitemapFound,
		ResponseTimeMs:      r.ResponseTimeMs,
		AIUserAgentStatus:   r.AIUserAgentStatus,
		SPALikely:           r.SPALikely,
		CloudflareChallenge: r.CloudflareChallenge,
		RenderTimedOut:      r.RenderTimedOut,
	}
}

// Fetcher acquires pages over HTTP with an optional headless rendering
// fallback for JavaScript-heavy sites.
type Fetcher struct {
	client *http.Client
	cfg    config.FetchConfig
	logger *log.Logger

	// renderFn is swapped in tests; in production it drives headless Chrome.
	renderFn func(ctx context.Context, url string) (string, error)
}

// New creates a Fetcher. A nil logger discards log output.
func New(cfg config.FetchConfig, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	f := &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout()},
		cfg:    cfg,
		logger: logger,
	}
	f.renderFn = f.renderHeadless
	return f
}

// Fetch acquires the page plus the site probes. It errors only when the main
// page cannot be fetched at all; probe and render failures degrade.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	start := time.Now()
	status, finalURL, headers, body, err := f.get(ctx, target, f.cfg.UserAgent, true)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	res.ResponseTimeMs = int(time.Since(start).Milliseconds())
	res.URL = finalURL
	res.StatusCode = status
	res.Headers = headers
	res.HTML = body
	res.CloudflareChallenge = DetectCloudflareChallenge(body)
	res.SPALikely = DetectSPA(body)

	root, err := url.Parse(finalURL)
	if err != nil {
		root, _ = url.Parse(target)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The robots probe needs the body; the crawler checks parse its rules.
		status, _, _, robots, err := f.get(gctx, root.Scheme+"://"+root.Host+"/robots.txt", f.cfg.UserAgent, true)
		if err == nil && status == http.StatusOK {
			res.RobotsTxt = robots
			res.RobotsTxtFound = true
		}
		return nil
	})
	g.Go(func() error {
		status, _, _, _, err := f.get(gctx, root.Scheme+"://"+root.Host+"/sitemap.xml", f.cfg.UserAgent, false)
		res.SitemapFound = err == nil && status == http.StatusOK
		return nil
	})
	if f.cfg.ProbeAIUserAgent {
		g.Go(func() error {
			status, _, _, _, err := f.get(gctx, finalURL, aiProbeUserAgent, false)
			if err == nil {
				res.AIUserAgentStatus = status
			}
			return nil
		})
	}
	_ = g.Wait()

	if f.cfg.RenderingEnabled && NeedsRendering(res.HTML) && !res.CloudflareChallenge {
		f.logger.Printf("fetch: rendering %s (static HTML looks JavaScript-dependent)", finalURL)
		rendered, err := f.renderFn(ctx, finalURL)
		switch {
		case err == nil:
			res.RenderedHTML = rendered
		case ctx.Err() != nil || strings.Contains(err.Error(), "deadline"):
			res.RenderTimedOut = true
			f.logger.Printf("fetch: render timed out for %s", finalURL)
		default:
			f.logger.Printf("fetch: render failed for %s: %v", finalURL, err)
		}
	}

	return res, nil
}

// get performs one GET with browser-like headers. withBody controls whether
// the body is read (probes only need the status).
func (f *Fetcher) get(ctx context.Context, target, userAgent string, withBody bool) (int, string, http.Header, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, "", nil, "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", nil, "", err
	}
	defer resp.Body.Close()

	var body string
	if withBody {
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return resp.StatusCode, resp.Request.URL.String(), resp.Header, "", err
		}
		body = string(data)
	} else {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	}

	return resp.StatusCode, resp.Request.URL.String(), resp.Header, body, nil
}

// NormalizeURL fills in a missing scheme and validates the target.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}
	return u.String(), nil
}
