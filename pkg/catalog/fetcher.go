package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/retry"
)

// Fetcher retrieves the raw beer listing from the source website.
// The store depends only on this contract and its failure signal.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Beer, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context) ([]models.Beer, error)

// Fetch implements Fetcher.
func (f FetchFunc) Fetch(ctx context.Context) ([]models.Beer, error) {
	return f(ctx)
}

const userAgent = "Mozilla/5.0 (compatible; CiceroneEngine/1.0)"

var (
	abvPattern = regexp.MustCompile(`(\d+\.?\d*)\s*%`)
	ibuPattern = regexp.MustCompile(`(?i)(\d+)\s*IBU|IBU\s*:?\s*(\d+)`)
	slugStrip  = regexp.MustCompile(`[^a-z0-9]+`)
)

// ScraperConfig holds scraper settings.
type ScraperConfig struct {
	URL        string        // Catalog listing page; only its host is ever fetched
	Timeout    time.Duration // Per-attempt request timeout
	MaxRetries int
}

// Scraper fetches and parses the brewery catalog page into beer records.
// Records that fail validation are dropped with a log line; the snapshot is
// built from whatever parses cleanly.
type Scraper struct {
	cfg         ScraperConfig
	allowedHost string
	client      *http.Client
	logger      *zap.Logger
}

// NewScraper creates a scraper restricted to the catalog URL's host.
func NewScraper(cfg ScraperConfig, logger *zap.Logger) (*Scraper, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid catalog URL %q", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Scraper{
		cfg:         cfg,
		allowedHost: parsed.Host,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger.Named("scraper"),
	}, nil
}

var _ Fetcher = (*Scraper)(nil)

// Fetch retrieves the catalog page and parses it into beer records.
// Transient failures are retried with exponential backoff; a page that
// yields zero beers is reported as an error so the store can fall back.
func (s *Scraper) Fetch(ctx context.Context) ([]models.Beer, error) {
	retryCfg := &retry.Config{
		MaxRetries:   s.cfg.MaxRetries,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}

	body, err := retry.DoWithResult(ctx, retryCfg, func() (string, error) {
		return s.get(ctx, s.cfg.URL)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog page: %w", err)
	}

	beers, err := s.parseCatalog(body)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Catalog fetched",
		zap.String("url", s.cfg.URL),
		zap.Int("beers", len(beers)))
	return beers, nil
}

// get performs one HTTP GET, enforcing the allowed-host restriction.
func (s *Scraper) get(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}
	if parsed.Host != s.allowedHost {
		return "", fmt.Errorf("host %q is not allowed, only %q is permitted", parsed.Host, s.allowedHost)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

// parseCatalog extracts beer records from the listing page HTML.
func (s *Scraper) parseCatalog(body string) ([]models.Beer, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse catalog HTML: %w", err)
	}

	elements := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			((n.Data == "div" && hasClass(n, "beer-item")) ||
				(n.Data == "article" && hasClass(n, "product")))
	})

	if len(elements) == 0 {
		s.logger.Warn("No beer elements found with known selectors")
		return nil, fmt.Errorf("no beer entries found in catalog page")
	}

	beers := make([]models.Beer, 0, len(elements))
	seen := make(map[string]bool)
	for idx, el := range elements {
		beer, ok := s.parseBeerElement(el)
		if !ok {
			continue
		}
		if err := beer.Validate(); err != nil {
			// InvalidBeerRecord: drop, log, continue building the snapshot.
			s.logger.Warn("Dropping invalid beer record",
				zap.Int("index", idx),
				zap.Error(err))
			continue
		}
		if seen[beer.ID] {
			s.logger.Warn("Dropping duplicate beer id", zap.String("id", beer.ID))
			continue
		}
		seen[beer.ID] = true
		beers = append(beers, beer)
	}

	return beers, nil
}

// parseBeerElement extracts one beer from a listing element.
func (s *Scraper) parseBeerElement(el *html.Node) (models.Beer, bool) {
	nameNode := findFirst(el, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		switch n.Data {
		case "h2", "h3", "h4":
			return true
		}
		return false
	})
	if nameNode == nil {
		return models.Beer{}, false
	}
	name := strings.TrimSpace(textContent(nameNode))
	if name == "" {
		return models.Beer{}, false
	}

	style := "Unknown"
	if styleNode := findFirst(el, func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			(hasClass(n, "style") || hasClass(n, "beer-style") || hasClass(n, "category"))
	}); styleNode != nil {
		if v := strings.TrimSpace(textContent(styleNode)); v != "" {
			style = v
		}
	}

	text := textContent(el)
	var abv float64
	if m := abvPattern.FindStringSubmatch(text); m != nil {
		abv, _ = strconv.ParseFloat(m[1], 64)
	}

	var ibu *int
	if m := ibuPattern.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.Atoi(raw); err == nil {
			ibu = &v
		}
	}

	description := ""
	if descNode := findFirst(el, func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			(hasClass(n, "description") || hasClass(n, "excerpt") || hasClass(n, "beer-description"))
	}); descNode != nil {
		description = strings.TrimSpace(textContent(descNode))
	} else if p := findFirst(el, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "p"
	}); p != nil {
		description = strings.TrimSpace(textContent(p))
	}

	imageURL := ""
	if img := findFirst(el, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "img"
	}); img != nil {
		src := attrVal(img, "src")
		if src == "" {
			src = attrVal(img, "data-src")
		}
		imageURL = s.resolveURL(src)
	}

	return models.Beer{
		ID:          Slug(name),
		Name:        name,
		Style:       style,
		ABV:         abv,
		IBU:         ibu,
		Description: description,
		ImageURL:    imageURL,
	}, true
}

// resolveURL makes relative image references absolute against the catalog URL.
func (s *Scraper) resolveURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http") {
		return ref
	}
	base, err := url.Parse(s.cfg.URL)
	if err != nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}

// Slug derives a stable beer id from its name, matching ids across fetches.
func Slug(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// findAll returns every node in the tree matching the predicate, skipping
// descendants of matches so nested wrappers don't double-count.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var result []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			result = append(result, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return result
}

// findFirst returns the first matching node in document order, or nil.
func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if match(n) && n != root {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(root)
}

// hasClass reports whether the node's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
