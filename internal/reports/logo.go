package reports

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/avidela/folio/pkg/httputil"
	"github.com/avidela/folio/pkg/logger"
)

const clearbitBaseURL = "https://logo.clearbit.com/%s"

// symbolDomains maps the tickers that show up most in dashboards to their
// issuer's official domain.
var symbolDomains = map[string]string{
	"AAPL":  "apple.com",
	"TSLA":  "tesla.com",
	"MSFT":  "microsoft.com",
	"GOOG":  "google.com",
	"GOOGL": "google.com",
	"AMZN":  "amazon.com",
	"SPOT":  "spotify.com",
	"DIS":   "disney.com",
	"NVDA":  "nvidia.com",
	"META":  "meta.com",
	"JPM":   "jpmorganchase.com",
	"NFLX":  "netflix.com",
	"BRK-B": "berkshirehathaway.com",
	"BAC":   "bankofamerica.com",
	"V":     "visa.com",
	"MA":    "mastercard.com",
	"KO":    "coca-colacompany.com",
	"PEP":   "pepsico.com",
	"XOM":   "exxonmobil.com",
	"CVX":   "chevron.com",
}

// LogoResolver finds a logo URL for a report asset. Strictly best-effort:
// every path returns an empty string rather than an error, and results are
// memoized for the life of the resolver.
type LogoResolver struct {
	http   *httputil.Client
	logger *logger.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewLogoResolver creates a resolver. http may be nil, which disables the
// website-scraping fallback.
func NewLogoResolver(httpClient *httputil.Client, log *logger.Logger) *LogoResolver {
	return &LogoResolver{
		http:   httpClient,
		logger: log.WithField("module", "logos"),
		cache:  make(map[string]string),
	}
}

// Resolve returns a logo URL for the symbol, trying the known-domain table
// first and the issuer website second. Empty string means no logo.
func (l *LogoResolver) Resolve(ctx context.Context, symbol, website string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return ""
	}

	l.mu.Lock()
	if cached, ok := l.cache[symbol]; ok {
		l.mu.Unlock()
		return cached
	}
	l.mu.Unlock()

	logo := l.lookup(ctx, symbol, website)

	l.mu.Lock()
	l.cache[symbol] = logo
	l.mu.Unlock()

	return logo
}

func (l *LogoResolver) lookup(ctx context.Context, symbol, website string) string {
	if domain, ok := symbolDomains[symbol]; ok {
		return fmt.Sprintf(clearbitBaseURL, domain)
	}

	if website == "" {
		return ""
	}

	if scraped := l.scrape(ctx, website); scraped != "" {
		return scraped
	}

	if domain := normalizeDomain(website); domain != "" {
		return fmt.Sprintf(clearbitBaseURL, domain)
	}

	return ""
}

// scrape pulls the issuer homepage and looks for og:image or icon links.
// Any failure just means no logo from this source.
func (l *LogoResolver) scrape(ctx context.Context, website string) string {
	if l.http == nil {
		return ""
	}

	resp, err := l.http.Get(ctx, website)
	if err != nil {
		l.logger.WithError(err).WithField("website", website).Debug("Logo scrape failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && img != "" {
		return absoluteURL(website, img)
	}

	var icon string
	doc.Find(`link[rel="apple-touch-icon"], link[rel="icon"], link[rel="shortcut icon"]`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if href, ok := s.Attr("href"); ok && href != "" {
				icon = href
				return false
			}
			return true
		})

	if icon != "" {
		return absoluteURL(website, icon)
	}
	return ""
}

// normalizeDomain extracts a bare hostname from a website URL.
func normalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}

	return strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
}

func absoluteURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
