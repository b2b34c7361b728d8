package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxCatalogBytes caps how much page text is kept from a single catalog page.
const maxCatalogBytes = 200000

// Fetcher reads catalog pages over HTTP, or through a headless browser when
// the page builds its product list with scripts.
type Fetcher struct {
	UserAgent string
	RenderJS  bool
	Client    *http.Client
}

func NewFetcher(opts Options) *Fetcher {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Fetcher{
		UserAgent: ua,
		RenderJS:  opts.RenderJS,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads rawURL and returns its readable, sanitized text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if f.RenderJS {
		html, err := f.render(ctx, rawURL)
		if err != nil {
			return "", err
		}
		return ExtractHTML(strings.NewReader(html), rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch catalog: status code %d", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "text/plain") || strings.HasPrefix(ct, "text/markdown") {
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes+1))
		if err != nil {
			return "", fmt.Errorf("reading catalog body: %w", err)
		}
		return truncateCatalog(string(data)), nil
	}

	return ExtractHTML(resp.Body, rawURL)
}

func (f *Fetcher) render(ctx context.Context, rawURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.UserAgent(f.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, 60*time.Second)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", rawURL, err)
	}
	return html, nil
}

// ExtractHTML pulls the main content out of an HTML page and strips any
// remaining markup.
func ExtractHTML(r io.Reader, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	article, err := readability.FromReader(r, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	p := bluemonday.StrictPolicy()
	text := strings.TrimSpace(p.Sanitize(article.TextContent))

	var out strings.Builder
	if article.Title != "" {
		out.WriteString(article.Title)
		out.WriteString("\n\n")
	}
	out.WriteString(text)

	return truncateCatalog(out.String()), nil
}

// truncateCatalog cuts s to at most maxCatalogBytes, at the last paragraph
// break when one falls in the second half, otherwise at a rune boundary.
func truncateCatalog(s string) string {
	if len(s) <= maxCatalogBytes {
		return s
	}
	n := maxCatalogBytes
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	s = s[:n]
	if i := strings.LastIndex(s, "\n\n"); i > maxCatalogBytes/2 {
		s = s[:i]
	}
	return s
}
