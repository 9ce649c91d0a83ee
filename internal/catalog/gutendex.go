// Package catalog talks to the public book catalog: Gutendex for search and
// metadata, and the Project Gutenberg mirror for plain-text book bodies.
//
// Failures reaching the source surface as ErrUnavailable; lookups that the
// source answers with an empty result surface as ErrBookNotFound.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const userAgent = "easyreads/1.0 (+https://github.com/easyreads/easyreads)"

var (
	ErrUnavailable  = errors.New("catalog unavailable")
	ErrBookNotFound = errors.New("book not found in catalog")
	ErrTextTooLarge = errors.New("book text exceeds size limit")
)

// Person is an author or translator as reported by Gutendex.
type Person struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// Book is a catalog entry.
type Book struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	Authors       []Person          `json:"authors"`
	Subjects      []string          `json:"subjects"`
	Languages     []string          `json:"languages"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int               `json:"download_count"`
}

// AuthorNames returns the author names joined for display.
func (b Book) AuthorNames() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, "; ")
}

type searchResponse struct {
	Count   int    `json:"count"`
	Next    string `json:"next"`
	Results []Book `json:"results"`
}

// Config controls the catalog client.
type Config struct {
	BaseURL         string
	TextURLTemplate string // fmt template, receives the book id twice
	Timeout         time.Duration
	RequestInterval time.Duration
	MaxTextBytes    int64
}

// Client fetches metadata and book text from the catalog.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	textURLTemplate string
	maxTextBytes    int64
	rateLimiter     *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

// wait blocks until the interval since the previous call has elapsed or ctx is done.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if since := time.Since(r.lastCall); since < r.interval {
		timer := time.NewTimer(r.interval - since)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.lastCall = time.Now()
	return nil
}

// NewClient creates a catalog client. Zero values fall back to the public endpoints.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://gutendex.com"
	}
	if cfg.TextURLTemplate == "" {
		cfg.TextURLTemplate = "https://www.gutenberg.org/cache/epub/%d/pg%d.txt"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = 32 << 20
	}

	return &Client{
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		textURLTemplate: cfg.TextURLTemplate,
		maxTextBytes:    cfg.MaxTextBytes,
		rateLimiter:     newRateLimiter(cfg.RequestInterval),
	}
}

// Search returns the first page of catalog results for a free-text query.
// An empty query returns the catalog's default listing.
func (c *Client) Search(ctx context.Context, query string) ([]Book, error) {
	searchURL := c.baseURL + "/books/"
	if q := strings.TrimSpace(query); q != "" {
		searchURL += "?search=" + url.QueryEscape(q)
	}

	var result searchResponse
	if err := c.getJSON(ctx, searchURL, &result); err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	if result.Results == nil {
		result.Results = []Book{}
	}
	return result.Results, nil
}

// GetBook looks up a single book by its catalog id.
func (c *Client) GetBook(ctx context.Context, id uint) (*Book, error) {
	lookupURL := fmt.Sprintf("%s/books/?ids=%s", c.baseURL, strconv.FormatUint(uint64(id), 10))

	var result searchResponse
	if err := c.getJSON(ctx, lookupURL, &result); err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}

	for i := range result.Results {
		if result.Results[i].ID == id {
			return &result.Results[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrBookNotFound, id)
}

// FetchText downloads the plain-text body of a book.
func (c *Client) FetchText(ctx context.Context, id uint) (string, error) {
	textURL := fmt.Sprintf(c.textURLTemplate, id, id)

	resp, err := c.do(ctx, textURL)
	if err != nil {
		return "", fmt.Errorf("fetch text for book %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: no text for %d", ErrBookNotFound, id)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: text status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxTextBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read text: %v", ErrUnavailable, err)
	}
	if int64(len(body)) > c.maxTextBytes {
		return "", fmt.Errorf("%w: book %d", ErrTextTooLarge, id)
	}

	// Gutenberg files usually start with a UTF-8 byte order mark.
	return strings.TrimPrefix(string(body), "\ufeff"), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}
