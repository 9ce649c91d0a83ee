package http

import (
	"context"
	"fmt"
	nethttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyreads/easyreads/internal/catalog"
	"github.com/easyreads/easyreads/internal/reader"
)

type fakeSearcher struct {
	books []catalog.Book
	err   error
	query string
}

func (f *fakeSearcher) SearchCatalog(ctx context.Context, query string) ([]catalog.Book, error) {
	f.query = query
	return f.books, f.err
}

func TestCatalogSearch_JSON(t *testing.T) {
	searcher := &fakeSearcher{books: []catalog.Book{{
		ID:      2701,
		Title:   "Moby Dick; Or, The Whale",
		Authors: []catalog.Person{{Name: "Melville, Herman"}},
	}}}
	router := newTestEngine(t, "alice")
	router.GET("/api/catalog", NewCatalogController(searcher).Search)

	w := doRequest(t, router, nethttp.MethodGet, "/api/catalog?search=+moby+", "", nil)

	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "moby", searcher.query)
	var resp struct {
		Query string          `json:"query"`
		Books []catalogResult `json:"books"`
	}
	decodeJSON(t, w, &resp)
	require.Len(t, resp.Books, 1)
	assert.Equal(t, uint(2701), resp.Books[0].ID)
	assert.Equal(t, "Melville, Herman", resp.Books[0].Authors)
}

func TestCatalogSearch_SourceUnavailable(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("%w: catalog down", reader.ErrSourceUnavailable)}
	router := newTestEngine(t, "alice")
	controller := NewCatalogController(searcher)
	router.GET("/api/catalog", controller.Search)
	router.GET("/books", controller.SearchPage)

	w := doRequest(t, router, nethttp.MethodGet, "/api/catalog", "", nil)
	assert.Equal(t, nethttp.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "source_unavailable")

	w = doRequest(t, router, nethttp.MethodGet, "/books", "", nil)
	assert.Equal(t, nethttp.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "catalog down")
}

func TestCatalogSearchPage(t *testing.T) {
	searcher := &fakeSearcher{books: []catalog.Book{{ID: 84, Title: "Frankenstein"}}}
	router := newTestEngine(t, "alice")
	router.GET("/books", NewCatalogController(searcher).SearchPage)

	w := doRequest(t, router, nethttp.MethodGet, "/books?search=frank", "", nil)

	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `href="/books/84"`)
	assert.Contains(t, w.Body.String(), "Add to favourites")

	searcher.books = []catalog.Book{}
	w = doRequest(t, router, nethttp.MethodGet, "/books?search=nothing", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No books found.")
}
