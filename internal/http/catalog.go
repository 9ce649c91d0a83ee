package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/catalog"
)

// CatalogController serves catalog search as a page and as JSON.
type CatalogController struct {
	catalog CatalogSearcher
}

func NewCatalogController(catalog CatalogSearcher) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// SearchPage renders catalog results.
// GET /books?search=
func (cc *CatalogController) SearchPage(c *gin.Context) {
	query := strings.TrimSpace(c.Query("search"))

	books, err := cc.catalog.SearchCatalog(c.Request.Context(), query)
	if err != nil {
		renderReaderError(c, err, "search catalog")
		return
	}

	c.HTML(http.StatusOK, "books", gin.H{
		"Auth":  GetAuthTemplateData(c),
		"Query": query,
		"Books": books,
	})
}

// Search returns catalog results as JSON.
// GET /api/catalog?search=
func (cc *CatalogController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("search"))

	books, err := cc.catalog.SearchCatalog(c.Request.Context(), query)
	if err != nil {
		respondReaderError(c, err, "search catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"books": catalogResults(books),
	})
}

type catalogResult struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	Authors       string   `json:"authors"`
	Languages     []string `json:"languages"`
	DownloadCount int      `json:"download_count"`
}

func catalogResults(books []catalog.Book) []catalogResult {
	results := make([]catalogResult, 0, len(books))
	for _, b := range books {
		results = append(results, catalogResult{
			ID:            b.ID,
			Title:         b.Title,
			Authors:       b.AuthorNames(),
			Languages:     b.Languages,
			DownloadCount: b.DownloadCount,
		})
	}
	return results
}
