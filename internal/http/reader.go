package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/database/annotations"
)

// ReaderController serves books and pages, importing books on first access.
type ReaderController struct {
	reader PageReader
}

// NewReaderController creates a reader controller.
func NewReaderController(reader PageReader) *ReaderController {
	return &ReaderController{reader: reader}
}

// OpenBook imports the book on first visit and sends the reader to page 1.
// GET /books/:id
func (rc *ReaderController) OpenBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := rc.reader.EnsureBookImported(c.Request.Context(), id); err != nil {
		renderReaderError(c, err, "open book")
		return
	}
	c.Redirect(http.StatusFound, pagePath(id, 1))
}

// ReaderPage renders one page with its highlights and the book's annotations.
// GET /books/:id/pages/:page
func (rc *ReaderController) ReaderPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, ok := parsePageParam(c)
	if !ok {
		return
	}
	if page < 1 {
		c.Redirect(http.StatusFound, pagePath(id, 1))
		return
	}

	view, err := rc.reader.PageView(c.Request.Context(), id, page)
	if err != nil {
		renderReaderError(c, err, "reader page")
		return
	}

	c.HTML(http.StatusOK, "reader", gin.H{
		"Auth": GetAuthTemplateData(c),
		"View": view,
	})
}

// GetBook returns an imported book's metadata.
// GET /api/books/:id
func (rc *ReaderController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := rc.reader.GetBook(c.Request.Context(), id)
	if err != nil {
		respondReaderError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetPage returns the page view as JSON, importing the book if needed.
// GET /api/books/:id/pages/:page
func (rc *ReaderController) GetPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, ok := parsePageParam(c)
	if !ok {
		return
	}

	view, err := rc.reader.PageView(c.Request.Context(), id, page)
	if err != nil {
		respondReaderError(c, err, "get page")
		return
	}
	c.JSON(http.StatusOK, view)
}

// PageAnnotations lists the annotations anchored to one page.
// GET /api/books/:id/pages/:page/annotations
func (rc *ReaderController) PageAnnotations(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, ok := parsePageParam(c)
	if !ok {
		return
	}

	rows, err := rc.reader.ListAnnotationsForPage(c.Request.Context(), id, page)
	if err != nil {
		respondReaderError(c, err, "list page annotations")
		return
	}
	if rows == nil {
		rows = []annotations.Row{}
	}
	c.JSON(http.StatusOK, gin.H{"annotations": rows})
}

func pagePath(bookID uint, page int) string {
	return fmt.Sprintf("/books/%d/pages/%d", bookID, page)
}
