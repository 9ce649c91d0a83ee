package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/reader"
)

// AnnotationsController serves the annotation JSON endpoints.
type AnnotationsController struct {
	annotations AnnotationWriter
}

func NewAnnotationsController(annotations AnnotationWriter) *AnnotationsController {
	return &AnnotationsController{annotations: annotations}
}

// CreateAnnotationRequest is the body of POST /api/annotations. Offsets are
// character positions in the page content; end is exclusive.
type CreateAnnotationRequest struct {
	BookID     uint `json:"book_id" form:"book_id" binding:"required"`
	PageNumber int  `json:"page_number" form:"page_number" binding:"required"`
	StartIndex *int `json:"start_index" form:"start_index" binding:"required"`
	EndIndex   *int `json:"end_index" form:"end_index" binding:"required"`
}

// Create stores a highlight for the current user.
// POST /api/annotations
func (ac *AnnotationsController) Create(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	var req CreateAnnotationRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "book_id, page_number, start_index and end_index are required")
		return
	}

	annotation, err := ac.annotations.CreateAnnotation(c.Request.Context(), reader.AnnotationInput{
		Username:   username,
		BookID:     req.BookID,
		PageNumber: req.PageNumber,
		StartIndex: *req.StartIndex,
		EndIndex:   *req.EndIndex,
	})
	if err != nil {
		respondReaderError(c, err, "create annotation")
		return
	}

	c.JSON(http.StatusCreated, annotation)
}

// Get returns one annotation with its owner.
// GET /api/annotations/:id
func (ac *AnnotationsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	row, err := ac.annotations.GetAnnotation(c.Request.Context(), id)
	if err != nil {
		respondReaderError(c, err, "get annotation")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes an annotation and its comments. Only the creator may.
// DELETE /api/annotations/:id
func (ac *AnnotationsController) Delete(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.annotations.DeleteAnnotation(c.Request.Context(), id, username); err != nil {
		respondReaderError(c, err, "delete annotation")
		return
	}
	c.Status(http.StatusNoContent)
}
