package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/entities"
)

// maxBatchAnnotations bounds POST /api/comments/batch.
const maxBatchAnnotations = 500

// CommentsController serves comment endpoints for annotations.
type CommentsController struct {
	comments CommentService
}

func NewCommentsController(comments CommentService) *CommentsController {
	return &CommentsController{comments: comments}
}

type CreateCommentRequest struct {
	Comment string `json:"comment" form:"comment"`
}

// Create adds a comment to an annotation.
// POST /api/annotations/:id/comments
func (cc *CommentsController) Create(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid comment body")
		return
	}

	comment, err := cc.comments.CreateComment(c.Request.Context(), id, username, req.Comment)
	if err != nil {
		respondReaderError(c, err, "create comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// List returns an annotation's comments, oldest first.
// GET /api/annotations/:id/comments
func (cc *CommentsController) List(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := cc.comments.ListComments(c.Request.Context(), id)
	if err != nil {
		respondReaderError(c, err, "list comments")
		return
	}
	if comments == nil {
		comments = []entities.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type BatchCommentsRequest struct {
	AnnotationIDs []uint `json:"annotation_ids"`
}

// Batch returns comments for several annotations keyed by annotation id.
// POST /api/comments/batch
func (cc *CommentsController) Batch(c *gin.Context) {
	var req BatchCommentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "annotation_ids must be a list of ids")
		return
	}
	if len(req.AnnotationIDs) > maxBatchAnnotations {
		respondBadRequest(c, "too many annotation_ids")
		return
	}

	byAnnotation, err := cc.comments.ListCommentsForAnnotations(c.Request.Context(), req.AnnotationIDs)
	if err != nil {
		respondReaderError(c, err, "batch comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": byAnnotation})
}
