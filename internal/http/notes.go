package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/database/notes"
	"github.com/easyreads/easyreads/internal/entities"
)

// NotesController handles class notes.
type NotesController struct {
	store NotesStore
}

func NewNotesController(store NotesStore) *NotesController {
	return &NotesController{store: store}
}

type CreateNoteRequest struct {
	CourseID string `json:"course_id" form:"course_id"`
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
}

// Create stores a class note.
// POST /api/notes
func (nc *NotesController) Create(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid note body")
		return
	}

	note := &entities.Note{CourseID: req.CourseID, Title: req.Title, Content: req.Content}
	if err := nc.store.Create(c.Request.Context(), note); err != nil {
		if errors.Is(err, notes.ErrCourseRequired) || errors.Is(err, notes.ErrTitleRequired) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create note")
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListForCourse returns a course's notes.
// GET /api/notes/:course_id
func (nc *NotesController) ListForCourse(c *gin.Context) {
	courseID := c.Param("course_id")

	list, err := nc.store.ListForCourse(c.Request.Context(), courseID)
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}
	if list == nil {
		list = []entities.Note{}
	}
	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "notes": list})
}
