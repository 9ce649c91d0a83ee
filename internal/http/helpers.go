package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/reader"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "validation"})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs the error and sends a 500. The error itself is
// not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s) [request %s]: %v", context, GetRequestID(c), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// readerErrorStatus maps reader errors to an HTTP status and error code.
func readerErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, reader.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, reader.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, reader.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, reader.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, "source_unavailable"
	case errors.Is(err, reader.ErrImportFailure):
		return http.StatusBadGateway, "import_failure"
	default:
		return http.StatusInternalServerError, ""
	}
}

// respondReaderError sends the JSON error for a reader operation failure.
// Unclassified errors are logged and hidden.
func respondReaderError(c *gin.Context, err error, context string) {
	status, code := readerErrorStatus(err)
	if status == http.StatusInternalServerError {
		respondInternalError(c, err, context)
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// renderReaderError is respondReaderError for HTML pages.
func renderReaderError(c *gin.Context, err error, context string) {
	status, _ := readerErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Internal error (%s) [request %s]: %v", context, GetRequestID(c), err)
		message = "Something went wrong. Please try again."
	}
	c.HTML(status, "error", gin.H{
		"Auth":    GetAuthTemplateData(c),
		"Status":  status,
		"Message": message,
	})
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive ID from URL parameters, responding with
// 400 when it is malformed.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePageParam extracts the page number. Range checks against the book
// are left to the reader.
func parsePageParam(c *gin.Context) (int, bool) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		respondBadRequest(c, "invalid page")
		return 0, false
	}
	return page, true
}
