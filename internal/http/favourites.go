package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easyreads/easyreads/internal/entities"
)

// FavouritesController manages the current user's favourite books.
type FavouritesController struct {
	favourites FavouriteService
}

func NewFavouritesController(favourites FavouriteService) *FavouritesController {
	return &FavouritesController{favourites: favourites}
}

// AddFavourite marks a book as favourite for the current user.
// Adding the same book twice is not an error.
// POST /api/books/:id/favourite
func (fc *FavouritesController) AddFavourite(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	favourite, err := fc.favourites.AddFavourite(c.Request.Context(), username, id)
	if err != nil {
		respondReaderError(c, err, "add favourite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "favourite added", "favourite": favourite})
}

// RemoveFavourite unmarks a book.
// DELETE /api/books/:id/favourite
func (fc *FavouritesController) RemoveFavourite(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.favourites.RemoveFavourite(c.Request.Context(), username, id); err != nil {
		respondReaderError(c, err, "remove favourite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "favourite removed"})
}

// ListFavourites returns the current user's favourite books.
// GET /api/favourites
func (fc *FavouritesController) ListFavourites(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	favourites, err := fc.favourites.ListFavourites(c.Request.Context(), username)
	if err != nil {
		respondReaderError(c, err, "list favourites")
		return
	}
	if favourites == nil {
		favourites = []entities.FavoriteBook{}
	}

	c.JSON(http.StatusOK, gin.H{"favourites": favourites, "total": len(favourites)})
}
