package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProfileController renders the current user's profile.
type ProfileController struct {
	profiles ProfileReader
}

func NewProfileController(profiles ProfileReader) *ProfileController {
	return &ProfileController{profiles: profiles}
}

// ProfilePage renders the user's favourites and annotations.
// GET /profile
func (pc *ProfileController) ProfilePage(c *gin.Context) {
	username := GetAuthTemplateData(c).Username
	if username == "" {
		c.Redirect(http.StatusFound, "/login?next=/profile")
		return
	}

	profile, err := pc.profiles.ProfileView(c.Request.Context(), username)
	if err != nil {
		renderReaderError(c, err, "profile page")
		return
	}

	c.HTML(http.StatusOK, "profile", gin.H{
		"Auth":    GetAuthTemplateData(c),
		"Profile": profile,
	})
}

// Profile returns the profile view as JSON.
// GET /api/profile
func (pc *ProfileController) Profile(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	profile, err := pc.profiles.ProfileView(c.Request.Context(), username)
	if err != nil {
		respondReaderError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
