package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/internal/models"
)

func (r *Router) followIndex(c *gin.Context, user *models.User) {
	page, err := r.follows.Feed(c.Request.Context(), user, pageNumber(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	r.render(c, http.StatusOK, "follow.html", gin.H{
		"Title": "Following",
		"Page":  page,
	})
}

func (r *Router) followAuthor(c *gin.Context, user *models.User) {
	username := c.Param("username")
	if err := r.follows.Follow(c.Request.Context(), user, username); err != nil {
		r.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(username))
}

func (r *Router) unfollowAuthor(c *gin.Context, user *models.User) {
	username := c.Param("username")
	if err := r.follows.Unfollow(c.Request.Context(), user, username); err != nil {
		r.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(username))
}
