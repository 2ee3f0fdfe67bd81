package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/internal/models"
)

// LoginURL is where guests are sent to authenticate
const LoginURL = "/auth/login/"

// HandlerFunc is a handler that always receives a logged-in user
type HandlerFunc func(c *gin.Context, user *models.User)

// Router wraps routes that require a logged-in user. Guests are
// redirected to the login page with the original path in ?next=.
type Router struct {
	Base gin.IRoutes
}

// LoginRedirect builds the login URL that returns to next afterwards
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + url.QueryEscape(next)
}

func (r *Router) exec(c *gin.Context, handler HandlerFunc) {
	user := CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	handler(c, user)
}

// GET registers an authenticated GET route
func (r *Router) GET(path string, handler HandlerFunc) {
	r.Base.GET(path, func(c *gin.Context) {
		r.exec(c, handler)
	})
}

// POST registers an authenticated POST route
func (r *Router) POST(path string, handler HandlerFunc) {
	r.Base.POST(path, func(c *gin.Context) {
		r.exec(c, handler)
	})
}

// SafeNext returns next when it is a local path, otherwise fallback
func SafeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" {
		return fallback
	}
	return next
}
