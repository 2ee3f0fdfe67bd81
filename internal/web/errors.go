package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/service"
)

// fail maps a service error onto a response
func (r *Router) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		r.renderError(c, http.StatusNotFound, "Page not found.")
	case errors.Is(err, service.ErrUnauthenticated):
		c.Redirect(http.StatusFound, auth.LoginRedirect(c.Request.URL.RequestURI()))
	case errors.Is(err, service.ErrForbidden):
		r.renderError(c, http.StatusForbidden, "You are not allowed to do that.")
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		r.renderError(c, http.StatusBadRequest, err.Error())
	default:
		r.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		r.renderError(c, http.StatusInternalServerError, "Something went wrong.")
	}
	c.Abort()
}

func (r *Router) renderError(c *gin.Context, status int, message string) {
	r.render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// render adds the current user to data and writes the named template
func (r *Router) render(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, r.context(c, data))
}

func (r *Router) context(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = auth.CurrentUser(c)
	return data
}
