package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/internal/auth"
)

type accountForm struct {
	Username string
	Errors   map[string]string
}

func (r *Router) signupForm(c *gin.Context) {
	r.render(c, http.StatusOK, "signup.html", gin.H{
		"Title": "Sign up",
		"Form":  accountForm{},
	})
}

func (r *Router) signup(c *gin.Context) {
	form := accountForm{Username: c.PostForm("username")}
	user, err := r.accounts.Register(c.Request.Context(), form.Username, c.PostForm("password1"), c.PostForm("password2"))
	if err != nil {
		errs, ok := formErrors(err)
		if !ok {
			r.fail(c, err)
			return
		}
		form.Errors = errs
		r.render(c, http.StatusOK, "signup.html", gin.H{
			"Title": "Sign up",
			"Form":  form,
		})
		return
	}

	if err := auth.LoadSession(c).LoginUser(user); err != nil {
		r.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (r *Router) loginForm(c *gin.Context) {
	r.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Next":  c.Query("next"),
		"Form":  accountForm{},
	})
}

func (r *Router) login(c *gin.Context) {
	form := accountForm{Username: c.PostForm("username")}
	next := c.PostForm("next")

	user, err := r.accounts.Authenticate(c.Request.Context(), form.Username, c.PostForm("password"))
	if err != nil {
		errs, ok := formErrors(err)
		if !ok {
			r.fail(c, err)
			return
		}
		form.Errors = errs
		r.render(c, http.StatusOK, "login.html", gin.H{
			"Title": "Log in",
			"Next":  next,
			"Form":  form,
		})
		return
	}

	if err := auth.LoadSession(c).LoginUser(user); err != nil {
		r.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, auth.SafeNext(next, "/"))
}

func (r *Router) logout(c *gin.Context) {
	if err := auth.LoadSession(c).LogoutUser(); err != nil {
		r.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
