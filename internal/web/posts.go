package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/service"
)

// postForm is the state of the create/edit form
type postForm struct {
	IsEdit  bool
	Text    string
	GroupID string
	Errors  map[string]string
}

// pageNumber reads ?page=; anything unparsable is the first page
func pageNumber(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return n
}

func postID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	return id, err == nil
}

func indexCacheKey(page int) string {
	return cache.HashKey("index", strconv.Itoa(page))
}

// index renders the global feed. Guests share a short-lived cached copy.
func (r *Router) index(c *gin.Context) {
	ctx := c.Request.Context()
	number := pageNumber(c)
	cacheable := auth.CurrentUser(c) == nil && r.cache.Enabled()

	if cacheable {
		body, ok, err := r.cache.Get(ctx, indexCacheKey(number))
		if err != nil {
			r.logger.Warn("Index cache read failed", zap.Error(err))
		} else if ok {
			c.Data(http.StatusOK, htmlContentType, body)
			return
		}
	}

	page, err := r.posts.ListFeed(ctx, number)
	if err != nil {
		r.fail(c, err)
		return
	}
	data := r.context(c, gin.H{"Page": page})

	if !cacheable {
		c.HTML(http.StatusOK, "index.html", data)
		return
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		r.fail(c, err)
		return
	}
	if err := r.cache.Set(ctx, indexCacheKey(number), buf.Bytes(), r.opts.IndexCacheTTL); err != nil {
		r.logger.Warn("Index cache write failed", zap.Error(err))
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

func (r *Router) groupPosts(c *gin.Context) {
	group, page, err := r.posts.ListByGroup(c.Request.Context(), c.Param("slug"), pageNumber(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	r.render(c, http.StatusOK, "group.html", gin.H{
		"Title": group.Title,
		"Group": group,
		"Page":  page,
	})
}

// authorContext fills the author sidebar shared by profile and post pages
func (r *Router) authorContext(c *gin.Context, author *models.User, postCount int64, data gin.H) error {
	ctx := c.Request.Context()
	following, err := r.follows.IsFollowing(ctx, auth.CurrentUser(c), author)
	if err != nil {
		return err
	}
	followers, followingCount, err := r.follows.Counts(ctx, author)
	if err != nil {
		return err
	}
	data["Author"] = author
	data["PostCount"] = postCount
	data["Following"] = following
	data["Followers"] = followers
	data["FollowingCount"] = followingCount
	return nil
}

func (r *Router) profile(c *gin.Context) {
	author, page, err := r.posts.ListByAuthor(c.Request.Context(), c.Param("username"), pageNumber(c))
	if err != nil {
		r.fail(c, err)
		return
	}
	data := gin.H{
		"Title": author.Username,
		"Page":  page,
	}
	if err := r.authorContext(c, author, page.Total, data); err != nil {
		r.fail(c, err)
		return
	}
	r.render(c, http.StatusOK, "profile.html", data)
}

func (r *Router) postView(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		r.fail(c, service.ErrNotFound)
		return
	}
	r.renderPost(c, http.StatusOK, c.Param("username"), id, "", "")
}

// renderPost shows one post with its comments; commentText and commentErr
// refill the comment form after a rejected submission.
func (r *Router) renderPost(c *gin.Context, status int, username string, id uint64, commentText, commentErr string) {
	ctx := c.Request.Context()
	post, count, err := r.posts.Get(ctx, username, id)
	if err != nil {
		r.fail(c, err)
		return
	}
	comments, err := r.comments.ListForPost(ctx, post.ID)
	if err != nil {
		r.fail(c, err)
		return
	}

	data := gin.H{
		"Title":        post.String(),
		"Post":         post,
		"Comments":     comments,
		"CanEdit":      service.CanEdit(auth.CurrentUser(c), post),
		"CommentText":  commentText,
		"CommentError": commentErr,
	}
	if err := r.authorContext(c, post.Author, count, data); err != nil {
		r.fail(c, err)
		return
	}
	r.render(c, status, "post.html", data)
}

func (r *Router) renderPostForm(c *gin.Context, form postForm) {
	groups, err := r.posts.Groups(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	if form.Errors == nil {
		form.Errors = map[string]string{}
	}
	title := "New post"
	if form.IsEdit {
		title = "Edit post"
	}
	r.render(c, http.StatusOK, "post_form.html", gin.H{
		"Title":  title,
		"Form":   form,
		"Groups": groups,
	})
}

// readPostForm binds the multipart form. The returned closer releases the
// uploaded file, if any.
func readPostForm(c *gin.Context) (service.PostInput, postForm, func(), error) {
	form := postForm{
		Text:    c.PostForm("text"),
		GroupID: c.PostForm("group"),
	}
	in := service.PostInput{Text: form.Text}
	closer := func() {}

	if form.GroupID != "" {
		id, err := strconv.ParseUint(form.GroupID, 10, 64)
		if err != nil {
			// id 0 never exists, so the service reports an invalid choice
			id = 0
		}
		in.GroupID = &id
	}

	header, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return in, form, closer, err
	default:
		file, err := header.Open()
		if err != nil {
			return in, form, closer, err
		}
		in.Image = &service.Upload{Filename: header.Filename, Body: file}
		closer = func() { file.Close() }
	}
	return in, form, closer, nil
}

// formErrors turns a validation error into per-field messages
func formErrors(err error) (map[string]string, bool) {
	var se *service.Error
	if !errors.As(err, &se) || !(errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrConflict)) {
		return nil, false
	}
	return map[string]string{se.Field: se.Message}, true
}

func (r *Router) newPostForm(c *gin.Context, user *models.User) {
	r.renderPostForm(c, postForm{})
}

func (r *Router) createPost(c *gin.Context, user *models.User) {
	in, form, closer, err := readPostForm(c)
	defer closer()
	if err != nil {
		r.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := r.posts.Create(ctx, user, in); err != nil {
		if errs, ok := formErrors(err); ok {
			form.Errors = errs
			r.renderPostForm(c, form)
			return
		}
		r.fail(c, err)
		return
	}
	// the new post lands on the first page
	if err := r.cache.Delete(ctx, indexCacheKey(1)); err != nil {
		r.logger.Warn("Index cache invalidation failed", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}

func (r *Router) editPostForm(c *gin.Context, user *models.User) {
	id, ok := postID(c)
	if !ok {
		r.fail(c, service.ErrNotFound)
		return
	}
	username := c.Param("username")
	post, _, err := r.posts.Get(c.Request.Context(), username, id)
	if err != nil {
		r.fail(c, err)
		return
	}
	if !service.CanEdit(user, post) {
		c.Redirect(http.StatusFound, postURL(post))
		return
	}

	form := postForm{IsEdit: true, Text: post.Text}
	if post.GroupID != nil {
		form.GroupID = strconv.FormatUint(*post.GroupID, 10)
	}
	r.renderPostForm(c, form)
}

func (r *Router) editPost(c *gin.Context, user *models.User) {
	id, ok := postID(c)
	if !ok {
		r.fail(c, service.ErrNotFound)
		return
	}
	username := c.Param("username")

	in, form, closer, err := readPostForm(c)
	defer closer()
	if err != nil {
		r.fail(c, err)
		return
	}
	form.IsEdit = true

	post, err := r.posts.Edit(c.Request.Context(), user, username, id, in)
	switch {
	case errors.Is(err, service.ErrForbidden):
		c.Redirect(http.StatusFound, postPath(username, id))
		return
	case err != nil:
		if errs, ok := formErrors(err); ok {
			form.Errors = errs
			r.renderPostForm(c, form)
			return
		}
		r.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post))
}

func (r *Router) addComment(c *gin.Context, user *models.User) {
	id, ok := postID(c)
	if !ok {
		r.fail(c, service.ErrNotFound)
		return
	}
	username := c.Param("username")
	text := c.PostForm("text")

	if _, err := r.comments.Add(c.Request.Context(), user, username, id, text); err != nil {
		if errs, ok := formErrors(err); ok {
			r.renderPost(c, http.StatusOK, username, id, text, errs["text"])
			return
		}
		r.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postPath(username, id))
}
