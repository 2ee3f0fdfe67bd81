package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/yatube/yatube/internal/media"
	"github.com/yatube/yatube/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const htmlContentType = "text/html; charset=utf-8"

func parseTemplates(store media.Store) (*template.Template, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("2 January 2006 15:04")
		},
		"mediaURL": func(key string) string {
			if store == nil {
				return ""
			}
			return store.URL(key)
		},
		"postURL": postURL,
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func postURL(post *models.Post) string {
	username := ""
	if post.Author != nil {
		username = post.Author.Username
	}
	return postPath(username, post.ID)
}

func postPath(username string, id uint64) string {
	return fmt.Sprintf("/%s/%d/", username, id)
}

func profileURL(username string) string {
	return "/" + username + "/"
}
