package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
)

const (
	userIDKey  = "uid"
	contextKey = "yatube.user"
)

// Session wraps the request's cookie session
type Session struct {
	sessions.Session
}

// LoadSession returns the session of the current request
func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

// LoginUser binds user to the session
func (s *Session) LoginUser(user *models.User) error {
	s.Clear()
	s.Set(userIDKey, user.ID)
	return s.Save()
}

// LogoutUser drops the session and expires its cookie
func (s *Session) LogoutUser() error {
	s.Delete(userIDKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}

// UserID returns the logged-in user id, or 0
func (s *Session) UserID() uint64 {
	id, _ := s.Get(userIDKey).(uint64)
	return id
}

// Middleware resolves the session user once per request; handlers read it
// back with CurrentUser.
func Middleware(repo *db.Repository) gin.HandlerFunc {
	users := db.NewUserRepository(repo)
	logger := logging.WithComponent("auth")
	return func(c *gin.Context) {
		session := LoadSession(c)
		if id := session.UserID(); id != 0 {
			user, err := users.GetByID(c.Request.Context(), id)
			if err != nil {
				logger.Error("Failed to load session user", zap.Uint64("user_id", id), zap.Error(err))
			}
			if user != nil {
				c.Set(contextKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for guests
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
