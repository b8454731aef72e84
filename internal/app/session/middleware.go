package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "greengrove_session"

	workspaceKey = "workspace_id"
	contextKey   = "workspace"
)

// Middleware attaches the caller's workspace to the gin context, creating
// one when the session has none or it has expired. It must run after
// sessions.Sessions.
func Middleware(reg *Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		id, _ := s.Get(workspaceKey).(string)

		ws, ok := reg.Get(id)
		if !ok {
			ws = reg.Create()
			s.Set(workspaceKey, ws.ID)
			if err := s.Save(); err != nil {
				logger.Error("Failed to save session", zap.Error(err))
			}
		}
		c.Set(contextKey, ws)
		c.Next()
	}
}

// FromContext returns the workspace attached by Middleware.
func FromContext(c *gin.Context) (*Workspace, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	ws, ok := v.(*Workspace)
	return ws, ok
}

// WithWorkspace attaches ws to c directly.
func WithWorkspace(c *gin.Context, ws *Workspace) {
	c.Set(contextKey, ws)
}
