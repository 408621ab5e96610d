package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/session"
)

const ContextUserIDKey = "user_id"

type SessionStore interface {
	Load(r *http.Request) *session.Session
	Save(w http.ResponseWriter, sess *session.Session) error
	Clear(w http.ResponseWriter)
}

// SessionAuth lets a request through only with an active session. Idle or
// missing sessions are sent to the gate's login path.
func SessionAuth(gate *session.Gate, store SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := gate.Check(store.Load(c.Request))
		if !decision.Proceed {
			if decision.State == session.Expired {
				store.Clear(c.Writer)
				logutil.GetLogger(c.Request.Context()).Info("session expired",
					zap.String("path", c.Request.URL.Path))
			}
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}
		if err := store.Save(c.Writer, decision.Session); err != nil {
			logutil.GetLogger(c.Request.Context()).Error("reissue session failed", zap.Error(err))
		}
		c.Set(ContextUserIDKey, decision.Session.UserID)
		c.Next()
	}
}

// UserID returns the handle stored by SessionAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
