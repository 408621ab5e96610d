// Package session decides whether a request may reach a protected
// operation. The decision is independent of any web framework: callers
// supply the session they found and get back proceed or redirect.
package session

import "time"

type State int

const (
	Anonymous State = iota
	Active
	Expired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return "anonymous"
	}
}

type Session struct {
	UserID       string
	IssuedAt     time.Time
	LastActivity time.Time
}

type Decision struct {
	State    State
	Proceed  bool
	Redirect string
	// Session is the refreshed session to persist when Proceed is set.
	Session *Session
}

type Gate struct {
	timeout   time.Duration
	loginPath string
	now       func() time.Time
}

// NewGate builds a gate that expires sessions idle for longer than timeout
// and sends anonymous callers to loginPath. A nil now uses time.Now.
func NewGate(timeout time.Duration, loginPath string, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{timeout: timeout, loginPath: loginPath, now: now}
}

// Start opens an active session for userID, used after login or
// registration.
func (g *Gate) Start(userID string) *Session {
	now := g.now()
	return &Session{UserID: userID, IssuedAt: now, LastActivity: now}
}

func (g *Gate) Check(sess *Session) Decision {
	if sess == nil || sess.UserID == "" {
		return Decision{State: Anonymous, Redirect: g.loginPath}
	}
	now := g.now()
	if now.Sub(sess.LastActivity) > g.timeout {
		return Decision{State: Expired, Redirect: g.loginPath}
	}
	refreshed := *sess
	refreshed.LastActivity = now
	return Decision{State: Active, Proceed: true, Session: &refreshed}
}

func (g *Gate) LoginPath() string {
	return g.loginPath
}
