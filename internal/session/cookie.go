package session

import (
	"net/http"
	"time"

	"github.com/xxxsen/vocabnote/internal/pkg/jwt"
)

// CookieStore keeps the session in an HS256 signed cookie. The token's own
// expiry is the hard session lifetime, idle expiry is left to the Gate.
type CookieStore struct {
	name     string
	secret   []byte
	lifetime time.Duration
	secure   bool
}

func NewCookieStore(name string, secret []byte, lifetime time.Duration, secure bool) *CookieStore {
	return &CookieStore{name: name, secret: secret, lifetime: lifetime, secure: secure}
}

// Load returns the session carried by r, nil when absent or unreadable.
func (s *CookieStore) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := jwt.ParseToken(cookie.Value, s.secret)
	if err != nil {
		return nil
	}
	sess := &Session{
		UserID:       claims.UserID,
		LastActivity: time.Unix(claims.LastActivity, 0),
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	return sess
}

func (s *CookieStore) Save(w http.ResponseWriter, sess *Session) error {
	token, err := jwt.GenerateToken(sess.UserID, sess.IssuedAt, sess.LastActivity, s.secret, s.lifetime)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(sess.IssuedAt.Add(s.lifetime)).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
