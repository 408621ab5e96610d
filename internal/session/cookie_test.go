package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStore_RoundTrip(t *testing.T) {
	store := NewCookieStore("vocab_session", []byte("secret"), time.Hour, true)
	now := time.Now().Truncate(time.Second)
	sess := &Session{UserID: "alice", IssuedAt: now, LastActivity: now}

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "vocab_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	got := store.Load(req)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, now.Unix(), got.LastActivity.Unix())
	assert.Equal(t, now.Unix(), got.IssuedAt.Unix())
}

func TestCookieStore_LoadRejects(t *testing.T) {
	store := NewCookieStore("vocab_session", []byte("secret"), time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, store.Load(req))

	req.AddCookie(&http.Cookie{Name: "vocab_session", Value: "garbage"})
	assert.Nil(t, store.Load(req))

	other := NewCookieStore("vocab_session", []byte("other"), time.Hour, false)
	rec := httptest.NewRecorder()
	now := time.Now()
	require.NoError(t, other.Save(rec, &Session{UserID: "mallory", IssuedAt: now, LastActivity: now}))
	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(rec.Result().Cookies()[0])
	assert.Nil(t, store.Load(forged))
}

func TestCookieStore_Clear(t *testing.T) {
	store := NewCookieStore("vocab_session", []byte("secret"), time.Hour, false)
	rec := httptest.NewRecorder()
	store.Clear(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
