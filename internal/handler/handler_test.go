package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/vocabnote/internal/config"
	"github.com/xxxsen/vocabnote/internal/feishu"
	"github.com/xxxsen/vocabnote/internal/handler"
	"github.com/xxxsen/vocabnote/internal/middleware"
	"github.com/xxxsen/vocabnote/internal/model"
	"github.com/xxxsen/vocabnote/internal/pkg/errcode"
	appErr "github.com/xxxsen/vocabnote/internal/pkg/errors"
	"github.com/xxxsen/vocabnote/internal/service"
	"github.com/xxxsen/vocabnote/internal/session"
)

var fields = config.FieldsConfig{
	InputWord:   "生词或书目",
	Title:       "标题",
	Sentence:    "这是什么.输出结果",
	Content:     "生活化案例",
	Comment:     "记忆方法",
	Domain:      "学科领域",
	Position:    "产业链位置",
	Reference:   "参考资料",
	CreatedTime: "生成时间",
	Owner:       "填写代号",
	SourceURL:   "相关链接",
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memUsers) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; ok {
		return appErr.ErrConflict
	}
	m.users[user.UserID] = user
	return nil
}

func (m *memUsers) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, appErr.ErrNotFound
}

type memTable struct {
	mu      sync.Mutex
	records []feishu.RawRecord
	created []map[string]interface{}
}

func (m *memTable) FetchRecords(ctx context.Context, filterUserID string) []feishu.RawRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []feishu.RawRecord{}
	for _, r := range m.records {
		if filterUserID == "" || r.Fields[fields.Owner].String() == filterUserID {
			out = append(out, r)
		}
	}
	return out
}

func (m *memTable) CreateRecord(ctx context.Context, f map[string]interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, f)
	return "rec_created", nil
}

type testEnv struct {
	router http.Handler
	table  *memTable
}

type envOptions struct {
	strictNotFound bool
	allowRegister  bool
	loginRateLimit time.Duration
}

func setupRouter(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table := &memTable{records: []feishu.RawRecord{
		{RecordID: "rec_a", Fields: map[string]feishu.FieldValue{
			fields.Owner:       feishu.PlainText("alice"),
			fields.Title:       feishu.PlainText("Entropy"),
			fields.Sentence:    feishu.ParseText(`[{"text":"a measure\nof disorder"}]`),
			fields.CreatedTime: feishu.PlainText("1700000000000"),
		}},
		{RecordID: "rec_b", Fields: map[string]feishu.FieldValue{
			fields.Owner:       feishu.PlainText("bob"),
			fields.Title:       feishu.PlainText("Moat"),
			fields.CreatedTime: feishu.PlainText("1700000001000"),
		}},
	}}
	gate := session.NewGate(30*time.Minute, "/login", nil)
	store := session.NewCookieStore("vocab_session", []byte("test-secret"), 72*time.Hour, false)
	authService := service.NewAuthService(&memUsers{users: map[string]*model.User{}}, opts.allowRegister)
	wordService := service.NewWordService(table, table, fields, true)

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authService, gate, store),
		Words:          handler.NewWordHandler(wordService, "/", opts.strictNotFound),
		Properties:     handler.NewPropertiesHandler(config.Properties{EnableUserRegister: opts.allowRegister}, "/login"),
		Health:         handler.NewHealthHandler("test"),
		Metrics:        promhttp.Handler(),
		Gate:           gate,
		Sessions:       store,
		LoginRateLimit: opts.loginRateLimit,
	}
	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return &testEnv{router: engine, table: table}
}

func (e *testEnv) do(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func sessionCookie(t *testing.T, resp *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range resp.Result().Cookies() {
		if c.Name == "vocab_session" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func credentials(userID, password string) map[string]string {
	return map[string]string{"user_id": userID, "password": password}
}

func TestAuthHandlers_RegisterLoginLogout(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})

	resp := env.do(http.MethodPost, "/api/v1/auth/register", credentials("alice", "secret1"))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "alice")
	sessionCookie(t, resp)

	resp = env.do(http.MethodPost, "/api/v1/auth/login", credentials("alice", "secret1"))
	require.Equal(t, http.StatusOK, resp.Code)
	cookie := sessionCookie(t, resp)

	resp = env.do(http.MethodGet, "/api/v1/words", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(http.MethodPost, "/api/v1/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	cleared := resp.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
}

func TestAuthHandlers_DuplicateHandle(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/auth/register", credentials("alice", "secret1")).Code)

	resp := env.do(http.MethodPost, "/api/v1/auth/register", credentials("alice", "other-pass"))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), strconv.Itoa(errcode.ErrDuplicateHandle))
	assert.Empty(t, resp.Result().Cookies())
}

func TestAuthHandlers_WrongPassword(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/auth/register", credentials("alice", "secret1")).Code)

	resp := env.do(http.MethodPost, "/api/v1/auth/login", credentials("alice", "nope-nope"))
	assert.Contains(t, resp.Body.String(), strconv.Itoa(errcode.ErrInvalidCredentials))
	assert.Empty(t, resp.Result().Cookies())
}

func TestAuthHandlers_InvalidHandle(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})
	for _, handle := range []string{"ab", "has space", "emoji🙂", "waytoolong_waytoolong_waytoolong_"} {
		resp := env.do(http.MethodPost, "/api/v1/auth/register", credentials(handle, "secret1"))
		assert.Equal(t, http.StatusBadRequest, resp.Code, handle)
	}
	resp := env.do(http.MethodPost, "/api/v1/auth/register", credentials("a.b-c_d", "12345"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAuthHandlers_RegistrationClosed(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: false})
	resp := env.do(http.MethodPost, "/api/v1/auth/register", credentials("alice", "secret1"))
	assert.Contains(t, resp.Body.String(), strconv.Itoa(errcode.ErrForbidden))
}

func TestAuthHandlers_LoginRateLimit(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true, loginRateLimit: time.Minute})
	env.do(http.MethodPost, "/api/v1/auth/login", credentials("alice", "secret1"))
	resp := env.do(http.MethodPost, "/api/v1/auth/login", credentials("alice", "secret1"))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func login(t *testing.T, env *testEnv, userID string) *http.Cookie {
	t.Helper()
	resp := env.do(http.MethodPost, "/api/v1/auth/register", credentials(userID, "secret1"))
	require.Equal(t, http.StatusOK, resp.Code)
	return sessionCookie(t, resp)
}

func TestWordHandlers_RequireSession(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})
	for _, path := range []string{"/api/v1/words", "/api/v1/words/rec_a"} {
		resp := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, resp.Code, path)
		assert.Equal(t, "/login", resp.Header().Get("Location"))
	}
	resp := env.do(http.MethodPost, "/api/v1/words", map[string]string{"word": "x"})
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Empty(t, env.table.created)
}

func TestWordHandlers_ListIsScopedToOwner(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})
	cookie := login(t, env, "alice")

	resp := env.do(http.MethodGet, "/api/v1/words", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "rec_a")
	assert.Contains(t, body, "a measure of disorder")
	assert.NotContains(t, body, "rec_b")
}

func TestWordHandlers_Detail(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})
	cookie := login(t, env, "alice")

	resp := env.do(http.MethodGet, "/api/v1/words/rec_a", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Entropy")

	// another owner's record is not visible
	resp = env.do(http.MethodGet, "/api/v1/words/rec_b", nil, cookie)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))
}

func TestWordHandlers_DetailStrictNotFound(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true, strictNotFound: true})
	cookie := login(t, env, "alice")
	resp := env.do(http.MethodGet, "/api/v1/words/missing", nil, cookie)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWordHandlers_Submit(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})
	cookie := login(t, env, "alice")

	resp := env.do(http.MethodPost, "/api/v1/words", map[string]string{
		"word":       "moat",
		"domain":     "strategy",
		"source_url": "example.com/moat",
	}, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "rec_created")
	require.Len(t, env.table.created, 1)
	assert.Equal(t, "alice", env.table.created[0][fields.Owner])
	assert.Equal(t, "https://example.com/moat", env.table.created[0][fields.SourceURL])

	resp = env.do(http.MethodPost, "/api/v1/words", map[string]string{"domain": "x"}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHealthAndProperties(t *testing.T) {
	env := setupRouter(t, envOptions{allowRegister: true})

	resp := env.do(http.MethodGet, "/api/v1/healthz", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, map[string]string{"status": "ok", "env": "test"}, health)

	resp = env.do(http.MethodGet, "/api/v1/properties", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "enable_user_register")

	resp = env.do(http.MethodGet, "/api/v1/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHandleValidationRegistered(t *testing.T) {
	type handleOnly struct {
		UserID string `binding:"handle"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(handleOnly{UserID: "a.b-c_d"}))
	assert.Error(t, binding.Validator.ValidateStruct(handleOnly{UserID: "a b"}))
}
