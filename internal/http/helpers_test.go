package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/account-service/internal/avatar"
	"github.com/tazhibayda/account-service/internal/domain"
	api "github.com/tazhibayda/account-service/internal/http"
	"github.com/tazhibayda/account-service/internal/mail"
	"github.com/tazhibayda/account-service/internal/orders"
	"github.com/tazhibayda/account-service/internal/queue"
	"github.com/tazhibayda/account-service/internal/repo"
	"github.com/tazhibayda/account-service/internal/service"
)

// memStore is an in-memory UserStore so the full HTTP flows run without
// Mongo.
type memStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemStore() *memStore {
	return &memStore{users: map[primitive.ObjectID]*domain.User{}}
}

func (s *memStore) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) FindUserByVerificationToken(_ context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Verified = true
		u.VerificationToken = nil
	}
	return nil
}

func (s *memStore) SetAuthToken(_ context.Context, id primitive.ObjectID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.AuthToken = token
	}
	return nil
}

func (s *memStore) SetSubscription(_ context.Context, id primitive.ObjectID, sub string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Subscription = sub
	}
	return nil
}

func (s *memStore) SetAvatarURL(_ context.Context, id primitive.ObjectID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.AvatarURL = url
	}
	return nil
}

func (s *memStore) Ping(context.Context) error { return nil }

func (s *memStore) byEmail(email string) *domain.User {
	u, _ := s.FindUserByEmail(context.Background(), email)
	return u
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// memMailer records outbound mail and can be told to fail.
type memMailer struct {
	mu   sync.Mutex
	Fail bool
	Sent []mail.Mail
}

func (m *memMailer) Send(msg mail.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return context.DeadlineExceeded
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *memMailer) sent() []mail.Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Mail(nil), m.Sent...)
}

type testEnv struct {
	Store     *memStore
	Mail      *memMailer
	Handler   *api.Handler
	Router    *gin.Engine
	PublicDir string
}

func newTestEnv(t *testing.T) *testEnv { return newTestEnvWith(t, nil) }

func newTestEnvWith(t *testing.T, limiter api.Limiter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	mailer := &memMailer{}
	publicDir := t.TempDir()
	proc := avatar.New(publicDir)

	acc := service.NewAccount(store, mailer, proc, queue.NewNoop(),
		"test-secret", 23*time.Hour, "http://localhost:8080", "account.events")

	h := api.NewHandler(acc, orders.New("http://127.0.0.1:1", "unused"), store, limiter, t.TempDir())
	r := api.NewRouter(h, zap.NewNop(), publicDir)

	return &testEnv{Store: store, Mail: mailer, Handler: h, Router: r, PublicDir: publicDir}
}

func (e *testEnv) do(t *testing.T, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// signupAndVerify registers a user, pulls the token out of the store and
// confirms it. Returns nothing; the store holds the verified user.
func (e *testEnv) signupAndVerify(t *testing.T, email, password string) {
	t.Helper()
	w := e.do(t, "POST", "/api/users/signup",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	require.Equal(t, 201, w.Code, w.Body.String())

	u := e.Store.byEmail(email)
	require.NotNil(t, u)
	require.NotNil(t, u.VerificationToken)

	w = e.do(t, "GET", "/api/users/verify/"+*u.VerificationToken, "", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w := e.do(t, "POST", "/api/users/login",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// pngUpload builds a multipart body with a generated PNG under the given
// field and filename.
func pngUpload(t *testing.T, field, filename string, w, h int) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, img))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
