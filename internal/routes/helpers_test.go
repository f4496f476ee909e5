package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/auth"
	"github.com/BruksfildServices01/storefront/internal/cache"
	"github.com/BruksfildServices01/storefront/internal/config"
	"github.com/BruksfildServices01/storefront/internal/geo"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/payment"
	"github.com/BruksfildServices01/storefront/internal/routes"
	"github.com/BruksfildServices01/storefront/internal/testutil"
)

// ======================================================
// FAKES
// ======================================================

type mailSpy struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *mailSpy) Dispatch(msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *mailSpy) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, msg := range m.sent {
		out[i] = msg.Subject
	}
	return out
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memStorage) PublicURL() string { return "https://cdn.test" }

func (s *memStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return s.PublicURL() + "/" + key, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type fakeGeocoder struct {
	queries []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, query string) (*geo.Point, error) {
	g.queries = append(g.queries, query)
	return &geo.Point{
		Lat: decimal.RequireFromString("10.7769"),
		Lon: decimal.RequireFromString("106.7009"),
	}, nil
}

type fakeGateway struct {
	results map[string]*payment.Result
}

func (g *fakeGateway) CreateCheckout(context.Context, payment.CheckoutRequest) (*payment.Checkout, error) {
	return &payment.Checkout{PreferenceID: "pref-1", URL: "https://pay.test/checkout/pref-1"}, nil
}

func (g *fakeGateway) Lookup(_ context.Context, id string) (*payment.Result, error) {
	r, ok := g.results[id]
	if !ok {
		return nil, payment.ErrDisabled
	}
	return r, nil
}

// ======================================================
// ENVIRONMENT
// ======================================================

type env struct {
	t        *testing.T
	db       *gorm.DB
	cfg      *config.Config
	router   *gin.Engine
	tokens   *auth.Tokens
	mail     *mailSpy
	storage  *memStorage
	geocoder *fakeGeocoder
	gateway  *fakeGateway
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.Config()
	db := testutil.NewDBWith(t, cfg)

	e := &env{
		t:        t,
		db:       db,
		cfg:      cfg,
		router:   gin.New(),
		tokens:   auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		mail:     &mailSpy{},
		storage:  &memStorage{objects: map[string][]byte{}},
		geocoder: &fakeGeocoder{},
		gateway:  &fakeGateway{results: map[string]*payment.Result{}},
	}

	routes.RegisterRoutes(e.router, db, cfg, routes.Services{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Mail:     e.mail,
		Cache:    cache.NewMemory(),
		Storage:  e.storage,
		Geocoder: e.geocoder,
		Payments: e.gateway,
	})
	return e
}

// token issues a session token for u.
func (e *env) token(u models.User) string {
	e.t.Helper()
	tok, err := e.tokens.Issue(&u)
	require.NoError(e.t, err)
	return tok
}

func (e *env) customer(email string, verified bool) (models.User, string) {
	u := testutil.User(e.t, e.db, email, models.RoleCustomer, verified)
	return u, e.token(u)
}

func (e *env) admin() (models.User, string) {
	u := testutil.User(e.t, e.db, "boss@example.com", models.RoleAdmin, true)
	return u, e.token(u)
}

// do sends body as JSON when it is not nil.
func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) form(path string, values url.Values) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decode(t, w)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return data
}

func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	body := decode(t, w)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return errs
}

func idOf(v any) uint {
	return uint(v.(float64))
}

func recordRequest(e *env, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
