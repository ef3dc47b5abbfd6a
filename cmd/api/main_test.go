package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/stayrewards/stayrewards-api/internal/domain/auth"
	"github.com/stayrewards/stayrewards-api/internal/domain/loyalty"
	"github.com/stayrewards/stayrewards-api/internal/domain/user"
	"github.com/stayrewards/stayrewards-api/internal/middleware"
	"github.com/stayrewards/stayrewards-api/internal/pkg/jwt"
)

type memUserRepo struct {
	users map[uuid.UUID]*user.User
}

func (m *memUserRepo) Create(ctx context.Context, u *user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return m.users[id], nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.users[id] != nil, nil
}

func newTestRouter(authBurst int) http.Handler {
	tokens := jwt.NewService(jwt.Config{AccessSecret: "a", RefreshSecret: "r"})
	users := &memUserRepo{users: make(map[uuid.UUID]*user.User)}

	return newRouter(routerDeps{
		authHandler:    auth.NewHandler(auth.NewService(users, tokens, nil)),
		loyaltyHandler: loyalty.NewHandler(loyalty.NewService(nil, loyalty.DefaultTierTable(), nil)),
		tokens:         tokens,
		apiLimiter:     middleware.NewIPRateLimiter(1000, 1000),
		authLimiter:    middleware.NewIPRateLimiter(0.001, authBurst),
		allowedOrigins: []string{"http://localhost:4200"},
	})
}

func TestRouterMountsRoutes(t *testing.T) {
	router := newTestRouter(5)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/loyalty/tiers", http.StatusOK},
		{http.MethodGet, "/api/v1/loyalty/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/auth/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/loyalty/accounts/" + uuid.NewString() + "/adjust", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, rr.Code)
		}
	}
}

func TestRegisterThenMeThroughRouter(t *testing.T) {
	router := newTestRouter(5)

	body, _ := json.Marshal(auth.RegisterRequest{
		Email: "guest@example.com", Password: "password123", FirstName: "Ada", LastName: "Guest",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Data auth.AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+out.Data.Tokens.AccessToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rr.Code)
	}
}

func TestAuthEndpointsRateLimited(t *testing.T) {
	router := newTestRouter(2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
		req.RemoteAddr = "203.0.113.7:4444"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusBadRequest {
		t.Fatalf("expected first two requests to reach handler, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third request, got %v", codes)
	}
}
