package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/travel-request-service/internal/api/http/handlers"
	"github.com/spec-kit/travel-request-service/internal/auth"
	"github.com/spec-kit/travel-request-service/internal/config"
	"github.com/spec-kit/travel-request-service/internal/domain"
	"github.com/spec-kit/travel-request-service/internal/observability"
	"github.com/spec-kit/travel-request-service/internal/persistence"
	"github.com/spec-kit/travel-request-service/internal/repository"
	"github.com/spec-kit/travel-request-service/internal/service"
)

type fakeUserRepo struct {
	nextID int64
	byID   map[int64]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.byID))
	for i := int64(1); i <= f.nextID; i++ {
		if u, ok := f.byID[i]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SetResetCode(_ context.Context, id int64, code string, expiresAt time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.ResetCode = &code
	u.ResetCodeExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.ResetCode = nil
	u.ResetCodeExpiresAt = nil
	return nil
}

type fakeTravelRepo struct {
	nextID   int64
	requests map[int64]*domain.TravelRequest
}

func (f *fakeTravelRepo) Create(_ context.Context, r *domain.TravelRequest) error {
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now()
	f.requests[r.ID] = r
	return nil
}

func (f *fakeTravelRepo) GetByID(_ context.Context, id int64) (*domain.TravelRequest, error) {
	if r, ok := f.requests[id]; ok {
		return r, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTravelRepo) ListByOwner(_ context.Context, ownerID int64) ([]repository.TravelRequestWithOwner, error) {
	var out []repository.TravelRequestWithOwner
	for i := f.nextID; i >= 1; i-- {
		if r, ok := f.requests[i]; ok && r.UserID == ownerID {
			out = append(out, repository.TravelRequestWithOwner{TravelRequest: *r})
		}
	}
	return out, nil
}

func (f *fakeTravelRepo) ListAll(_ context.Context) ([]repository.TravelRequestWithOwner, error) {
	var out []repository.TravelRequestWithOwner
	for i := f.nextID; i >= 1; i-- {
		if r, ok := f.requests[i]; ok {
			out = append(out, repository.TravelRequestWithOwner{TravelRequest: *r})
		}
	}
	return out, nil
}

func (f *fakeTravelRepo) UpdateStatus(_ context.Context, id int64, status domain.RequestStatus) error {
	r, ok := f.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	r.Status = status
	return nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret",
			JWTIssuer:           "test-issuer",
			JWTAudience:         "test-audience",
			AccessTokenTTLHours: 24,
			ResetCodeTTLMinutes: 5,
			BcryptCost:          4,
		},
	}

	userRepo := &fakeUserRepo{byID: map[int64]*domain.User{}}
	travelRepo := &fakeTravelRepo{requests: map[int64]*domain.TravelRequest{}}

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:      userRepo,
		CodeGenerator: func() string { return "123456" },
	})
	travelService := service.NewTravelService(travelRepo, nil)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		TravelRequests: handlers.NewTravelRequestsHandler(travelService),
		AuthMiddleware: authMiddleware,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func doJSONList(t *testing.T, app *fiber.App, path, token string) (*http.Response, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded []map[string]any
	if len(raw) > 0 && raw[0] == '[' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, name, email, role string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "password1", "role": role,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": "password1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func validTripBody() map[string]any {
	return map[string]any{
		"originCity":      "Lima",
		"destinationCity": "Bogota",
		"departureDate":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"returnDate":      time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"justification":   "Client onboarding",
	}
}

func TestAuthEndpoints(t *testing.T) {
	app := newTestApp(t)

	t.Run("register then duplicate conflicts", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
			"name": "Alice", "email": "alice@example.com", "password": "password1", "role": "Requester",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, body["message"])

		resp, body = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
			"name": "Alice", "email": "alice@example.com", "password": "password1", "role": "Requester",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.NotEmpty(t, body["message"])
	})

	t.Run("login failures map to 401", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email": "alice@example.com", "password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.NotEmpty(t, body["message"])
	})

	t.Run("forgot and reset password flow", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{
			"email": "alice@example.com",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body["message"], "123456")

		resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/reset-password", "", map[string]any{
			"email": "alice@example.com", "code": "123456", "newPassword": "password2",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email": "alice@example.com", "password": "password1",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email": "alice@example.com", "password": "password2",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong reset code maps to 401", func(t *testing.T) {
		doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{
			"email": "alice@example.com",
		})
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/reset-password", "", map[string]any{
			"email": "alice@example.com", "code": "999999", "newPassword": "password3",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("forgot password for unknown email maps to 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{
			"email": "nobody@example.com",
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUserListAuthorization(t *testing.T) {
	app := newTestApp(t)
	requesterToken := registerAndLogin(t, app, "Rita", "rita@example.com", "Requester")
	approverToken := registerAndLogin(t, app, "Aaron", "aaron@example.com", "Approver")

	t.Run("missing bearer rejected", func(t *testing.T) {
		resp, _ := doJSONList(t, app, "/api/auth/users", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("requester forbidden", func(t *testing.T) {
		resp, _ := doJSONList(t, app, "/api/auth/users", requesterToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("approver sees profiles without password hashes", func(t *testing.T) {
		resp, list := doJSONList(t, app, "/api/auth/users", approverToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, list, 2)
		for _, profile := range list {
			require.NotEmpty(t, profile["email"])
			require.NotContains(t, profile, "passwordHash")
			require.NotContains(t, profile, "password_hash")
		}
	})
}

func TestTravelRequestEndpoints(t *testing.T) {
	app := newTestApp(t)
	requesterToken := registerAndLogin(t, app, "Rita", "rita@example.com", "Requester")
	approverToken := registerAndLogin(t, app, "Aaron", "aaron@example.com", "Approver")

	t.Run("create requires bearer", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/travelrequest/", "", validTripBody())
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("create validates same city", func(t *testing.T) {
		body := validTripBody()
		body["destinationCity"] = "LIMA"
		resp, decoded := doJSON(t, app, http.MethodPost, "/api/travelrequest/", requesterToken, body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NotEmpty(t, decoded["message"])
	})

	t.Run("create succeeds for a valid trip", func(t *testing.T) {
		resp, decoded := doJSON(t, app, http.MethodPost, "/api/travelrequest/", requesterToken, validTripBody())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, decoded["message"])
	})

	t.Run("my-requests returns the owner's trips", func(t *testing.T) {
		resp, list := doJSONList(t, app, "/api/travelrequest/my-requests", requesterToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, list, 1)
		require.Equal(t, "Pending", list[0]["status"])
	})

	t.Run("all is approver-only", func(t *testing.T) {
		resp, _ := doJSONList(t, app, "/api/travelrequest/all", requesterToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, list := doJSONList(t, app, "/api/travelrequest/all", approverToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, list, 1)
	})

	t.Run("status update is approver-only and validated", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, "/api/travelrequest/1/status", requesterToken, map[string]any{"status": "Approved"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPut, "/api/travelrequest/1/status", approverToken, map[string]any{"status": "Cancelled"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPut, "/api/travelrequest/99/status", approverToken, map[string]any{"status": "Approved"})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, decoded := doJSON(t, app, http.MethodPut, "/api/travelrequest/1/status", approverToken, map[string]any{"status": "Approved"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, decoded["message"], "approved")

		resp, list := doJSONList(t, app, "/api/travelrequest/all", approverToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "Approved", list[0]["status"])
	})

	t.Run("invalid id in path maps to 400", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, "/api/travelrequest/abc/status", approverToken, map[string]any{"status": "Approved"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "alive", body["status"])

	// no postgres/redis behind the test app
	resp, _ = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
