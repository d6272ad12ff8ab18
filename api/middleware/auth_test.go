package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/firesight-ai/firesight-backend/pkg/auth"
	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

type stubResolver struct {
	users map[uuid.UUID]*models.User
}

func (s *stubResolver) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "firesight", ExpirationMinutes: 60}
}

func mintToken(t *testing.T, userID uuid.UUID, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(authTestConfig(), time.Now().UTC(), userID, role)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, resolver UserResolver, token string) (*httptest.ResponseRecorder, *models.User) {
	t.Helper()
	var seen *models.User
	handler := Auth(authTestConfig(), resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthMissingToken(t *testing.T) {
	rec, _ := runAuth(t, &stubResolver{}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMalformedToken(t *testing.T) {
	rec, _ := runAuth(t, &stubResolver{}, "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthDeletedUser(t *testing.T) {
	token := mintToken(t, uuid.New(), enums.RoleUser)
	rec, _ := runAuth(t, &stubResolver{}, token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("token for a missing user must yield 401, got %d", rec.Code)
	}
}

func TestAuthSeedsContextWithLiveUser(t *testing.T) {
	user := &models.User{ID: uuid.New(), FullName: "Ranger", Email: "r@example.com", Role: enums.RoleAdmin}
	resolver := &stubResolver{users: map[uuid.UUID]*models.User{user.ID: user}}

	// Token still says user; the live record wins.
	token := mintToken(t, user.ID, enums.RoleUser)
	rec, seen := runAuth(t, resolver, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen == nil || seen.ID != user.ID {
		t.Fatalf("expected resolved user in context, got %+v", seen)
	}
	if seen.Role != enums.RoleAdmin {
		t.Fatalf("context must carry the stored role, got %s", seen.Role)
	}
}

func TestRequireRoleForbidsNonAdmin(t *testing.T) {
	handler := RequireRole(enums.RoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	user := &models.User{ID: uuid.New(), Role: enums.RoleUser}
	req := httptest.NewRequest("GET", "/admin", nil)
	req = req.WithContext(WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	handler := RequireRole(enums.RoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	user := &models.User{ID: uuid.New(), Role: enums.RoleAdmin}
	req := httptest.NewRequest("GET", "/admin", nil)
	req = req.WithContext(WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	handler := RequireRole(enums.RoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without resolved user, got %d", rec.Code)
	}
}
