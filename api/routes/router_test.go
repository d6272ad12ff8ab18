package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firesight-ai/firesight-backend/internal/auth"
	"github.com/firesight-ai/firesight-backend/internal/scans"
	pkgAuth "github.com/firesight-ai/firesight-backend/pkg/auth"
	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "t"}, nil
}

type stubRegistrationService struct{}

func (stubRegistrationService) Register(context.Context, auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "t"}, nil
}

type stubGoogleService struct{}

func (stubGoogleService) LoginWithGoogle(context.Context, auth.GoogleLoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "t"}, nil
}

type stubScanService struct{}

func (stubScanService) Analyze(context.Context, uuid.UUID, scans.AnalyzeRequest) (*scans.AnalyzeResponse, error) {
	return &scans.AnalyzeResponse{ID: uuid.New(), Result: "Low Risk"}, nil
}

func (stubScanService) SubmitFeedback(context.Context, uuid.UUID, scans.FeedbackRequest) (*scans.ScanDTO, error) {
	return &scans.ScanDTO{}, nil
}

func (stubScanService) MyHistory(context.Context, uuid.UUID) ([]*scans.ScanDTO, error) {
	return nil, nil
}

func (stubScanService) MasterHistory(context.Context) (*scans.MasterHistoryResponse, error) {
	return &scans.MasterHistoryResponse{Summary: scans.Summary{AccuracyRate: "0%"}}, nil
}

func (stubScanService) TrainingData(context.Context) ([]*scans.ScanDTO, error) {
	return nil, nil
}

type stubResolver struct {
	users map[uuid.UUID]*models.User
}

func (s *stubResolver) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "firesight", ExpirationMinutes: 60},
	}
}

func newTestRouter(resolver *stubResolver) http.Handler {
	return NewRouter(Deps{
		Config:              testConfig(),
		UserResolver:        resolver,
		AuthService:         stubAuthService{},
		RegistrationService: stubRegistrationService{},
		GoogleService:       stubGoogleService{},
		ScanService:         stubScanService{},
	})
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now().UTC(), user.ID, user.Role)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterGatingMatrix(t *testing.T) {
	regular := &models.User{ID: uuid.New(), FullName: "User", Email: "u@example.com", Role: enums.RoleUser}
	admin := &models.User{ID: uuid.New(), FullName: "Admin", Email: "a@example.com", Role: enums.RoleAdmin}
	resolver := &stubResolver{users: map[uuid.UUID]*models.User{
		regular.ID: regular,
		admin.ID:   admin,
	}}
	router := newTestRouter(resolver)

	userToken := tokenFor(t, regular)
	adminToken := tokenFor(t, admin)

	cases := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		{"register is public", "POST", "/api/auth/register", `{"fullName":"A","email":"a@b.com","password":"secret1"}`, "", 201},
		{"login is public", "POST", "/api/auth/login", `{"email":"a@b.com","password":"secret1"}`, "", 200},
		{"google is public", "POST", "/api/auth/google", `{"idToken":"x"}`, "", 200},
		{"profile needs token", "GET", "/api/auth/user", "", "", 401},
		{"profile with token", "GET", "/api/auth/user", "", userToken, 200},
		{"analyze needs token", "POST", "/api/scans/analyze", `{"lat":1,"lng":2}`, "", 401},
		{"analyze with token", "POST", "/api/scans/analyze", `{"lat":1,"lng":2}`, userToken, 201},
		{"history needs token", "GET", "/api/scans/my-history", "", "", 401},
		{"history with token", "GET", "/api/scans/my-history", "", userToken, 200},
		{"feedback is ungated", "PATCH", "/api/scans/feedback/" + uuid.NewString(), `{"isCorrect":true}`, "", 200},
		{"master history needs token", "GET", "/api/admin/master-history", "", "", 401},
		{"master history forbids users", "GET", "/api/admin/master-history", "", userToken, 403},
		{"master history allows admins", "GET", "/api/admin/master-history", "", adminToken, 200},
		{"training data is ungated", "GET", "/api/admin/rl-training-data", "", "", 200},
		{"liveness is public", "GET", "/health/live", "", "", 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}
			if tc.token != "" {
				req.Header.Set("x-auth-token", tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouterRejectsTokenForDeletedUser(t *testing.T) {
	resolver := &stubResolver{users: map[uuid.UUID]*models.User{}}
	router := newTestRouter(resolver)

	ghost := &models.User{ID: uuid.New(), Role: enums.RoleAdmin}
	req := httptest.NewRequest("GET", "/api/admin/master-history", nil)
	req.Header.Set("x-auth-token", tokenFor(t, ghost))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("token for deleted user must yield 401, got %d", rec.Code)
	}
}
