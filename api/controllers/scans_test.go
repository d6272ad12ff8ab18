package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/firesight-ai/firesight-backend/api/middleware"
	"github.com/firesight-ai/firesight-backend/internal/scans"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	dbtypes "github.com/firesight-ai/firesight-backend/pkg/db/types"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/types"
)

type stubScanService struct {
	analyzeResp  *scans.AnalyzeResponse
	analyzeErr   error
	analyzeUser  uuid.UUID
	feedbackResp *scans.ScanDTO
	feedbackErr  error
	feedbackID   uuid.UUID
	history      []*scans.ScanDTO
	master       *scans.MasterHistoryResponse
	training     []*scans.ScanDTO
}

func (s *stubScanService) Analyze(_ context.Context, userID uuid.UUID, _ scans.AnalyzeRequest) (*scans.AnalyzeResponse, error) {
	s.analyzeUser = userID
	return s.analyzeResp, s.analyzeErr
}

func (s *stubScanService) SubmitFeedback(_ context.Context, scanID uuid.UUID, _ scans.FeedbackRequest) (*scans.ScanDTO, error) {
	s.feedbackID = scanID
	return s.feedbackResp, s.feedbackErr
}

func (s *stubScanService) MyHistory(context.Context, uuid.UUID) ([]*scans.ScanDTO, error) {
	return s.history, nil
}

func (s *stubScanService) MasterHistory(context.Context) (*scans.MasterHistoryResponse, error) {
	return s.master, nil
}

func (s *stubScanService) TrainingData(context.Context) ([]*scans.ScanDTO, error) {
	return s.training, nil
}

func authedRequest(method, target string, body []byte, role enums.Role) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	user := &models.User{ID: uuid.New(), FullName: "Ranger", Email: "r@example.com", Role: role}
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func TestScansAnalyzeSuccess(t *testing.T) {
	svc := &stubScanService{analyzeResp: &scans.AnalyzeResponse{
		ID:               uuid.New(),
		Result:           "High Risk",
		TotalProbability: 0.85,
		GridData: dbtypes.GridPoints{
			{Label: "center", Lat: 39.0, Lng: 35.0, IndividualProb: 0.85, WeightUsed: 1.0},
		},
		Timestamp: time.Now().UTC(),
	}}
	handler := ScansAnalyze(svc, nil)

	req := authedRequest(http.MethodPost, "/api/scans/analyze",
		[]byte(`{"lat":39.0,"lng":35.0,"name":"Taurus Foothills"}`), enums.RoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.analyzeUser == uuid.Nil {
		t.Fatal("caller id must flow to the service")
	}
	var envelope struct {
		Data scans.AnalyzeResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Result != "High Risk" || len(envelope.Data.GridData) != 1 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestScansAnalyzeRejectsMissingCoordinate(t *testing.T) {
	svc := &stubScanService{}
	handler := ScansAnalyze(svc, nil)

	req := authedRequest(http.MethodPost, "/api/scans/analyze",
		[]byte(`{"lng":35.0,"name":"Taurus Foothills"}`), enums.RoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.analyzeUser != uuid.Nil {
		t.Fatal("a body without lat must be rejected before the service runs")
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %q", envelope.Error.Code)
	}
}

func TestScansAnalyzeWithoutAuthContext(t *testing.T) {
	handler := ScansAnalyze(&stubScanService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scans/analyze",
		bytes.NewReader([]byte(`{"lat":1,"lng":2}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestScansAnalyzeUpstreamFailureSurfacesMessage(t *testing.T) {
	handler := ScansAnalyze(&stubScanService{
		analyzeErr: pkgerrors.New(pkgerrors.CodeUpstream, "scorer returned status 502"),
	}, nil)

	req := authedRequest(http.MethodPost, "/api/scans/analyze",
		[]byte(`{"lat":1,"lng":2}`), enums.RoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "scorer returned status 502" {
		t.Fatalf("upstream message must surface, got %q", envelope.Error.Message)
	}
}

func feedbackRouter(svc scans.Service) http.Handler {
	r := chi.NewRouter()
	r.Patch("/api/scans/feedback/{scanId}", ScansFeedback(svc, nil))
	return r
}

func TestScansFeedbackSuccess(t *testing.T) {
	scanID := uuid.New()
	correct := true
	svc := &stubScanService{feedbackResp: &scans.ScanDTO{
		ID:                   scanID,
		UserFeedback:         scans.FeedbackDTO{IsCorrect: &correct},
		IsSavedToUserHistory: true,
	}}

	body := []byte(`{"isCorrect":true,"notes":"matched the burn scar"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/scans/feedback/"+scanID.String(), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	feedbackRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.feedbackID != scanID {
		t.Fatalf("expected scan id %s to reach the service, got %s", scanID, svc.feedbackID)
	}
}

// The feedback route is deliberately unauthenticated; the shipped web client
// calls it without a token.
func TestScansFeedbackNeedsNoToken(t *testing.T) {
	correct := false
	svc := &stubScanService{feedbackResp: &scans.ScanDTO{
		UserFeedback: scans.FeedbackDTO{IsCorrect: &correct},
	}}

	body := []byte(`{"isCorrect":false}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/scans/feedback/"+uuid.NewString(), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	feedbackRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous feedback must succeed, got %d", rec.Code)
	}
}

func TestScansFeedbackMalformedScanIDAnswersNotFound(t *testing.T) {
	svc := &stubScanService{}
	req := httptest.NewRequest(http.MethodPatch, "/api/scans/feedback/not-a-uuid",
		bytes.NewReader([]byte(`{"isCorrect":true}`)))
	rec := httptest.NewRecorder()
	feedbackRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.feedbackID != uuid.Nil {
		t.Fatal("a malformed id must not reach the service")
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "Scan not found" {
		t.Fatalf("malformed and unknown ids must answer identically, got %q", envelope.Error.Message)
	}
}

func TestScansFeedbackUnknownScan(t *testing.T) {
	svc := &stubScanService{feedbackErr: pkgerrors.New(pkgerrors.CodeNotFound, "Scan not found")}

	req := httptest.NewRequest(http.MethodPatch, "/api/scans/feedback/"+uuid.NewString(),
		bytes.NewReader([]byte(`{"isCorrect":true}`)))
	rec := httptest.NewRecorder()
	feedbackRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestScansMyHistory(t *testing.T) {
	svc := &stubScanService{history: []*scans.ScanDTO{{ID: uuid.New()}}}
	handler := ScansMyHistory(svc, nil)

	req := authedRequest(http.MethodGet, "/api/scans/my-history", nil, enums.RoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data []scans.ScanDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 scan, got %d", len(envelope.Data))
	}
}

func TestAdminMasterHistoryShape(t *testing.T) {
	svc := &stubScanService{master: &scans.MasterHistoryResponse{
		Summary: scans.Summary{Total: 1, Likes: 1, AccuracyRate: "100.0%"},
		Data:    []*scans.ScanDTO{{ID: uuid.New()}},
	}}
	handler := AdminMasterHistory(svc, nil)

	req := authedRequest(http.MethodGet, "/api/admin/master-history", nil, enums.RoleAdmin)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Summary scans.Summary   `json:"summary"`
			Data    []scans.ScanDTO `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Summary.AccuracyRate != "100.0%" {
		t.Fatalf("unexpected summary %+v", envelope.Data.Summary)
	}
	if len(envelope.Data.Data) != 1 {
		t.Fatalf("expected 1 scan, got %d", len(envelope.Data.Data))
	}
}

func TestAdminTrainingData(t *testing.T) {
	svc := &stubScanService{training: []*scans.ScanDTO{{ID: uuid.New()}}}
	handler := AdminTrainingData(svc, nil)

	// No auth context at all: the export endpoint is reachable anonymously.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/rl-training-data", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
