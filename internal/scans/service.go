package scans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/predictor"
)

const defaultRegionName = "Unknown Forest Area"

// Service covers the scan lifecycle: scoring new coordinates, recording
// feedback, and serving the history and retraining views.
type Service interface {
	Analyze(ctx context.Context, userID uuid.UUID, req AnalyzeRequest) (*AnalyzeResponse, error)
	SubmitFeedback(ctx context.Context, scanID uuid.UUID, req FeedbackRequest) (*ScanDTO, error)
	MyHistory(ctx context.Context, userID uuid.UUID) ([]*ScanDTO, error)
	MasterHistory(ctx context.Context) (*MasterHistoryResponse, error)
	TrainingData(ctx context.Context) ([]*ScanDTO, error)
}

// MasterHistoryResponse bundles every scan with the feedback summary for the
// admin dashboard.
type MasterHistoryResponse struct {
	Summary Summary    `json:"summary"`
	Data    []*ScanDTO `json:"data"`
}

type scanRepository interface {
	Create(ctx context.Context, dto CreateScanDTO) (*models.Scan, error)
	UpdateFeedback(ctx context.Context, id uuid.UUID, verdict enums.Verdict, notes *string) (*models.Scan, error)
	ListOwnedSaved(ctx context.Context, ownerID uuid.UUID) ([]models.Scan, error)
	ListAllWithOwners(ctx context.Context) ([]models.Scan, error)
	ListMistakes(ctx context.Context) ([]models.Scan, error)
}

type scorer interface {
	Predict(ctx context.Context, lat, lng float64) (*predictor.Prediction, error)
}

type service struct {
	scans  scanRepository
	scorer scorer
	cfg    config.PredictorConfig
}

// ServiceParams bundles the dependencies for the scan service.
type ServiceParams struct {
	ScanRepo        scanRepository
	Scorer          scorer
	PredictorConfig config.PredictorConfig
}

// NewService constructs the scan service.
func NewService(params ServiceParams) (Service, error) {
	if params.ScanRepo == nil {
		return nil, fmt.Errorf("scan repository is required")
	}
	if params.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	return &service{
		scans:  params.ScanRepo,
		scorer: params.Scorer,
		cfg:    params.PredictorConfig,
	}, nil
}

// Analyze scores the coordinates with the external model and persists the
// result. Scorer failures propagate immediately; there is no retry.
func (s *service) Analyze(ctx context.Context, userID uuid.UUID, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng are required")
	}
	lat, lng := *req.Lat, *req.Lng
	if !isFinite(lat) || !isFinite(lng) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng must be finite numbers")
	}

	prediction, err := s.scorer.Predict(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	region := strings.TrimSpace(req.Name)
	if region == "" {
		region = defaultRegionName
	}

	modelID := s.cfg.ModelID

	scan, err := s.scans.Create(ctx, CreateScanDTO{
		UserID:      userID,
		Lat:         lat,
		Lng:         lng,
		RegionName:  region,
		RiskLevel:   prediction.Result,
		Accuracy:    prediction.TotalProbability,
		ModelID:     modelID,
		PredictedAt: time.Now().UTC(),
		GridData:    prediction.GridData,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist scan")
	}

	return &AnalyzeResponse{
		ID:               scan.ID,
		Result:           scan.RiskLevel,
		TotalProbability: scan.Accuracy,
		GridData:         scan.GridData,
		Timestamp:        scan.PredictedAt,
	}, nil
}

// SubmitFeedback overwrites the scan's verdict; repeat submissions replace
// the previous one. A scan enters the owner's history only when marked
// correct.
func (s *service) SubmitFeedback(ctx context.Context, scanID uuid.UUID, req FeedbackRequest) (*ScanDTO, error) {
	if req.IsCorrect == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isCorrect is required")
	}

	scan, err := s.scans.UpdateFeedback(ctx, scanID, enums.VerdictFromBool(*req.IsCorrect), req.Notes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Scan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update feedback")
	}

	return FromModel(scan, false), nil
}

// MyHistory lists the caller's affirmed scans, newest first.
func (s *service) MyHistory(ctx context.Context, userID uuid.UUID) ([]*ScanDTO, error) {
	scans, err := s.scans.ListOwnedSaved(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list history")
	}
	return FromModels(scans, false), nil
}

// MasterHistory lists every scan with its owner plus the feedback summary.
func (s *service) MasterHistory(ctx context.Context) (*MasterHistoryResponse, error) {
	scans, err := s.scans.ListAllWithOwners(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list scans")
	}
	return &MasterHistoryResponse{
		Summary: ComputeSummary(scans),
		Data:    FromModels(scans, true),
	}, nil
}

// TrainingData lists scans the reviewers marked incorrect. Owner emails are
// withheld; the export only needs the name.
func (s *service) TrainingData(ctx context.Context) ([]*ScanDTO, error) {
	scans, err := s.scans.ListMistakes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list mistakes")
	}
	return FromModels(scans, false), nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
