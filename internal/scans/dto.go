package scans

import (
	"time"

	"github.com/google/uuid"

	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	dbtypes "github.com/firesight-ai/firesight-backend/pkg/db/types"
)

// AnalyzeRequest carries the coordinates to score. Both are required; a
// pointer keeps an omitted field distinguishable from a genuine zero
// coordinate. Name is the optional human-readable region label shown in
// history views.
type AnalyzeRequest struct {
	Lat  *float64 `json:"lat" validate:"required"`
	Lng  *float64 `json:"lng" validate:"required"`
	Name string   `json:"name"`
}

// AnalyzeResponse is the flat shape the map client consumes right after a
// scan: the scorer output plus the persisted record's id and timestamp.
type AnalyzeResponse struct {
	ID               uuid.UUID          `json:"_id"`
	Result           string             `json:"result"`
	TotalProbability float64            `json:"total_probability"`
	GridData         dbtypes.GridPoints `json:"grid_data"`
	Timestamp        time.Time          `json:"timestamp"`
}

// FeedbackRequest sets the reviewer's verdict on a scan. IsCorrect is
// required; Notes is free text.
type FeedbackRequest struct {
	IsCorrect *bool   `json:"isCorrect" validate:"required"`
	Notes     *string `json:"notes"`
}

// CoordinatesDTO mirrors the stored coordinate block.
type CoordinatesDTO struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	RegionName string  `json:"regionName"`
}

// PredictionDTO mirrors the stored prediction block.
type PredictionDTO struct {
	RiskLevel string    `json:"riskLevel"`
	Accuracy  float64   `json:"accuracy"`
	ModelID   string    `json:"modelId"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackDTO exposes the tri-state verdict as a nullable boolean: nil means
// not yet reviewed.
type FeedbackDTO struct {
	IsCorrect *bool   `json:"isCorrect"`
	UserLabel *string `json:"userLabel,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// OwnerDTO is the minimal owner projection joined into admin views.
type OwnerDTO struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email,omitempty"`
}

// ScanDTO is the full client-facing scan record.
type ScanDTO struct {
	ID                   uuid.UUID          `json:"_id"`
	UserID               uuid.UUID          `json:"userId"`
	Coordinates          CoordinatesDTO     `json:"coordinates"`
	Prediction           PredictionDTO      `json:"prediction"`
	GridData             dbtypes.GridPoints `json:"gridData"`
	UserFeedback         FeedbackDTO        `json:"userFeedback"`
	IsSavedToUserHistory bool               `json:"isSavedToUserHistory"`
	Owner                *OwnerDTO          `json:"owner,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
}

// FromModel maps a stored scan onto the wire shape. includeOwnerEmail keeps
// the retraining export from leaking reviewer emails.
func FromModel(scan *models.Scan, includeOwnerEmail bool) *ScanDTO {
	if scan == nil {
		return nil
	}

	dto := &ScanDTO{
		ID:     scan.ID,
		UserID: scan.UserID,
		Coordinates: CoordinatesDTO{
			Lat:        scan.Lat,
			Lng:        scan.Lng,
			RegionName: scan.RegionName,
		},
		Prediction: PredictionDTO{
			RiskLevel: scan.RiskLevel,
			Accuracy:  scan.Accuracy,
			ModelID:   scan.ModelID,
			Timestamp: scan.PredictedAt,
		},
		GridData: scan.GridData,
		UserFeedback: FeedbackDTO{
			IsCorrect: scan.FeedbackVerdict.Bool(),
			UserLabel: scan.FeedbackLabel,
			Notes:     scan.FeedbackNotes,
		},
		IsSavedToUserHistory: scan.SavedToHistory,
		CreatedAt:            scan.CreatedAt,
	}

	if scan.Owner != nil {
		dto.Owner = &OwnerDTO{
			ID:       scan.Owner.ID,
			FullName: scan.Owner.FullName,
		}
		if includeOwnerEmail {
			dto.Owner.Email = scan.Owner.Email
		}
	}

	return dto
}

// FromModels maps a slice preserving order.
func FromModels(scans []models.Scan, includeOwnerEmail bool) []*ScanDTO {
	out := make([]*ScanDTO, 0, len(scans))
	for i := range scans {
		out = append(out, FromModel(&scans[i], includeOwnerEmail))
	}
	return out
}
