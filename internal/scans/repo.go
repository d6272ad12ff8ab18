package scans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	dbtypes "github.com/firesight-ai/firesight-backend/pkg/db/types"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

// Repository persists scan records. Scans are append-and-update only; nothing
// here deletes.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to a database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateScanDTO carries everything needed to persist a fresh scan.
type CreateScanDTO struct {
	UserID      uuid.UUID
	Lat         float64
	Lng         float64
	RegionName  string
	RiskLevel   string
	Accuracy    float64
	ModelID     string
	PredictedAt time.Time
	GridData    dbtypes.GridPoints
}

// Create persists a new scan. Fresh records are unreviewed and hidden from
// the owner's history until affirmed correct.
func (r *Repository) Create(ctx context.Context, dto CreateScanDTO) (*models.Scan, error) {
	scan := models.Scan{
		UserID:          dto.UserID,
		Lat:             dto.Lat,
		Lng:             dto.Lng,
		RegionName:      dto.RegionName,
		RiskLevel:       dto.RiskLevel,
		Accuracy:        dto.Accuracy,
		ModelID:         dto.ModelID,
		PredictedAt:     dto.PredictedAt,
		GridData:        dto.GridData,
		FeedbackVerdict: enums.VerdictUnreviewed,
		SavedToHistory:  false,
	}
	if err := r.db.WithContext(ctx).Create(&scan).Error; err != nil {
		return nil, err
	}
	return &scan, nil
}

// FindByID fetches one scan by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Scan, error) {
	var scan models.Scan
	if err := r.db.WithContext(ctx).First(&scan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &scan, nil
}

// UpdateFeedback overwrites the verdict and notes and couples history
// visibility to correctness: only scans affirmed correct surface in the
// owner's history. Returns gorm.ErrRecordNotFound for an unknown id.
func (r *Repository) UpdateFeedback(ctx context.Context, id uuid.UUID, verdict enums.Verdict, notes *string) (*models.Scan, error) {
	result := r.db.WithContext(ctx).Model(&models.Scan{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"feedback_verdict": verdict,
			"feedback_notes":   notes,
			"saved_to_history": verdict == enums.VerdictCorrect,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// ListOwnedSaved returns the owner's history: their scans that feedback has
// affirmed, newest prediction first.
func (r *Repository) ListOwnedSaved(ctx context.Context, ownerID uuid.UUID) ([]models.Scan, error) {
	var scans []models.Scan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND saved_to_history = ?", ownerID, true).
		Order("predicted_at DESC").
		Find(&scans).Error
	if err != nil {
		return nil, err
	}
	return scans, nil
}

// ListAllWithOwners returns every scan joined with its owner, newest
// prediction first.
func (r *Repository) ListAllWithOwners(ctx context.Context) ([]models.Scan, error) {
	var scans []models.Scan
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("predicted_at DESC").
		Find(&scans).Error
	if err != nil {
		return nil, err
	}
	return scans, nil
}

// ListMistakes returns scans marked incorrect, joined with their owners. This
// feeds the retraining export.
func (r *Repository) ListMistakes(ctx context.Context) ([]models.Scan, error) {
	var scans []models.Scan
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("feedback_verdict = ?", enums.VerdictIncorrect).
		Find(&scans).Error
	if err != nil {
		return nil, err
	}
	return scans, nil
}
