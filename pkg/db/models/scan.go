package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/firesight-ai/firesight-backend/pkg/db/types"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

// Scan is one prediction event: the submitted coordinates, what the model
// said, the raw sampling grid, and whatever feedback the reviewer left.
// Scans are never deleted; incorrect ones feed the retraining export.
type Scan struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`

	Lat        float64 `gorm:"column:lat;not null"`
	Lng        float64 `gorm:"column:lng;not null"`
	RegionName string  `gorm:"column:region_name;not null;default:'Unknown Forest Area'"`

	RiskLevel   string    `gorm:"column:risk_level;not null"`
	Accuracy    float64   `gorm:"column:accuracy"`
	ModelID     string    `gorm:"column:model_id"`
	PredictedAt time.Time `gorm:"column:predicted_at;not null"`

	GridData dbtypes.GridPoints `gorm:"column:grid_data;type:jsonb"`

	FeedbackVerdict enums.Verdict `gorm:"column:feedback_verdict;type:text;not null;default:'unreviewed'"`
	FeedbackLabel   *string       `gorm:"column:feedback_label"`
	FeedbackNotes   *string       `gorm:"column:feedback_notes"`

	SavedToHistory bool `gorm:"column:saved_to_history;not null;default:false"`

	Owner *User `gorm:"foreignKey:UserID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the ID client-side, mirroring User.
func (s *Scan) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.FeedbackVerdict == "" {
		s.FeedbackVerdict = enums.VerdictUnreviewed
	}
	return nil
}
