package onboarding

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"nutriguide/onboarding-backend/pkg/workflows"
)

// Answers is the wholesale bag of onboarding answers for one device or user.
type Answers struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerKey  string         `gorm:"uniqueIndex;not null" json:"owner_key"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Answers) TableName() string {
	return "onboarding_answers"
}

// FlowResponse is the full flow as served to clients.
type FlowResponse struct {
	Steps               []workflows.StepDefinition `json:"steps"`
	TotalNavigableSteps int                        `json:"total_navigable_steps"`
}

// Progress describes how far along the flow a step is.
type Progress struct {
	StepID          string  `json:"step_id"`
	CurrentStep     int     `json:"current_step"`
	TotalSteps      int     `json:"total_steps"`
	PercentComplete float64 `json:"percent_complete"`
}
