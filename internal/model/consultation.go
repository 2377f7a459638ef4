package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Consultation is one persisted pipeline run. Stage outputs are stored as
// jsonb so partially failed runs keep whatever was produced.
type Consultation struct {
	ID                uint           `gorm:"primarykey"`
	Status            string         `gorm:"type:varchar(50);not null;index"`
	Message           string         `gorm:"type:text"`
	UserProfile       datatypes.JSON `gorm:"type:jsonb;not null"`
	FinancialAnalysis datatypes.JSON `gorm:"type:jsonb"`
	Validation        datatypes.JSON `gorm:"type:jsonb"`
	Portfolio         datatypes.JSON `gorm:"type:jsonb"`
	RiskAssessment    datatypes.JSON `gorm:"type:jsonb"`
	FinalReport       string         `gorm:"type:text"`
	ErrorMessage      string         `gorm:"type:text"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (Consultation) TableName() string {
	return "consultations"
}

type GetConsultationParam struct {
	IDs    []uint  `json:"ids"`
	Status *string `json:"status"`
	Limit  *int    `json:"limit"`
}
