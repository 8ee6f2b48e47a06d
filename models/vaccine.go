package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoseSchedule maps dose keys to age strings,
// e.g. {"dose_1": "At birth", "dose_2": "6 weeks"}
type DoseSchedule map[string]string

func (d DoseSchedule) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *DoseSchedule) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, d)
}

type VaccineMaster struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	VaccineCode string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	VaccineName string    `gorm:"not null;index"`
	Description string    `gorm:"type:text"`

	TotalDoses     int          `gorm:"default:1;not null"`
	DosageSchedule DoseSchedule `gorm:"type:jsonb"`

	// Single-dose fallback when no dosage schedule is set, e.g. "9 months"
	RecommendedAgeStart string `gorm:"type:varchar(50)"`
	RecommendedAgeEnd   string `gorm:"type:varchar(50)"`

	IsActive bool `gorm:"default:true"`

	gorm.Model
}

func (v *VaccineMaster) BeforeCreate(tx *gorm.DB) (err error) {
	v.ID = uuid.New()
	return
}
