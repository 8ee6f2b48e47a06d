package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vaccination is a recorded administered dose. Once recorded it is a fact:
// the timeline always shows a matched dose as COMPLETED regardless of when
// it was given relative to the due date.
type Vaccination struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	BeneficiaryID uuid.UUID `gorm:"type:uuid;index;not null"`
	VaccineID     uuid.UUID `gorm:"type:uuid;index"`

	VaccineName     string    `gorm:"not null"`
	DoseNumber      int       `gorm:"default:1;not null"`
	VaccinationDate time.Time `gorm:"type:date;index;not null"`

	AdministeredBy string
	BatchNumber    string `gorm:"type:varchar(100)"`
	Notes          string `gorm:"type:text"`
	IsActive       bool   `gorm:"default:true"`

	gorm.Model
}

func (v *Vaccination) BeforeCreate(tx *gorm.DB) (err error) {
	v.ID = uuid.New()
	return
}
