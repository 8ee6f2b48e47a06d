package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BeneficiaryTypeChild = "CHILD"
	BeneficiaryTypeAdult = "ADULT"
)

type Beneficiary struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null"`

	Type        string    `gorm:"type:varchar(10);not null"` // CHILD or ADULT
	FirstName   string    `gorm:"not null"`
	LastName    string    `gorm:"not null"`
	Gender      string    `gorm:"type:varchar(10)"`
	DateOfBirth time.Time `gorm:"type:date;index;not null"`
	IsActive    bool      `gorm:"default:true"`

	Vaccinations []Vaccination         `gorm:"foreignKey:BeneficiaryID"`
	Reminders    []VaccinationReminder `gorm:"foreignKey:BeneficiaryID"`

	gorm.Model
}

func (b *Beneficiary) BeforeCreate(tx *gorm.DB) (err error) {
	b.ID = uuid.New()
	return
}

func (b *Beneficiary) FullName() string {
	return b.FirstName + " " + b.LastName
}
