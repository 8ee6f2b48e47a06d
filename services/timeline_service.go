// services/timeline_service.go
package services

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vaxtrack-backend/models"
	"vaxtrack-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// Grace period for upcoming vaccinations (days)
	GracePeriodDays = 14
	// Show as upcoming if within 30 days
	UpcomingWindowDays = 30
	// Window for the informational reminders preview on the timeline
	ReminderPreviewDays = 14
)

// Timeline status values
const (
	StatusCompleted = "COMPLETED"
	StatusUpcoming  = "UPCOMING"
	StatusDueNext   = "DUE_NEXT"
)

// Birth dose vaccines that should NOT show date ranges
var birthDoseVaccines = []string{
	"bcg",
	"opv-0",
	"opv0",
	"hepatitis b",
	"hepb",
	"hepatitis-b",
}

var (
	weeksRe   = regexp.MustCompile(`(\d+)\s*week`)
	monthsRe  = regexp.MustCompile(`(\d+)\s*month`)
	yearsRe   = regexp.MustCompile(`(\d+)\s*year`)
	doseKeyRe = regexp.MustCompile(`dose[_\s]*(\d+)`)
	digitsRe  = regexp.MustCompile(`(\d+)`)
)

// TimelineItem is one scheduled dose projected against the beneficiary's
// records. It is recomputed on every query and never persisted.
type TimelineItem struct {
	VaccineName    string     `json:"vaccineName"`
	VaccineCode    string     `json:"vaccineCode"`
	DoseLabel      string     `json:"doseLabel"`
	DoseNumber     int        `json:"doseNumber"`
	DueAge         string     `json:"dueAge"`
	DueAgeDays     int        `json:"dueAgeDays"`
	DueDate        time.Time  `json:"dueDate"`
	DateRangeStart *time.Time `json:"dateRangeStart"`
	DateRangeEnd   *time.Time `json:"dateRangeEnd"`
	Status         string     `json:"status"`
	Color          string     `json:"color"`
	VaccinatedOn   *time.Time `json:"vaccinatedOn"`
	VaccinationID  *uuid.UUID `json:"vaccinationId"`
	IsBirthDose    bool       `json:"isBirthDose"`
}

// ReminderPreview is an informational entry for doses coming up soon.
// Distinct from persisted reminders, which the reminder service owns.
type ReminderPreview struct {
	VaccineName   string    `json:"vaccineName"`
	DoseLabel     string    `json:"doseLabel"`
	DueDate       time.Time `json:"dueDate"`
	DueAge        string    `json:"dueAge"`
	DaysRemaining int       `json:"daysRemaining"`
	Status        string    `json:"status"`
	Color         string    `json:"color"`
}

type BeneficiarySummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	AgeWeeks    int       `json:"ageWeeks"`
	AgeDays     int       `json:"ageDays"`
}

type Timeline struct {
	Beneficiary BeneficiarySummary `json:"beneficiary"`
	Timeline    []TimelineItem     `json:"timeline"`
	Reminders   []ReminderPreview  `json:"reminders"`
}

// TimelineService calculates age-based vaccination timelines
type TimelineService struct {
	db *gorm.DB
}

func NewTimelineService(db *gorm.DB) *TimelineService {
	return &TimelineService{db: db}
}

// CalculateAgeInDays returns whole days between dob and the reference date
func CalculateAgeInDays(dob, reference time.Time) int {
	return utils.DaysBetween(dob, reference)
}

// CalculateAgeInWeeks returns whole weeks between dob and the reference date
func CalculateAgeInWeeks(dob, reference time.Time) int {
	return utils.DaysBetween(dob, reference) / 7
}

// ParseAgeToDays converts an age string to days.
// Examples: "At birth" -> 0, "6 weeks" -> 42, "9 months" -> 270, "5 years" -> 1825.
// Months use a fixed 30-day approximation; schedule windows absorb the drift.
// Unparseable strings fall back to 0 and are logged, never fatal.
func ParseAgeToDays(ageString string) int {
	ageLower := strings.ToLower(strings.TrimSpace(ageString))

	if strings.Contains(ageLower, "birth") || ageLower == "0" {
		return 0
	}

	if m := weeksRe.FindStringSubmatch(ageLower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 7
	}

	if m := monthsRe.FindStringSubmatch(ageLower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 30
	}

	if m := yearsRe.FindStringSubmatch(ageLower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 365
	}

	log.Printf("Unparseable age string %q, defaulting to 0 days", ageString)
	return 0
}

// IsBirthDoseVaccine reports whether a scheduled dose is a birth dose.
// Birth-age text alone is sufficient; a birth-vaccine name additionally
// needs a zero-dose marker.
func IsBirthDoseVaccine(vaccineName, ageString string) bool {
	vaccineLower := strings.ToLower(strings.TrimSpace(vaccineName))
	ageLower := strings.ToLower(strings.TrimSpace(ageString))

	isBirthAge := strings.Contains(ageLower, "birth") || ageLower == "0" || ageLower == "zero"

	isBirthVaccine := false
	for _, name := range birthDoseVaccines {
		if strings.Contains(vaccineLower, name) {
			isBirthVaccine = true
			break
		}
	}

	isZeroDose := strings.Contains(vaccineLower, "dose 0") ||
		strings.Contains(vaccineLower, "dose-0") ||
		strings.Contains(vaccineLower, "zero dose")

	return isBirthAge || (isBirthVaccine && isZeroDose) || isZeroDose
}

// VaccineWindowDays returns the number of days after the due date that the
// vaccine can still be given, per WHO/Indian immunization standards.
func VaccineWindowDays(ageString, vaccineName string) int {
	ageLower := strings.ToLower(strings.TrimSpace(ageString))
	vaccineLower := strings.ToLower(vaccineName)

	// At birth vaccines: BCG can be given up to 1 year, others 1 month
	if strings.Contains(ageLower, "birth") || ageLower == "0" {
		if strings.Contains(vaccineLower, "bcg") {
			return 365
		}
		return 30
	}

	// Early vaccines (6-14 weeks): 4 week window
	if m := weeksRe.FindStringSubmatch(ageLower); m != nil {
		weeks, _ := strconv.Atoi(m[1])
		if weeks <= 14 {
			return 28
		}
	}

	// 6, 9, 12, 15, 18 month vaccines: 4 week window
	if strings.Contains(ageLower, "month") {
		for _, n := range []string{"6", "9", "12", "15", "18"} {
			if strings.Contains(ageLower, n) {
				return 28
			}
		}
	}

	// 2-5 year vaccines: 1 month window
	if strings.Contains(ageLower, "year") {
		return 30
	}

	return 28
}

// DetermineStatus classifies one scheduled dose:
//   - COMPLETED: a vaccination record exists, regardless of when it was given
//   - UPCOMING: due within the next 30 days, or overdue by at most 30 days
//   - DUE_NEXT: further in the future
func DetermineStatus(hasVaccination bool, currentAgeDays, dueAgeDays int) string {
	if hasVaccination {
		return StatusCompleted
	}

	if currentAgeDays >= dueAgeDays {
		daysOverdue := currentAgeDays - dueAgeDays
		if daysOverdue <= GracePeriodDays {
			return StatusUpcoming
		}
		// Past grace period but still show as upcoming if within window
		if daysOverdue <= UpcomingWindowDays {
			return StatusUpcoming
		}
	}

	daysUntilDue := dueAgeDays - currentAgeDays
	if daysUntilDue >= 0 && daysUntilDue <= UpcomingWindowDays {
		return StatusUpcoming
	}

	return StatusDueNext
}

// StatusToColor maps a timeline status to a display color
func StatusToColor(status string) string {
	switch status {
	case StatusCompleted:
		return "GREEN"
	case StatusUpcoming:
		return "ORANGE"
	case StatusDueNext:
		return "GREY"
	default:
		return "GREY"
	}
}

// DoseNumberFromKey extracts the dose number from a schedule key like
// "dose_2" or "dose 2", defaulting to 1 when no digits are present
func DoseNumberFromKey(doseKey string) int {
	m := doseKeyRe.FindStringSubmatch(strings.ToLower(doseKey))
	if m == nil {
		m = digitsRe.FindStringSubmatch(doseKey)
	}
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n
}

// vaccinationKeys builds the lookup keys for one (vaccine, dose) pair.
// Multiple variants tolerate spacing and hyphenation differences between
// the catalog name and the name recorded at administration time.
func vaccinationKeys(vaccineName string, doseNumber int) []string {
	normalized := strings.ToLower(strings.TrimSpace(vaccineName))
	suffix := "_dose_" + strconv.Itoa(doseNumber)
	return []string{
		normalized + suffix,
		strings.ReplaceAll(normalized, " ", "_") + suffix,
		strings.ReplaceAll(normalized, "-", "_") + suffix,
	}
}

// buildVaccinationIndex indexes recorded vaccinations under every key
// variant so catalog lookups can try each in turn
func buildVaccinationIndex(vaccinations []models.Vaccination) map[string]*models.Vaccination {
	index := make(map[string]*models.Vaccination)
	for i := range vaccinations {
		vax := &vaccinations[i]
		for _, key := range vaccinationKeys(vax.VaccineName, vax.DoseNumber) {
			index[key] = vax
		}
	}
	return index
}

// matchVaccination finds the recorded vaccination for a catalog dose.
// Falls back to a name-only scan when no keyed match exists, so a recorded
// dose with a mismatched dose number still counts as given.
func matchVaccination(
	index map[string]*models.Vaccination,
	vaccinations []models.Vaccination,
	vaccineName string,
	doseNumber int,
) *models.Vaccination {
	for _, key := range vaccinationKeys(vaccineName, doseNumber) {
		if vax, ok := index[key]; ok {
			return vax
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(vaccineName))
	for i := range vaccinations {
		if strings.ToLower(strings.TrimSpace(vaccinations[i].VaccineName)) == normalized {
			return &vaccinations[i]
		}
	}
	return nil
}

// GetTimeline builds the vaccination timeline for a beneficiary (CHILD or
// ADULT): every scheduled dose of every active vaccine with status, color
// and due dates, sorted by due age, plus a short-range reminders preview.
func (s *TimelineService) GetTimeline(beneficiaryID uuid.UUID) (*Timeline, error) {
	var beneficiary models.Beneficiary
	if err := s.db.Where("id = ? AND is_active = ?", beneficiaryID, true).
		First(&beneficiary).Error; err != nil {
		return nil, err
	}

	var vaccines []models.VaccineMaster
	if err := s.db.Where("is_active = ?", true).Find(&vaccines).Error; err != nil {
		return nil, err
	}

	var vaccinations []models.Vaccination
	if err := s.db.Where("beneficiary_id = ? AND is_active = ?", beneficiaryID, true).
		Find(&vaccinations).Error; err != nil {
		return nil, err
	}

	index := buildVaccinationIndex(vaccinations)

	currentDate := time.Now()
	currentAgeDays := CalculateAgeInDays(beneficiary.DateOfBirth, currentDate)
	currentAgeWeeks := CalculateAgeInWeeks(beneficiary.DateOfBirth, currentDate)

	var items []TimelineItem

	for _, vaccine := range vaccines {
		if len(vaccine.DosageSchedule) > 0 {
			// Iterate dose keys in a stable order; map iteration is random
			doseKeys := make([]string, 0, len(vaccine.DosageSchedule))
			for key := range vaccine.DosageSchedule {
				doseKeys = append(doseKeys, key)
			}
			sort.Strings(doseKeys)

			for _, doseKey := range doseKeys {
				ageString := vaccine.DosageSchedule[doseKey]
				doseNumber := DoseNumberFromKey(doseKey)
				items = append(items, s.buildItem(
					&vaccine, doseNumber, ageString,
					index, vaccinations,
					beneficiary.DateOfBirth, currentAgeDays,
				))
			}
		} else if vaccine.RecommendedAgeStart != "" {
			// Single dose vaccine with recommended age
			items = append(items, s.buildItem(
				&vaccine, 1, vaccine.RecommendedAgeStart,
				index, vaccinations,
				beneficiary.DateOfBirth, currentAgeDays,
			))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DueAgeDays < items[j].DueAgeDays
	})

	return &Timeline{
		Beneficiary: BeneficiarySummary{
			ID:          beneficiary.ID,
			Name:        beneficiary.FullName(),
			DateOfBirth: beneficiary.DateOfBirth,
			AgeWeeks:    currentAgeWeeks,
			AgeDays:     currentAgeDays,
		},
		Timeline:  items,
		Reminders: buildReminderPreview(items, currentDate, ReminderPreviewDays),
	}, nil
}

func (s *TimelineService) buildItem(
	vaccine *models.VaccineMaster,
	doseNumber int,
	ageString string,
	index map[string]*models.Vaccination,
	vaccinations []models.Vaccination,
	dob time.Time,
	currentAgeDays int,
) TimelineItem {
	dueAgeDays := ParseAgeToDays(ageString)

	recorded := matchVaccination(index, vaccinations, vaccine.VaccineName, doseNumber)
	hasVaccination := recorded != nil

	status := DetermineStatus(hasVaccination, currentAgeDays, dueAgeDays)
	isBirthDose := IsBirthDoseVaccine(vaccine.VaccineName, ageString)

	dueDate := utils.BeginningOfDay(dob).AddDate(0, 0, dueAgeDays)

	// Birth doses are event-anchored, never range-anchored
	var rangeStart, rangeEnd *time.Time
	if !isBirthDose {
		windowDays := VaccineWindowDays(ageString, vaccine.VaccineName)
		start := dueDate
		end := dueDate.AddDate(0, 0, windowDays)
		rangeStart = &start
		rangeEnd = &end
	}

	ageLower := strings.ToLower(ageString)
	var doseLabel string
	if isBirthDose {
		if doseNumber == 0 || strings.Contains(ageLower, "zero") || strings.Contains(ageLower, "0") {
			doseLabel = "Zero Dose (Birth Dose)"
		} else {
			doseLabel = "Birth Dose"
		}
	} else {
		doseLabel = "Dose " + strconv.Itoa(doseNumber)
	}

	item := TimelineItem{
		VaccineName:    vaccine.VaccineName,
		VaccineCode:    vaccine.VaccineCode,
		DoseLabel:      doseLabel,
		DoseNumber:     doseNumber,
		DueAge:         ageString,
		DueAgeDays:     dueAgeDays,
		DueDate:        dueDate,
		DateRangeStart: rangeStart,
		DateRangeEnd:   rangeEnd,
		Status:         status,
		Color:          StatusToColor(status),
		IsBirthDose:    isBirthDose,
	}
	if recorded != nil {
		vaccinatedOn := recorded.VaccinationDate
		vaccinationID := recorded.ID
		item.VaccinatedOn = &vaccinatedOn
		item.VaccinationID = &vaccinationID
	}
	return item
}

// buildReminderPreview lists upcoming doses due within the next daysAhead
// days. Birth doses are excluded; they are event-based, not scheduled.
func buildReminderPreview(items []TimelineItem, currentDate time.Time, daysAhead int) []ReminderPreview {
	today := utils.BeginningOfDay(currentDate)
	targetDate := today.AddDate(0, 0, daysAhead)

	reminders := []ReminderPreview{}
	for _, item := range items {
		if item.IsBirthDose {
			continue
		}
		if item.Status != StatusUpcoming && item.Status != StatusDueNext {
			continue
		}
		if item.DueDate.Before(today) || item.DueDate.After(targetDate) {
			continue
		}
		reminders = append(reminders, ReminderPreview{
			VaccineName:   item.VaccineName,
			DoseLabel:     item.DoseLabel,
			DueDate:       item.DueDate,
			DueAge:        item.DueAge,
			DaysRemaining: utils.DaysBetween(today, item.DueDate),
			Status:        item.Status,
			Color:         item.Color,
		})
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].DaysRemaining < reminders[j].DaysRemaining
	})
	return reminders
}
