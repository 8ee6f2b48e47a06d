package services

import (
	"testing"
	"time"

	"vaxtrack-backend/models"
	"vaxtrack-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgeToDays(t *testing.T) {
	tests := []struct {
		age  string
		want int
	}{
		{"At birth", 0},
		{"at Birth", 0},
		{"0", 0},
		{"6 weeks", 42},
		{"10 weeks", 70},
		{"14 weeks", 98},
		{"6weeks", 42},
		{"9 months", 270},
		{"15 months", 450},
		{"18 months", 540},
		{"5 years", 1825},
		{"2 years", 730},
		{"  6 Weeks  ", 42},
		{"when convenient", 0}, // unparseable falls back to 0
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAgeToDays(tt.age))
		})
	}
}

func TestVaccineWindowDays(t *testing.T) {
	tests := []struct {
		name    string
		age     string
		vaccine string
		want    int
	}{
		{"BCG at birth has a one year window", "At birth", "BCG", 365},
		{"other birth vaccines have a one month window", "At birth", "Hepatitis B", 30},
		{"early week vaccines", "6 weeks", "DPT", 28},
		{"week fourteen still counts as early", "14 weeks", "OPV", 28},
		{"9 month vaccines", "9 months", "MMR", 28},
		{"18 month boosters", "18 months", "DPT Booster", 28},
		{"year-based vaccines", "5 years", "DPT Booster 2", 30},
		{"default window", "20 weeks", "Typhoid", 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VaccineWindowDays(tt.age, tt.vaccine))
		})
	}
}

func TestIsBirthDoseVaccine(t *testing.T) {
	tests := []struct {
		name    string
		vaccine string
		age     string
		want    bool
	}{
		{"birth age text alone is sufficient", "DPT", "At birth", true},
		{"zero age is birth", "Hepatitis B", "0", true},
		{"birth vaccine name alone is not sufficient", "BCG", "6 weeks", false},
		{"birth vaccine name with zero dose marker", "OPV-0 Zero Dose", "6 weeks", true},
		{"zero dose marker alone is sufficient", "Polio Dose 0", "6 weeks", true},
		{"regular vaccine", "MMR", "9 months", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBirthDoseVaccine(tt.vaccine, tt.age))
		})
	}
}

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name           string
		hasVaccination bool
		currentAgeDays int
		dueAgeDays     int
		want           string
	}{
		{"vaccinated is always completed", true, 200, 42, StatusCompleted},
		{"vaccinated late is still completed", true, 500, 42, StatusCompleted},
		{"eight days overdue is upcoming", false, 50, 42, StatusUpcoming},
		{"within grace period", false, 50, 40, StatusUpcoming},
		{"thirty days overdue is still upcoming", false, 72, 42, StatusUpcoming},
		{"due within the next thirty days", false, 20, 42, StatusUpcoming},
		{"due today", false, 42, 42, StatusUpcoming},
		{"far in the future", false, 0, 270, StatusDueNext},
		// More than 30 days overdue falls through to DUE_NEXT
		{"seventy-nine days overdue", false, 121, 42, StatusDueNext},
		{"birth dose at day 300 without a record", false, 300, 0, StatusDueNext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineStatus(tt.hasVaccination, tt.currentAgeDays, tt.dueAgeDays))
		})
	}
}

func TestStatusToColor(t *testing.T) {
	assert.Equal(t, "GREEN", StatusToColor(StatusCompleted))
	assert.Equal(t, "ORANGE", StatusToColor(StatusUpcoming))
	assert.Equal(t, "GREY", StatusToColor(StatusDueNext))
	assert.Equal(t, "GREY", StatusToColor("UNKNOWN"))
}

func TestDoseNumberFromKey(t *testing.T) {
	assert.Equal(t, 1, DoseNumberFromKey("dose_1"))
	assert.Equal(t, 2, DoseNumberFromKey("dose_2"))
	assert.Equal(t, 3, DoseNumberFromKey("dose 3"))
	assert.Equal(t, 2, DoseNumberFromKey("2nd"))
	assert.Equal(t, 1, DoseNumberFromKey("booster"))
}

func TestMatchVaccination(t *testing.T) {
	vaccinations := []models.Vaccination{
		{ID: uuid.New(), VaccineName: "Hepatitis-B", DoseNumber: 1},
		{ID: uuid.New(), VaccineName: "dpt", DoseNumber: 2},
	}
	index := buildVaccinationIndex(vaccinations)

	t.Run("hyphen and space variants match", func(t *testing.T) {
		// Catalog says "Hepatitis B", record says "Hepatitis-B"
		match := matchVaccination(index, vaccinations, "Hepatitis B", 1)
		require.NotNil(t, match)
		assert.Equal(t, vaccinations[0].ID, match.ID)
	})

	t.Run("case and whitespace are normalized", func(t *testing.T) {
		match := matchVaccination(index, vaccinations, "  DPT ", 2)
		require.NotNil(t, match)
		assert.Equal(t, vaccinations[1].ID, match.ID)
	})

	t.Run("falls back to name-only match when dose number differs", func(t *testing.T) {
		match := matchVaccination(index, vaccinations, "DPT", 3)
		require.NotNil(t, match)
		assert.Equal(t, vaccinations[1].ID, match.ID)
	})

	t.Run("no match for unrecorded vaccine", func(t *testing.T) {
		assert.Nil(t, matchVaccination(index, vaccinations, "MMR", 1))
	})
}

func TestGetTimeline(t *testing.T) {
	db := newTestDB(t)
	service := NewTimelineService(db)

	today := utils.BeginningOfDay(time.Now())
	dob := today.AddDate(0, 0, -50)

	beneficiary := models.Beneficiary{
		AccountID:   uuid.New(),
		Type:        models.BeneficiaryTypeChild,
		FirstName:   "Asha",
		LastName:    "Kumar",
		DateOfBirth: dob,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&beneficiary).Error)

	bcg := models.VaccineMaster{
		VaccineCode:         "BCG",
		VaccineName:         "BCG",
		TotalDoses:          1,
		RecommendedAgeStart: "At birth",
		IsActive:            true,
	}
	opv := models.VaccineMaster{
		VaccineCode:         "OPV",
		VaccineName:         "OPV",
		TotalDoses:          1,
		RecommendedAgeStart: "6 weeks",
		IsActive:            true,
	}
	dpt := models.VaccineMaster{
		VaccineCode: "DPT",
		VaccineName: "DPT",
		TotalDoses:  3,
		DosageSchedule: models.DoseSchedule{
			"dose_1": "6 weeks",
			"dose_2": "8 weeks",
			"dose_3": "14 weeks",
		},
		IsActive: true,
	}
	mmr := models.VaccineMaster{
		VaccineCode:         "MMR",
		VaccineName:         "MMR",
		TotalDoses:          1,
		RecommendedAgeStart: "9 months",
		IsActive:            true,
	}
	require.NoError(t, db.Create(&bcg).Error)
	require.NoError(t, db.Create(&opv).Error)
	require.NoError(t, db.Create(&dpt).Error)
	require.NoError(t, db.Create(&mmr).Error)

	// OPV given three days late, should still be COMPLETED
	vaccination := models.Vaccination{
		BeneficiaryID:   beneficiary.ID,
		VaccineID:       opv.ID,
		VaccineName:     "OPV",
		DoseNumber:      1,
		VaccinationDate: dob.AddDate(0, 0, 45),
		IsActive:        true,
	}
	require.NoError(t, db.Create(&vaccination).Error)

	timeline, err := service.GetTimeline(beneficiary.ID)
	require.NoError(t, err)

	assert.Equal(t, "Asha Kumar", timeline.Beneficiary.Name)
	assert.Equal(t, 50, timeline.Beneficiary.AgeDays)
	assert.Equal(t, 7, timeline.Beneficiary.AgeWeeks)

	require.Len(t, timeline.Timeline, 6)

	// Sorted ascending by due age
	for i := 1; i < len(timeline.Timeline); i++ {
		assert.GreaterOrEqual(t,
			timeline.Timeline[i].DueAgeDays,
			timeline.Timeline[i-1].DueAgeDays)
	}

	byDose := map[string]TimelineItem{}
	for _, item := range timeline.Timeline {
		byDose[item.VaccineCode+"/"+item.DoseLabel] = item
	}

	// Birth dose: no date range, ever
	bcgItem := byDose["BCG/Birth Dose"]
	assert.True(t, bcgItem.IsBirthDose)
	assert.Nil(t, bcgItem.DateRangeStart)
	assert.Nil(t, bcgItem.DateRangeEnd)
	assert.True(t, bcgItem.DueDate.Equal(dob))

	// Administered dose is COMPLETED regardless of being late
	opvItem := byDose["OPV/Dose 1"]
	assert.Equal(t, StatusCompleted, opvItem.Status)
	assert.Equal(t, "GREEN", opvItem.Color)
	require.NotNil(t, opvItem.VaccinatedOn)
	require.NotNil(t, opvItem.VaccinationID)
	assert.Equal(t, vaccination.ID, *opvItem.VaccinationID)

	// Eight days overdue, inside the upcoming window
	dpt1 := byDose["DPT/Dose 1"]
	assert.Equal(t, StatusUpcoming, dpt1.Status)
	assert.Equal(t, "ORANGE", dpt1.Color)

	// Due in 6 days (day 56 vs current day 50)
	dpt2 := byDose["DPT/Dose 2"]
	assert.Equal(t, StatusUpcoming, dpt2.Status)
	assert.Equal(t, 56, dpt2.DueAgeDays)
	require.NotNil(t, dpt2.DateRangeStart)
	require.NotNil(t, dpt2.DateRangeEnd)
	assert.True(t, dpt2.DateRangeStart.Equal(dob.AddDate(0, 0, 56)))
	assert.True(t, dpt2.DateRangeEnd.Equal(dob.AddDate(0, 0, 56+28)))
	assert.True(t, dpt2.DueDate.Equal(dob.AddDate(0, 0, 56)))

	// Day 98 is 48 days out, beyond the upcoming window
	dpt3 := byDose["DPT/Dose 3"]
	assert.Equal(t, StatusDueNext, dpt3.Status)

	mmrItem := byDose["MMR/Dose 1"]
	assert.Equal(t, StatusDueNext, mmrItem.Status)
	assert.Equal(t, 270, mmrItem.DueAgeDays)

	// Preview holds only non-birth doses due within the next 14 days;
	// dose 1's due date already passed, so only dose 2 qualifies
	require.Len(t, timeline.Reminders, 1)
	assert.Equal(t, "DPT", timeline.Reminders[0].VaccineName)
	assert.Equal(t, "Dose 2", timeline.Reminders[0].DoseLabel)
	assert.Equal(t, 6, timeline.Reminders[0].DaysRemaining)
}

func TestGetTimelineNameOnlyFallbackConflatesDoses(t *testing.T) {
	db := newTestDB(t)
	service := NewTimelineService(db)

	today := utils.BeginningOfDay(time.Now())
	beneficiary := models.Beneficiary{
		AccountID:   uuid.New(),
		Type:        models.BeneficiaryTypeChild,
		FirstName:   "Asha",
		LastName:    "Kumar",
		DateOfBirth: today.AddDate(0, 0, -50),
		IsActive:    true,
	}
	require.NoError(t, db.Create(&beneficiary).Error)

	dpt := models.VaccineMaster{
		VaccineCode: "DPT",
		VaccineName: "DPT",
		TotalDoses:  2,
		DosageSchedule: models.DoseSchedule{
			"dose_1": "6 weeks",
			"dose_2": "10 weeks",
		},
		IsActive: true,
	}
	require.NoError(t, db.Create(&dpt).Error)

	vaccination := models.Vaccination{
		BeneficiaryID:   beneficiary.ID,
		VaccineID:       dpt.ID,
		VaccineName:     "DPT",
		DoseNumber:      1,
		VaccinationDate: beneficiary.DateOfBirth.AddDate(0, 0, 42),
		IsActive:        true,
	}
	require.NoError(t, db.Create(&vaccination).Error)

	timeline, err := service.GetTimeline(beneficiary.ID)
	require.NoError(t, err)
	require.Len(t, timeline.Timeline, 2)

	// The name-only fallback ignores dose numbers: a single recorded dose
	// marks every dose of that vaccine as COMPLETED
	for _, item := range timeline.Timeline {
		assert.Equal(t, StatusCompleted, item.Status)
	}
}

func TestGetTimelineUnknownBeneficiary(t *testing.T) {
	db := newTestDB(t)
	service := NewTimelineService(db)

	_, err := service.GetTimeline(uuid.New())
	assert.Error(t, err)
}

func TestGetTimelineUnparseableAgeSpec(t *testing.T) {
	db := newTestDB(t)
	service := NewTimelineService(db)

	today := utils.BeginningOfDay(time.Now())
	beneficiary := models.Beneficiary{
		AccountID:   uuid.New(),
		Type:        models.BeneficiaryTypeChild,
		FirstName:   "Ravi",
		LastName:    "Patel",
		DateOfBirth: today.AddDate(0, 0, -100),
		IsActive:    true,
	}
	require.NoError(t, db.Create(&beneficiary).Error)

	vaccine := models.VaccineMaster{
		VaccineCode:         "FLU",
		VaccineName:         "Influenza",
		TotalDoses:          1,
		RecommendedAgeStart: "when convenient",
		IsActive:            true,
	}
	require.NoError(t, db.Create(&vaccine).Error)

	// Bad schedule data degrades to a due age of 0, never an error
	timeline, err := service.GetTimeline(beneficiary.ID)
	require.NoError(t, err)
	require.Len(t, timeline.Timeline, 1)
	assert.Equal(t, 0, timeline.Timeline[0].DueAgeDays)
	assert.True(t, timeline.Timeline[0].DueDate.Equal(beneficiary.DateOfBirth))
}
