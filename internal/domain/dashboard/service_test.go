package dashboard

import (
	"bytes"
	"context"
	"testing"
	"time"

	mem "noahs-ark/internal/adapters/storage/memory"
	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func newSeededService(t *testing.T) *Service {
	t.Helper()
	db := mem.NewDB()
	animalRepo := mem.NewAnimalRepo(db)
	requests := mem.NewAdoptionRepo(db)
	reports := mem.NewAbuseReportRepo(db)
	ctx := context.Background()

	seedAnimals := []animals.Animal{
		{ID: "a-1", Species: "dog", IsAdopted: true, CreatedAt: day(2025, 3, 1)},
		{ID: "a-2", Species: "dog", CreatedAt: day(2026, 1, 5)},
		{ID: "a-3", Species: "cat", IsAdopted: true, CreatedAt: day(2026, 2, 7)},
	}
	for _, a := range seedAnimals {
		require.NoError(t, animalRepo.Create(ctx, a))
	}

	seedRequests := []adoptions.Request{
		{ID: "r-1", AnimalID: "a-1", Status: adoptions.StatusApproved, UpdatedAt: day(2025, 4, 2)},
		{ID: "r-2", AnimalID: "a-3", Status: adoptions.StatusApproved, UpdatedAt: day(2026, 3, 9)},
		{ID: "r-3", AnimalID: "a-2", Status: adoptions.StatusRejected, UpdatedAt: day(2026, 3, 10)},
	}
	for _, r := range seedRequests {
		require.NoError(t, requests.Create(ctx, r))
	}

	seedReports := []abusereports.Report{
		{ID: "ar-1", Status: abusereports.StatusPending, CreatedAt: day(2026, 3, 1), PhotoRefs: []string{}, VideoRefs: []string{}},
		{ID: "ar-2", Status: abusereports.StatusApproved, CreatedAt: day(2026, 3, 20), PhotoRefs: []string{}, VideoRefs: []string{}},
		{ID: "ar-3", Status: abusereports.StatusPending, CreatedAt: day(2025, 12, 1), PhotoRefs: []string{}, VideoRefs: []string{}},
	}
	for _, r := range seedReports {
		require.NoError(t, reports.Create(ctx, r))
	}

	svc := NewService(animalRepo, requests, reports)
	svc.now = func() time.Time { return day(2026, 6, 1) }
	return svc
}

func TestService_Stats_CurrentYear(t *testing.T) {
	svc := newSeededService(t)

	st, err := svc.Stats(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2026, st.Year)
	assert.Equal(t, []int{2026, 2025}, st.AvailableYears)
	assert.Equal(t, 3, st.TotalAnimals)
	assert.Equal(t, 2, st.AdoptedAnimals)
	assert.Equal(t, 2, st.PendingReports)
	assert.Equal(t, []Bucket{{Label: "cat", Count: 1}, {Label: "dog", Count: 2}}, st.Species)
	assert.Equal(t, []Bucket{{Label: "2026-03", Count: 1}}, st.AdoptionsPerMonth)
	assert.Equal(t, []Bucket{{Label: "2026-03", Count: 2}}, st.ReportsPerMonth)
}

func TestService_Stats_PastYear(t *testing.T) {
	svc := newSeededService(t)

	st, err := svc.Stats(context.Background(), 2025)
	require.NoError(t, err)

	assert.Equal(t, []Bucket{{Label: "2025-04", Count: 1}}, st.AdoptionsPerMonth)
	assert.Equal(t, []Bucket{{Label: "2025-12", Count: 1}}, st.ReportsPerMonth)
}

func TestService_Export_Workbook(t *testing.T) {
	svc := newSeededService(t)

	b, err := svc.Export(context.Background(), 2026)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Species", "Adoptions", "Abuse reports"}, f.GetSheetList())

	v, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	v, err = f.GetCellValue("Species", "A3")
	require.NoError(t, err)
	assert.Equal(t, "dog", v)

	v, err = f.GetCellValue("Abuse reports", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}
