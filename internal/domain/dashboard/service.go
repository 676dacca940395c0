package dashboard

import (
	"context"
	"sort"
	"time"

	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"
)

type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Stats struct {
	Year           int   `json:"year"`
	AvailableYears []int `json:"available_years"`

	TotalAnimals   int `json:"total_animals"`
	AdoptedAnimals int `json:"adopted_animals"`
	PendingReports int `json:"pending_reports"`

	Species           []Bucket `json:"species"`
	AdoptionsPerMonth []Bucket `json:"adoptions_per_month"`
	ReportsPerMonth   []Bucket `json:"reports_per_month"`
}

type Service struct {
	animals  animals.Repository
	requests adoptions.Repository
	reports  abusereports.Repository
	now      func() time.Time
}

func NewService(animalRepo animals.Repository, requests adoptions.Repository, reports abusereports.Repository) *Service {
	return &Service{
		animals:  animalRepo,
		requests: requests,
		reports:  reports,
		now:      time.Now,
	}
}

// Stats calcula los totales y las series mensuales del año (0 = año actual).
// Adopciones por mes = solicitudes aprobadas, agrupadas por la fecha de la decisión.
func (s *Service) Stats(ctx context.Context, year int) (Stats, error) {
	if year <= 0 {
		year = s.now().UTC().Year()
	}

	all, err := s.animals.List(ctx, animals.ListFilter{})
	if err != nil {
		return Stats{}, err
	}
	approved, err := s.requests.List(ctx, adoptions.ListFilter{Status: adoptions.StatusApproved})
	if err != nil {
		return Stats{}, err
	}
	reports, err := s.reports.List(ctx, abusereports.ListFilter{})
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Year: year, TotalAnimals: len(all)}

	years := map[int]struct{}{}
	species := map[string]int{}
	for _, a := range all {
		if a.IsAdopted {
			st.AdoptedAnimals++
		}
		species[a.Species]++
		years[a.CreatedAt.UTC().Year()] = struct{}{}
	}
	st.Species = sortedBuckets(species)

	adoptionsByMonth := map[string]int{}
	for _, r := range approved {
		t := r.UpdatedAt.UTC()
		if t.Year() == year {
			adoptionsByMonth[t.Format("2006-01")]++
		}
	}
	st.AdoptionsPerMonth = sortedBuckets(adoptionsByMonth)

	reportsByMonth := map[string]int{}
	for _, r := range reports {
		if r.Status == abusereports.StatusPending {
			st.PendingReports++
		}
		t := r.CreatedAt.UTC()
		if t.Year() == year {
			reportsByMonth[t.Format("2006-01")]++
		}
	}
	st.ReportsPerMonth = sortedBuckets(reportsByMonth)

	st.AvailableYears = make([]int, 0, len(years))
	for y := range years {
		st.AvailableYears = append(st.AvailableYears, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(st.AvailableYears)))

	return st, nil
}

func sortedBuckets(m map[string]int) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, v := range m {
		out = append(out, Bucket{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
