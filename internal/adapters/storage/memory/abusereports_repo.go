package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/platform/apperr"
)

type abuseReportRepo struct {
	db *DB
}

func NewAbuseReportRepo(db *DB) abusereports.Repository {
	return &abuseReportRepo{db: db}
}

func (r *abuseReportRepo) Create(ctx context.Context, rep abusereports.Report) error {
	defer r.db.lockWrite(ctx)()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("abuse report id required")
	}
	if _, exists := r.db.reports[rep.ID]; exists {
		return apperr.ErrConflict
	}
	r.db.reports[rep.ID] = cloneReport(rep)
	return nil
}

func (r *abuseReportRepo) Update(ctx context.Context, rep abusereports.Report) error {
	defer r.db.lockWrite(ctx)()

	if _, exists := r.db.reports[rep.ID]; !exists {
		return apperr.ErrNotFound
	}
	r.db.reports[rep.ID] = cloneReport(rep)
	return nil
}

func (r *abuseReportRepo) GetByID(ctx context.Context, id string) (abusereports.Report, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rep, ok := r.db.reports[id]
	if !ok {
		return abusereports.Report{}, apperr.ErrNotFound
	}
	return cloneReport(rep), nil
}

func (r *abuseReportRepo) GetForUpdate(ctx context.Context, id string) (abusereports.Report, error) {
	return r.GetByID(ctx, id)
}

func (r *abuseReportRepo) List(ctx context.Context, filter abusereports.ListFilter) ([]abusereports.Report, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]abusereports.Report, 0)
	for _, rep := range r.db.reports {
		if filter.UserID != "" && rep.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		out = append(out, cloneReport(rep))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// los slices de refs no se comparten con el llamador
func cloneReport(rep abusereports.Report) abusereports.Report {
	rep.PhotoRefs = append([]string{}, rep.PhotoRefs...)
	rep.VideoRefs = append([]string{}, rep.VideoRefs...)
	return rep
}
