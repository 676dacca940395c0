package abusereports

import (
	"context"
	"path"
	"strings"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/auth"

	"github.com/google/uuid"
)

const maxDescriptionLen = 2000

var videoExt = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mpeg": {}, ".mpg": {},
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type SubmitInput struct {
	Description string
	PhotoRefs   []string
	VideoRefs   []string
}

func (s *Service) Submit(ctx context.Context, actor auth.Claims, in SubmitInput) (Report, error) {
	userID := strings.TrimSpace(actor.UserID)
	if userID == "" {
		return Report{}, apperr.ErrForbidden
	}

	desc := strings.TrimSpace(in.Description)
	f := apperr.Fields{}
	switch {
	case desc == "":
		f.Add("description", "required")
	case len(desc) > maxDescriptionLen:
		f.Add("description", "max 2000 chars")
	}
	photos := cleanRefs(in.PhotoRefs)
	videos := cleanRefs(in.VideoRefs)
	for _, v := range videos {
		if _, ok := videoExt[strings.ToLower(path.Ext(v))]; !ok {
			f.Add("video_refs", "videos must be mp4, avi or mpeg")
			break
		}
	}
	if err := f.Err(); err != nil {
		return Report{}, err
	}

	now := s.now().UTC()
	rep := Report{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: desc,
		PhotoRefs:   photos,
		VideoRefs:   videos,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return Report{}, err
	}
	return rep, nil
}

func (s *Service) List(ctx context.Context, actor auth.Claims, status Status) ([]Report, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, apperr.ErrForbidden
	}
	filter := ListFilter{Status: status}
	if !actor.Role.IsStaff() {
		filter.UserID = actor.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, actor auth.Claims, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, apperr.ErrNotFound
	}
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if !actor.Role.IsStaff() && rep.UserID != actor.UserID {
		return Report{}, apperr.ErrNotFound
	}
	return rep, nil
}

func cleanRefs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
