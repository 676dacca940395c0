package adoptions

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/store"

	"github.com/google/uuid"
)

const maxAnswerLen = 1000

// ProfileLookup evita depender del servicio de users completo.
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

type Service struct {
	repo     Repository
	animals  animals.Repository
	profiles ProfileLookup
	tx       store.TxRunner
	now      func() time.Time
}

func NewService(repo Repository, animalRepo animals.Repository, profiles ProfileLookup, tx store.TxRunner) *Service {
	if tx == nil {
		tx = store.NoTx{}
	}
	return &Service{
		repo:     repo,
		animals:  animalRepo,
		profiles: profiles,
		tx:       tx,
		now:      time.Now,
	}
}

type SubmitInput struct {
	AnimalID        string
	Answers         [3]string
	ValidIDRef      string
	SelfieWithIDRef string
}

// Submit crea la solicitud y reserva el animal en la misma transacción.
func (s *Service) Submit(ctx context.Context, actor auth.Claims, in SubmitInput) (Request, error) {
	userID := strings.TrimSpace(actor.UserID)
	if userID == "" {
		return Request{}, apperr.ErrForbidden
	}

	u, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return Request{}, err
	}
	if missing := u.MissingProfileFields(); len(missing) > 0 {
		f := apperr.Fields{}
		for _, m := range missing {
			f.Add("profile."+m, "required before requesting an adoption")
		}
		return Request{}, f.Err()
	}

	in.AnimalID = strings.TrimSpace(in.AnimalID)
	in.ValidIDRef = strings.TrimSpace(in.ValidIDRef)
	in.SelfieWithIDRef = strings.TrimSpace(in.SelfieWithIDRef)

	f := apperr.Fields{}
	if in.AnimalID == "" {
		f.Add("animal_id", "required")
	}
	for i := range in.Answers {
		in.Answers[i] = strings.TrimSpace(in.Answers[i])
		field := "answers[" + strconv.Itoa(i) + "]"
		switch {
		case in.Answers[i] == "":
			f.Add(field, "required")
		case len(in.Answers[i]) > maxAnswerLen:
			f.Add(field, "max 1000 chars")
		}
	}
	if in.ValidIDRef == "" {
		f.Add("valid_id_ref", "required")
	}
	if in.SelfieWithIDRef == "" {
		f.Add("selfie_with_id_ref", "required")
	}
	if err := f.Err(); err != nil {
		return Request{}, err
	}

	now := s.now().UTC()
	req := Request{
		ID:              uuid.NewString(),
		UserID:          userID,
		AnimalID:        in.AnimalID,
		Answers:         in.Answers,
		ValidIDRef:      in.ValidIDRef,
		SelfieWithIDRef: in.SelfieWithIDRef,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.animals.GetForUpdate(ctx, in.AnimalID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Invalid("animal_id", "animal does not exist")
			}
			return err
		}
		if a.IsAdopted {
			return apperr.Invalid("animal_id", "animal is already adopted")
		}
		if a.IsTemporarilyAdopted {
			return apperr.Invalid("animal_id", "animal already has a pending adoption request")
		}

		if err := s.repo.Create(ctx, req); err != nil {
			return err
		}
		a.IsTemporarilyAdopted = true
		a.UpdatedAt = now
		return s.animals.Update(ctx, a)
	})
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// List: staff ve todas, el adoptante solo las suyas.
func (s *Service) List(ctx context.Context, actor auth.Claims, status Status) ([]Request, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, apperr.ErrForbidden
	}
	filter := ListFilter{Status: status}
	if !actor.Role.IsStaff() {
		filter.UserID = actor.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, actor auth.Claims, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, apperr.ErrNotFound
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	// Ajena = inexistente para el adoptante.
	if !actor.Role.IsStaff() && req.UserID != actor.UserID {
		return Request{}, apperr.ErrNotFound
	}
	return req, nil
}
