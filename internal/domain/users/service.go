package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/auth"
)

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

// RecordActivity provisiona el usuario desde los claims si no existe y sella lastActivityAt.
func (s *Service) RecordActivity(ctx context.Context, claims auth.Claims) error {
	id := strings.TrimSpace(claims.UserID)
	if id == "" {
		return apperr.ErrForbidden
	}
	now := s.now().UTC()

	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		role := claims.Role
		if role == "" {
			role = auth.RoleUser
		}
		return s.repo.Create(ctx, User{
			ID:             id,
			Name:           strings.TrimSpace(claims.Name),
			Email:          strings.TrimSpace(claims.Email),
			Role:           role,
			LastActivityAt: &now,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err != nil {
		return err
	}

	// El IAM manda sobre el rol.
	if claims.Role != "" && claims.Role != u.Role {
		u.Role = claims.Role
		u.UpdatedAt = now
		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
	}
	return s.repo.TouchActivity(ctx, id, now)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, apperr.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

type ProfileInput struct {
	Name            string
	LastName        string
	Email           string
	Address         string
	PhoneNumber     string
	Age             *int
	Gender          Gender
	CivilStatus     string
	ProfilePhotoRef string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.CivilStatus = strings.TrimSpace(in.CivilStatus)
	in.ProfilePhotoRef = strings.TrimSpace(in.ProfilePhotoRef)

	f := apperr.Fields{}
	if in.Name == "" {
		f.Add("name", "required")
	} else if len(in.Name) > 255 {
		f.Add("name", "max 255 chars")
	}
	if in.Email == "" {
		f.Add("email", "required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		f.Add("email", "invalid email")
	}
	if len(in.Address) > 255 {
		f.Add("address", "max 255 chars")
	}
	if in.PhoneNumber != "" && !isDigits(in.PhoneNumber, 11) {
		f.Add("phone_number", "must be 11 digits")
	}
	if in.Age != nil && *in.Age < 0 {
		f.Add("age", "must be >= 0")
	}
	switch in.Gender {
	case "", GenderMale, GenderFemale, GenderOther:
	default:
		f.Add("gender", "must be male, female or other")
	}
	if len(in.CivilStatus) > 50 {
		f.Add("civil_status", "max 50 chars")
	}
	if err := f.Err(); err != nil {
		return User{}, err
	}

	u.Name = in.Name
	u.LastName = in.LastName
	u.Email = in.Email
	u.Address = in.Address
	u.PhoneNumber = in.PhoneNumber
	u.Age = in.Age
	u.Gender = in.Gender
	u.CivilStatus = in.CivilStatus
	if in.ProfilePhotoRef != "" {
		u.ProfilePhotoRef = in.ProfilePhotoRef
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
