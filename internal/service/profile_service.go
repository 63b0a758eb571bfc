package service

import (
	"context"
	"strings"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// ProfileService stores the public user records created after registration.
type ProfileService struct {
	profiles repository.ProfileRepository
}

// NewProfileService constructs the service.
func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Register upserts the profile keyed by email.
func (s *ProfileService) Register(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, err
	}
	profile.Email = email
	profile.Name = strings.TrimSpace(profile.Name)
	profile.PhotoURL = strings.TrimSpace(profile.PhotoURL)
	if err := s.profiles.Upsert(ctx, &profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &profile, nil
}

// Get returns the profile for email.
func (s *ProfileService) Get(ctx context.Context, email string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "profile", "email", email)
	}
	return profile, nil
}
