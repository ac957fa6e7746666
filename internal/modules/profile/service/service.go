package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/modules/profile/dto"
	repo "github.com/DukeZhu95/classroom-backend/internal/modules/profile/repository"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/DukeZhu95/classroom-backend/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvatarUpload carries an uploaded avatar image from the handler.
type AvatarUpload struct {
	Reader   io.Reader
	FileName string
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID, role string) (any, error)
	UpdateStudentProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateStudentProfileRequest, avatar *AvatarUpload) (*dto.StudentProfileResponse, error)
	UpdateTeacherProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateTeacherProfileRequest, avatar *AvatarUpload) (*dto.TeacherProfileResponse, error)
	DeleteTeacherProfile(ctx context.Context, userID uuid.UUID) error
}

type profileService struct {
	profileRepo repo.ProfileRepository
	fileStorage storage.FileStorage
}

func NewProfileService(profileRepo repo.ProfileRepository, fileStorage storage.FileStorage) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		fileStorage: fileStorage,
	}
}

// GetProfile returns the profile matching the caller's role. A user who has
// never edited their profile gets a not-found: profiles are created lazily on
// first update.
func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID, role string) (any, error) {
	switch role {
	case entity.RoleStudent:
		profile, err := s.profileRepo.FindStudentByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		resp := dto.NewStudentProfileResponse(profile, s.resolveAvatar(profile.AvatarID))
		return &resp, nil
	case entity.RoleTeacher:
		profile, err := s.profileRepo.FindTeacherByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		resp := dto.NewTeacherProfileResponse(profile, s.resolveAvatar(profile.AvatarID))
		return &resp, nil
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, apperror.ErrUnauthorized)
	}
}

func (s *profileService) UpdateStudentProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateStudentProfileRequest, avatar *AvatarUpload) (*dto.StudentProfileResponse, error) {
	profile, err := s.profileRepo.FindStudentByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		profile = &entity.StudentProfile{UserID: userID}
	}

	profile.FirstName = req.FirstName
	profile.LastName = req.LastName
	profile.Bio = req.Bio
	profile.City = req.City
	profile.Country = req.Country
	profile.GradeLevel = req.GradeLevel
	profile.SchoolName = req.SchoolName

	oldAvatarID, err := s.applyAvatar(ctx, &profile.AvatarID, avatar)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveStudent(ctx, profile); err != nil {
		return nil, err
	}

	s.cleanupOldAvatar(ctx, oldAvatarID, profile.AvatarID)

	resp := dto.NewStudentProfileResponse(profile, s.resolveAvatar(profile.AvatarID))
	return &resp, nil
}

func (s *profileService) UpdateTeacherProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateTeacherProfileRequest, avatar *AvatarUpload) (*dto.TeacherProfileResponse, error) {
	profile, err := s.profileRepo.FindTeacherByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		profile = &entity.TeacherProfile{UserID: userID}
	}

	profile.FirstName = req.FirstName
	profile.LastName = req.LastName
	profile.Bio = req.Bio
	profile.City = req.City
	profile.Country = req.Country
	profile.Subject = req.Subject
	profile.Qualification = req.Qualification

	oldAvatarID, err := s.applyAvatar(ctx, &profile.AvatarID, avatar)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.SaveTeacher(ctx, profile); err != nil {
		return nil, err
	}

	s.cleanupOldAvatar(ctx, oldAvatarID, profile.AvatarID)

	resp := dto.NewTeacherProfileResponse(profile, s.resolveAvatar(profile.AvatarID))
	return &resp, nil
}

// DeleteTeacherProfile removes the teacher's profile row. The avatar blob is
// deleted best-effort after the row is gone.
func (s *profileService) DeleteTeacherProfile(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.profileRepo.FindTeacherByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := s.profileRepo.DeleteTeacher(ctx, profile); err != nil {
		return err
	}

	if profile.AvatarID != nil && s.fileStorage != nil {
		if err := s.fileStorage.Delete(ctx, *profile.AvatarID); err != nil {
			log.Printf("failed to delete avatar %s: %v", *profile.AvatarID, err)
		}
	}

	return nil
}

// applyAvatar uploads a new avatar (upload failure aborts the update) and
// swaps its ID in. It returns the replaced ID so the caller can clean it up
// after the row write succeeds.
func (s *profileService) applyAvatar(ctx context.Context, avatarID **string, avatar *AvatarUpload) (*string, error) {
	if avatar == nil {
		return nil, nil
	}
	if s.fileStorage == nil {
		return nil, fmt.Errorf("file storage is not configured: %w", apperror.ErrInternal)
	}

	newID, err := s.fileStorage.Upload(ctx, avatar.Reader, "avatars", avatar.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	oldID := *avatarID
	*avatarID = &newID
	return oldID, nil
}

func (s *profileService) cleanupOldAvatar(ctx context.Context, oldID, newID *string) {
	if oldID == nil || s.fileStorage == nil {
		return
	}
	if newID != nil && *oldID == *newID {
		return
	}
	if err := s.fileStorage.Delete(ctx, *oldID); err != nil {
		log.Printf("failed to delete replaced avatar %s: %v", *oldID, err)
	}
}

func (s *profileService) resolveAvatar(avatarID *string) *string {
	if avatarID == nil || s.fileStorage == nil {
		return nil
	}
	url, err := s.fileStorage.ResolveURL(*avatarID)
	if err != nil {
		log.Printf("failed to resolve avatar URL for %s: %v", *avatarID, err)
		return nil
	}
	return &url
}
