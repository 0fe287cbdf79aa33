package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"gorm.io/gorm"
)

const (
	DefaultCreatorPageSize = 50
	MaxCreatorPageSize     = 100
)

// ProfileService owns creator and business marketplace profiles
type ProfileService interface {
	// CreatorExists reports whether userID has a creator profile
	CreatorExists(ctx context.Context, userID string) (bool, error)

	// DisplayInfo returns the name and photo shown for a party.
	// Unknown users resolve to an empty DisplayInfo.
	DisplayInfo(ctx context.Context, userID string) (models.DisplayInfo, error)

	UpsertCreatorProfile(ctx context.Context, actor models.Actor, profile models.CreatorProfile) (*models.CreatorProfile, error)
	UpsertBusinessProfile(ctx context.Context, actor models.Actor, profile models.BusinessProfile) (*models.BusinessProfile, error)

	GetCreatorProfileByUser(ctx context.Context, userID string) (*models.CreatorProfile, error)
	GetBusinessProfileByUser(ctx context.Context, userID string) (*models.BusinessProfile, error)
	GetCreatorProfile(ctx context.Context, id string) (*models.CreatorProfile, error)
	GetBusinessProfile(ctx context.Context, id string) (*models.BusinessProfile, error)

	ListCreators(ctx context.Context, filter CreatorFilter) ([]models.CreatorProfile, error)
}

// CreatorFilter narrows the creator directory
type CreatorFilter struct {
	Niche        string
	MinFollowers *int
	MaxFollowers *int
	Location     string
	OpenToBarter *bool
	Limit        int
	Skip         int
}

// GormProfileService implements ProfileService on gorm
type GormProfileService struct {
	db  *gorm.DB
	now func() time.Time
}

var profileServiceInstance ProfileService

// NewProfileService creates a profile service backed by db
func NewProfileService(db *gorm.DB) *GormProfileService {
	return &GormProfileService{db: db, now: time.Now}
}

// InitProfileService initializes the process-wide profile service
func InitProfileService(db *gorm.DB) ProfileService {
	profileServiceInstance = NewProfileService(db)
	return profileServiceInstance
}

// GetProfileService returns the initialized profile service instance
func GetProfileService() ProfileService {
	return profileServiceInstance
}

// SetProfileService sets the profile service instance (primarily for testing)
func SetProfileService(service ProfileService) {
	profileServiceInstance = service
}

func (s *GormProfileService) CreatorExists(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CreatorProfile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count creator profiles")
	}
	return count > 0, nil
}

func (s *GormProfileService) DisplayInfo(ctx context.Context, userID string) (models.DisplayInfo, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DisplayInfo{}, nil
	}
	if err != nil {
		return models.DisplayInfo{}, errors.Wrap(err, "load user")
	}

	// Profiles are optional; fall back to the account itself.
	info := models.DisplayInfo{Name: user.Name}
	if info.Name == "" {
		info.Name = user.Email
	}

	switch user.Role {
	case models.RoleCreator:
		var profile models.CreatorProfile
		err = s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&profile).Error
		if err == nil && profile.ID != "" {
			info = models.DisplayInfo{Name: profile.Name, PhotoURL: profile.ProfilePhotoURL}
		}
	case models.RoleBusiness:
		var profile models.BusinessProfile
		err = s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&profile).Error
		if err == nil && profile.ID != "" {
			info = models.DisplayInfo{Name: profile.BrandName, PhotoURL: profile.ProfilePhotoURL}
		}
	}
	if err != nil {
		return models.DisplayInfo{}, errors.Wrap(err, "load profile")
	}
	return info, nil
}

func (s *GormProfileService) UpsertCreatorProfile(ctx context.Context, actor models.Actor, profile models.CreatorProfile) (*models.CreatorProfile, error) {
	if !actor.IsCreator() {
		return nil, NewAuthorizationError("FORBIDDEN", "Only creators can create creator profiles")
	}
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, NewValidationError("VALIDATION_ERROR", "Name is required")
	}
	if profile.FollowersCount < 0 {
		return nil, NewValidationError("VALIDATION_ERROR", "Followers count cannot be negative")
	}
	if profile.Niches == nil {
		profile.Niches = models.Niches{}
	}

	existing, err := s.GetCreatorProfileByUser(ctx, actor.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	found := err == nil

	now := s.now().UTC()
	profile.UserID = actor.ID
	profile.UpdatedAt = now
	if found {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.ID = uuid.NewString()
		profile.CreatedAt = now
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, errors.Wrap(err, "save creator profile")
	}
	return &profile, nil
}

func (s *GormProfileService) UpsertBusinessProfile(ctx context.Context, actor models.Actor, profile models.BusinessProfile) (*models.BusinessProfile, error) {
	if !actor.IsBusiness() {
		return nil, NewAuthorizationError("FORBIDDEN", "Only businesses can create business profiles")
	}
	profile.BrandName = strings.TrimSpace(profile.BrandName)
	if profile.BrandName == "" {
		return nil, NewValidationError("VALIDATION_ERROR", "Brand name is required")
	}

	existing, err := s.GetBusinessProfileByUser(ctx, actor.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	found := err == nil

	now := s.now().UTC()
	profile.UserID = actor.ID
	profile.UpdatedAt = now
	if found {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.ID = uuid.NewString()
		profile.CreatedAt = now
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, errors.Wrap(err, "save business profile")
	}
	return &profile, nil
}

func (s *GormProfileService) GetCreatorProfileByUser(ctx context.Context, userID string) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	return &profile, s.first(ctx, &profile, "user_id = ?", userID)
}

func (s *GormProfileService) GetBusinessProfileByUser(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	return &profile, s.first(ctx, &profile, "user_id = ?", userID)
}

func (s *GormProfileService) GetCreatorProfile(ctx context.Context, id string) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	return &profile, s.first(ctx, &profile, "id = ?", id)
}

func (s *GormProfileService) GetBusinessProfile(ctx context.Context, id string) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	return &profile, s.first(ctx, &profile, "id = ?", id)
}

func (s *GormProfileService) first(ctx context.Context, dest interface{}, query string, arg string) error {
	err := s.db.WithContext(ctx).Where(query, arg).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError("PROFILE_NOT_FOUND", "Profile not found")
	}
	return errors.Wrap(err, "load profile")
}

func (s *GormProfileService) ListCreators(ctx context.Context, filter CreatorFilter) ([]models.CreatorProfile, error) {
	query := s.db.WithContext(ctx).Model(&models.CreatorProfile{})

	if niche := strings.TrimSpace(filter.Niche); niche != "" {
		// niches is a JSON array column; match the quoted element
		query = query.Where("niches LIKE ?", `%"`+niche+`"%`)
	}
	if filter.MinFollowers != nil {
		query = query.Where("followers_count >= ?", *filter.MinFollowers)
	}
	if filter.MaxFollowers != nil {
		query = query.Where("followers_count <= ?", *filter.MaxFollowers)
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
	if filter.OpenToBarter != nil {
		query = query.Where("is_open_to_barter = ?", *filter.OpenToBarter)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultCreatorPageSize
	}
	if limit > MaxCreatorPageSize {
		limit = MaxCreatorPageSize
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	creators := []models.CreatorProfile{}
	err := query.Order("followers_count DESC").Order("id ASC").Offset(skip).Limit(limit).Find(&creators).Error
	if err != nil {
		return nil, errors.Wrap(err, "list creators")
	}
	return creators, nil
}
