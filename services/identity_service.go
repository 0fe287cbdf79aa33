package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"gorm.io/gorm"
)

// IdentityService resolves the caller of an API operation
type IdentityService interface {
	// CurrentActor returns the id and role of the user behind a token subject
	CurrentActor(ctx context.Context, userID string) (models.Actor, error)

	// RegisterUser creates the account row for a token subject
	RegisterUser(ctx context.Context, user models.User) (*models.User, error)

	// GetUser loads a user by id
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// GormIdentityService implements IdentityService on the users table
type GormIdentityService struct {
	db *gorm.DB
}

var identityServiceInstance IdentityService

// NewIdentityService creates an identity service backed by db
func NewIdentityService(db *gorm.DB) *GormIdentityService {
	return &GormIdentityService{db: db}
}

// InitIdentityService initializes the process-wide identity service
func InitIdentityService(db *gorm.DB) IdentityService {
	identityServiceInstance = NewIdentityService(db)
	return identityServiceInstance
}

// GetIdentityService returns the initialized identity service instance
func GetIdentityService() IdentityService {
	return identityServiceInstance
}

// SetIdentityService sets the identity service instance (primarily for testing)
func SetIdentityService(service IdentityService) {
	identityServiceInstance = service
}

func (s *GormIdentityService) CurrentActor(ctx context.Context, userID string) (models.Actor, error) {
	if strings.TrimSpace(userID) == "" {
		return models.Actor{}, NewUnauthenticatedError("UNAUTHORIZED", "No valid session")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Actor{}, NewUnauthenticatedError("USER_NOT_FOUND", "User profile not found. Please register first.")
		}
		return models.Actor{}, err
	}

	return models.Actor{ID: user.ID, Role: user.Role}, nil
}

func (s *GormIdentityService) RegisterUser(ctx context.Context, user models.User) (*models.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	if user.ID == "" {
		return nil, NewUnauthenticatedError("UNAUTHORIZED", "Token subject is missing")
	}
	if !models.ValidRole(user.Role) {
		return nil, NewValidationError("INVALID_ROLE", "Role must be 'creator' or 'business'")
	}
	if user.Email == "" {
		return nil, NewValidationError("MISSING_EMAIL", "Email is required")
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("USER_EXISTS", "A user with this id or email already exists")
		}
		return nil, errors.Wrap(err, "create user")
	}

	return &user, nil
}

func (s *GormIdentityService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("USER_NOT_FOUND", "User not found")
		}
		return nil, errors.Wrap(err, "load user")
	}
	return &user, nil
}
