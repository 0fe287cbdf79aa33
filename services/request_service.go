package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateRequestInput carries the business-supplied fields of a new request
type CreateRequestInput struct {
	CreatorID    string
	Title        string
	Brief        string
	OfferAmount  decimal.Decimal
	Deliverables string
	Timeline     string
}

// RequestService owns the collaboration request state machine
type RequestService interface {
	// CreateRequest stores a pending request from a business to a creator
	CreateRequest(ctx context.Context, actor models.Actor, input CreateRequestInput) (*models.Request, error)

	// GetRequest returns the request if actorID is one of its parties
	GetRequest(ctx context.Context, requestID, actorID string) (*models.Request, error)

	// ListSentRequests returns a business's requests, newest first
	ListSentRequests(ctx context.Context, businessID string) ([]models.Request, error)

	// ListReceivedRequests returns a creator's requests, newest first
	ListReceivedRequests(ctx context.Context, creatorID string) ([]models.Request, error)

	// UpdateStatus moves a pending request to accepted or declined
	UpdateStatus(ctx context.Context, requestID string, actor models.Actor, newStatus models.RequestStatus) (*models.Request, error)
}

// GormRequestService implements RequestService on gorm
type GormRequestService struct {
	db       *gorm.DB
	profiles ProfileService
	log      logrus.FieldLogger
	now      func() time.Time
}

var requestServiceInstance RequestService

// NewRequestService creates a request service
func NewRequestService(db *gorm.DB, profiles ProfileService, log logrus.FieldLogger) *GormRequestService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GormRequestService{db: db, profiles: profiles, log: log, now: time.Now}
}

// InitRequestService initializes the process-wide request service
func InitRequestService(db *gorm.DB, profiles ProfileService, log logrus.FieldLogger) RequestService {
	requestServiceInstance = NewRequestService(db, profiles, log)
	return requestServiceInstance
}

// GetRequestService returns the initialized request service instance
func GetRequestService() RequestService {
	return requestServiceInstance
}

// SetRequestService sets the request service instance (primarily for testing)
func SetRequestService(service RequestService) {
	requestServiceInstance = service
}

func (s *GormRequestService) CreateRequest(ctx context.Context, actor models.Actor, input CreateRequestInput) (*models.Request, error) {
	if !actor.IsBusiness() {
		return nil, NewAuthorizationError("FORBIDDEN", "Only businesses can send collaboration requests")
	}

	title := strings.TrimSpace(input.Title)
	brief := strings.TrimSpace(input.Brief)
	creatorID := strings.TrimSpace(input.CreatorID)

	if title == "" {
		return nil, NewValidationError("VALIDATION_ERROR", "Title is required")
	}
	if brief == "" {
		return nil, NewValidationError("VALIDATION_ERROR", "Brief is required")
	}
	if input.OfferAmount.IsNegative() {
		return nil, NewValidationError("VALIDATION_ERROR", "Offer amount cannot be negative")
	}

	exists, err := s.profiles.CreatorExists(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewValidationError("CREATOR_NOT_FOUND", "Creator not found")
	}

	now := s.now().UTC()
	request := models.Request{
		ID:           uuid.NewString(),
		BusinessID:   actor.ID,
		CreatorID:    creatorID,
		Title:        title,
		Brief:        brief,
		OfferAmount:  input.OfferAmount.Round(2),
		Deliverables: strings.TrimSpace(input.Deliverables),
		Timeline:     strings.TrimSpace(input.Timeline),
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	requestsCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"request_id":  request.ID,
		"business_id": request.BusinessID,
		"creator_id":  request.CreatorID,
	}).Info("Collaboration request created")

	if err := s.enrich(ctx, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *GormRequestService) GetRequest(ctx context.Context, requestID, actorID string) (*models.Request, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsParty(actorID) {
		return nil, NewAuthorizationError("FORBIDDEN", "You are not a party to this request")
	}
	if err := s.enrich(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *GormRequestService) ListSentRequests(ctx context.Context, businessID string) ([]models.Request, error) {
	return s.list(ctx, "business_id = ?", businessID)
}

func (s *GormRequestService) ListReceivedRequests(ctx context.Context, creatorID string) ([]models.Request, error) {
	return s.list(ctx, "creator_id = ?", creatorID)
}

func (s *GormRequestService) list(ctx context.Context, query, partyID string) ([]models.Request, error) {
	requests := []models.Request{}
	err := s.db.WithContext(ctx).
		Where(query, partyID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, errors.Wrap(err, "list requests")
	}

	cache := map[string]models.DisplayInfo{}
	for i := range requests {
		if err := s.enrichCached(ctx, &requests[i], cache); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *GormRequestService) UpdateStatus(ctx context.Context, requestID string, actor models.Actor, newStatus models.RequestStatus) (*models.Request, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	err = s.transition(ctx, request, actor, newStatus)
	recordTransition(string(newStatus), err)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"actor_id":   actor.ID,
		"status":     newStatus,
	}).Info("Collaboration request resolved")

	updated, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GormRequestService) transition(ctx context.Context, request *models.Request, actor models.Actor, newStatus models.RequestStatus) error {
	if !actor.IsCreator() || actor.ID != request.CreatorID {
		return NewAuthorizationError("FORBIDDEN", "Only the creator of this request can accept or decline it")
	}
	if !newStatus.Valid() {
		return NewValidationError("INVALID_STATUS", "Status must be 'accepted' or 'declined'")
	}
	if request.Status.IsTerminal() {
		return alreadyResolved(request.Status)
	}
	if newStatus == models.StatusPending {
		return NewInvalidTransitionError("INVALID_TRANSITION", "A request cannot be moved back to pending")
	}

	// Compare-and-set: only a row still pending can be resolved.
	result := s.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ? AND status = ?", request.ID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_at": s.now().UTC(),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update request status")
	}

	if result.RowsAffected == 0 {
		current, err := s.load(ctx, request.ID)
		if err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"request_id": request.ID,
			"actor_id":   actor.ID,
			"status":     current.Status,
		}).Debug("Lost status race")
		return alreadyResolved(current.Status)
	}
	return nil
}

func alreadyResolved(status models.RequestStatus) error {
	return NewInvalidTransitionError("INVALID_TRANSITION", "Request has already been %s", status)
}

func (s *GormRequestService) load(ctx context.Context, requestID string) (*models.Request, error) {
	var request models.Request
	err := s.db.WithContext(ctx).Where("id = ?", requestID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("REQUEST_NOT_FOUND", "Request not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load request")
	}
	return &request, nil
}

func (s *GormRequestService) enrich(ctx context.Context, request *models.Request) error {
	return s.enrichCached(ctx, request, map[string]models.DisplayInfo{})
}

func (s *GormRequestService) enrichCached(ctx context.Context, request *models.Request, cache map[string]models.DisplayInfo) error {
	lookup := func(userID string) (models.DisplayInfo, error) {
		if info, ok := cache[userID]; ok {
			return info, nil
		}
		info, err := s.profiles.DisplayInfo(ctx, userID)
		if err != nil {
			return models.DisplayInfo{}, err
		}
		cache[userID] = info
		return info, nil
	}

	creator, err := lookup(request.CreatorID)
	if err != nil {
		return err
	}
	business, err := lookup(request.BusinessID)
	if err != nil {
		return err
	}

	request.CreatorName, request.CreatorPhoto = creator.Name, creator.PhotoURL
	request.BusinessName, request.BusinessPhoto = business.Name, business.PhotoURL
	return nil
}
