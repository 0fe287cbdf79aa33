package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxAppendAttempts = 5

// MessageService gates and persists the chat transcript of each request
type MessageService interface {
	// SendMessage appends text to the transcript of requestID
	SendMessage(ctx context.Context, requestID string, actor models.Actor, text string) (*models.Message, error)

	// GetMessages returns the full transcript in canonical order
	GetMessages(ctx context.Context, requestID, actorID string) ([]models.Message, error)

	// Subscribe streams messages appended after the call until ctx is done
	Subscribe(ctx context.Context, requestID, actorID string) (<-chan models.Message, error)
}

// MessageServiceOptions configures a GormMessageService
type MessageServiceOptions struct {
	// AllowOnDeclined keeps the conversation open after a request is declined
	AllowOnDeclined bool
	Notifier        Notifier
	Logger          logrus.FieldLogger
}

// GormMessageService implements MessageService on gorm
type GormMessageService struct {
	db              *gorm.DB
	profiles        ProfileService
	notifier        Notifier
	allowOnDeclined bool
	log             logrus.FieldLogger
	now             func() time.Time
}

var messageServiceInstance MessageService

// NewMessageService creates a message service
func NewMessageService(db *gorm.DB, profiles ProfileService, opts MessageServiceOptions) *GormMessageService {
	if opts.Notifier == nil {
		opts.Notifier = NewLocalNotifier()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &GormMessageService{
		db:              db,
		profiles:        profiles,
		notifier:        opts.Notifier,
		allowOnDeclined: opts.AllowOnDeclined,
		log:             opts.Logger,
		now:             time.Now,
	}
}

// InitMessageService initializes the process-wide message service
func InitMessageService(db *gorm.DB, profiles ProfileService, opts MessageServiceOptions) MessageService {
	messageServiceInstance = NewMessageService(db, profiles, opts)
	return messageServiceInstance
}

// GetMessageService returns the initialized message service instance
func GetMessageService() MessageService {
	return messageServiceInstance
}

// SetMessageService sets the message service instance (primarily for testing)
func SetMessageService(service MessageService) {
	messageServiceInstance = service
}

func (s *GormMessageService) SendMessage(ctx context.Context, requestID string, actor models.Actor, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("EMPTY_MESSAGE", "Message text cannot be empty")
	}

	request, err := s.authorize(ctx, requestID, actor.ID)
	if err != nil {
		return nil, err
	}
	if request.Status == models.StatusDeclined && !s.allowOnDeclined {
		return nil, NewInvalidTransitionError("REQUEST_DECLINED", "This request was declined and the conversation is closed")
	}

	sender, err := s.profiles.DisplayInfo(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	msg, err := s.append(ctx, models.Message{
		RequestID:    requestID,
		SenderUserID: actor.ID,
		SenderName:   sender.Name,
		Text:         text,
	})
	if err != nil {
		return nil, err
	}

	messagesSent.Inc()
	log := s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"actor_id":   actor.ID,
		"sequence":   msg.Sequence,
	})
	log.Debug("Message appended")

	if err := s.notifier.Publish(ctx, *msg); err != nil {
		log.WithError(err).Warn("Failed to publish message notification")
	}
	return msg, nil
}

// append assigns the next sequence number and a timestamp no earlier than the
// previous message, retrying when a concurrent sender claimed the same slot.
func (s *GormMessageService) append(ctx context.Context, msg models.Message) (*models.Message, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		candidate := msg
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last models.Message
			if err := tx.Where("request_id = ?", msg.RequestID).
				Order("sequence DESC").
				Limit(1).
				Find(&last).Error; err != nil {
				return err
			}

			candidate.ID = uuid.NewString()
			candidate.Sequence = last.Sequence + 1
			candidate.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
			if last.ID != "" && candidate.CreatedAt.Before(last.CreatedAt) {
				candidate.CreatedAt = last.CreatedAt
			}
			return tx.Create(&candidate).Error
		})
		if err == nil {
			return &candidate, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Wrap(err, "append message")
		}
		lastErr = err
		messageAppendRetries.Inc()
	}
	return nil, errors.Wrapf(lastErr, "append message after %d attempts", maxAppendAttempts)
}

func (s *GormMessageService) GetMessages(ctx context.Context, requestID, actorID string) ([]models.Message, error) {
	if _, err := s.authorize(ctx, requestID, actorID); err != nil {
		return nil, err
	}

	messages := []models.Message{}
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Order("sequence ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "load messages")
	}

	transcriptReads.Inc()
	return messages, nil
}

func (s *GormMessageService) Subscribe(ctx context.Context, requestID, actorID string) (<-chan models.Message, error) {
	if _, err := s.authorize(ctx, requestID, actorID); err != nil {
		return nil, err
	}
	ch, err := s.notifier.Subscribe(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe to transcript")
	}
	return ch, nil
}

func (s *GormMessageService) authorize(ctx context.Context, requestID, actorID string) (*models.Request, error) {
	var request models.Request
	err := s.db.WithContext(ctx).Where("id = ?", requestID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("REQUEST_NOT_FOUND", "Request not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load request")
	}
	if !request.IsParty(actorID) {
		return nil, NewAuthorizationError("FORBIDDEN", "You are not a party to this request")
	}
	return &request, nil
}
