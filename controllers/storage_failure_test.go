package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/stretchr/testify/assert"
)

var errStorageDown = errors.New("pq: connection to 10.0.0.5 refused")

// brokenRequestService fails every call the way a lost database connection does
type brokenRequestService struct{}

func (brokenRequestService) CreateRequest(context.Context, models.Actor, services.CreateRequestInput) (*models.Request, error) {
	return nil, errStorageDown
}

func (brokenRequestService) GetRequest(context.Context, string, string) (*models.Request, error) {
	return nil, errStorageDown
}

func (brokenRequestService) ListSentRequests(context.Context, string) ([]models.Request, error) {
	return nil, errStorageDown
}

func (brokenRequestService) ListReceivedRequests(context.Context, string) ([]models.Request, error) {
	return nil, errStorageDown
}

func (brokenRequestService) UpdateStatus(context.Context, string, models.Actor, models.RequestStatus) (*models.Request, error) {
	return nil, errStorageDown
}

type brokenMessageService struct{}

func (brokenMessageService) SendMessage(context.Context, string, models.Actor, string) (*models.Message, error) {
	return nil, errStorageDown
}

func (brokenMessageService) GetMessages(context.Context, string, string) ([]models.Message, error) {
	return nil, errStorageDown
}

func (brokenMessageService) Subscribe(context.Context, string, string) (<-chan models.Message, error) {
	return nil, errStorageDown
}

func TestStorageFailuresAreInternalErrors(t *testing.T) {
	env := newTestEnv(t)
	services.SetRequestService(brokenRequestService{})
	services.SetMessageService(brokenMessageService{})

	register := func(r *gin.Engine) {
		registerRequestRoutes(r)
		registerMessageRoutes(r)
	}

	tests := []struct {
		name   string
		user   models.User
		method string
		path   string
		body   interface{}
	}{
		{"create request", env.business, http.MethodPost, "/api/v1/requests", gin.H{
			"creatorId":   env.creator.ID,
			"title":       "Summer Launch",
			"brief":       "3 reels",
			"offerAmount": 15000,
		}},
		{"get request", env.business, http.MethodGet, "/api/v1/requests/some-id", nil},
		{"list sent", env.business, http.MethodGet, "/api/v1/requests/sent", nil},
		{"list received", env.creator, http.MethodGet, "/api/v1/requests/received", nil},
		{"update status", env.creator, http.MethodPatch, "/api/v1/requests/some-id/status?status=accepted", nil},
		{"send message", env.business, http.MethodPost, "/api/v1/messages/some-id", gin.H{"text": "hi"}},
		{"list messages", env.creator, http.MethodGet, "/api/v1/messages/some-id", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performRequest(t, routerAs(tt.user, register), tt.method, tt.path, tt.body)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "DATABASE_ERROR", errorCode(response))
			assert.NotContains(t, w.Body.String(), "10.0.0.5", "internal details must not leak")
		})
	}
}
