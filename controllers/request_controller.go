package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
)

// CreateRequestBody represents the request body for proposing a collaboration
type CreateRequestBody struct {
	CreatorID    string          `json:"creatorId"`
	Title        string          `json:"title"`
	Brief        string          `json:"brief"`
	OfferAmount  decimal.Decimal `json:"offerAmount"`
	Deliverables string          `json:"deliverables"`
	Timeline     string          `json:"timeline"`
}

// CreateRequest handles POST /api/v1/requests - a business proposes a collaboration to a creator
func CreateRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindingError(c, err)
		return
	}

	request, err := services.GetRequestService().CreateRequest(c.Request.Context(), actor, services.CreateRequestInput{
		CreatorID:    body.CreatorID,
		Title:        body.Title,
		Brief:        body.Brief,
		OfferAmount:  body.OfferAmount,
		Deliverables: body.Deliverables,
		Timeline:     body.Timeline,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, request)
}

// ListSentRequests handles GET /api/v1/requests/sent
func ListSentRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requests, err := services.GetRequestService().ListSentRequests(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, requests)
}

// ListReceivedRequests handles GET /api/v1/requests/received
func ListReceivedRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requests, err := services.GetRequestService().ListReceivedRequests(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, requests)
}

// GetRequest handles GET /api/v1/requests/:id - only the two parties may read a request
func GetRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	request, err := services.GetRequestService().GetRequest(c.Request.Context(), c.Param("id"), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, request)
}

// UpdateRequestStatus handles PATCH /api/v1/requests/:id/status?status=accepted|declined
func UpdateRequestStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter 'status' is required")
		return
	}

	request, err := services.GetRequestService().UpdateStatus(c.Request.Context(), c.Param("id"), actor, models.RequestStatus(status))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, request)
}
