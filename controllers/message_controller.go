package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/services"
)

const streamKeepAlive = 25 * time.Second

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage handles POST /api/v1/messages/:requestId - appends to a request's transcript
func SendMessage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	message, err := services.GetMessageService().SendMessage(c.Request.Context(), c.Param("requestId"), actor, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, message)
}

// ListMessages handles GET /api/v1/messages/:requestId - the full transcript, oldest first
func ListMessages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	messages, err := services.GetMessageService().GetMessages(c.Request.Context(), c.Param("requestId"), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, messages)
}

// StreamMessages handles GET /api/v1/messages/:requestId/stream - server-sent events
// for messages appended while the connection is open
func StreamMessages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stream, err := services.GetMessageService().Subscribe(c.Request.Context(), c.Param("requestId"), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Content-Type", "text/event-stream")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case msg, open := <-stream:
			if !open {
				return false
			}
			c.SSEvent("message", msg)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
