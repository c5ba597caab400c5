package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course_miniapp/httpclient"
)

// WebhookRelay is the slice of the API used by the webhook passthroughs.
type WebhookRelay interface {
	SetupWebhook(ctx context.Context) (any, error)
	RelayTochkaWebhook(ctx context.Context, contentType string, payload io.Reader) (any, error)
}

type WebhookHandler struct {
	relay WebhookRelay
	log   logrus.FieldLogger
}

func NewWebhookHandler(relay WebhookRelay, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{relay: relay, log: log}
}

func (h *WebhookHandler) Setup(c *gin.Context) {
	res, err := h.relay.SetupWebhook(c.Request.Context())
	h.respond(c, res, err)
}

// Tochka forwards the body and the full Content-Type, parameters included,
// so multipart boundaries survive.
func (h *WebhookHandler) Tochka(c *gin.Context) {
	res, err := h.relay.RelayTochkaWebhook(c.Request.Context(), c.GetHeader("Content-Type"), c.Request.Body)
	h.respond(c, res, err)
}

// respond mirrors the backend answer, keeping its status on failure.
func (h *WebhookHandler) respond(c *gin.Context, res any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}
	h.log.WithError(err).Warn("webhook passthrough failed")
	if apiErr, ok := httpclient.AsAPIError(err); ok && apiErr.Status > 0 {
		c.JSON(apiErr.Status, apiErr)
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
}
