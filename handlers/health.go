package handlers

import (
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"

	"course_miniapp/db"
)

type HealthHandler struct {
	db       *badger.DB
	useMocks bool
}

func NewHealthHandler(database *badger.DB, useMocks bool) *HealthHandler {
	return &HealthHandler{db: database, useMocks: useMocks}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	// Check the token storage
	if err := db.Ping(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "Token storage unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"use_mocks": h.useMocks,
	})
}
