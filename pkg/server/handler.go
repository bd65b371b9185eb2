package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikeboe/deep-research/pkg/research"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.health)
	api := r.Group("/api")
	{
		api.POST("/research", h.createRun)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.Service.Research(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, run)
	case errors.Is(err, research.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, run)
	case errors.Is(err, ErrBusy):
		c.JSON(http.StatusConflict, run)
	default:
		c.JSON(http.StatusInternalServerError, run)
	}
}
