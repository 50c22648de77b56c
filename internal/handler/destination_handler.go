package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voyagent/voyagent/internal/pkg/errcode"
	"github.com/voyagent/voyagent/internal/pkg/response"
	"github.com/voyagent/voyagent/internal/repo"
	"github.com/voyagent/voyagent/internal/service"
)

type DestinationHandler struct {
	destinations *service.DestinationService
}

func NewDestinationHandler(destinations *service.DestinationService) *DestinationHandler {
	return &DestinationHandler{destinations: destinations}
}

func (h *DestinationHandler) List(c *gin.Context) {
	filter := repo.DestinationFilter{
		Region:     c.Query("region"),
		BudgetTier: c.Query("budget_tier"),
		Climate:    c.Query("climate"),
		Query:      c.Query("q"),
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.destinations.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *DestinationHandler) Get(c *gin.Context) {
	dest, err := h.destinations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dest)
}

func (h *DestinationHandler) Create(c *gin.Context) {
	var req service.DestinationCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	dest, err := h.destinations.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dest)
}
