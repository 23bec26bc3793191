package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lentera.id/elearning/internal/dto"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/service"
	"lentera.id/elearning/pkg/response"
	"lentera.id/elearning/pkg/validator"
)

type GamificationHandler struct {
	streakService     service.StreakService
	badgeService      service.BadgeService
	progressService   service.ProgressService
	completionService service.CompletionService
}

func NewGamificationHandler(
	streakService service.StreakService,
	badgeService service.BadgeService,
	progressService service.ProgressService,
	completionService service.CompletionService,
) *GamificationHandler {
	return &GamificationHandler{
		streakService:     streakService,
		badgeService:      badgeService,
		progressService:   progressService,
		completionService: completionService,
	}
}

// Checkin handles POST /gamification/checkin. Calling twice the same day is
// fine: the second call reports already_checked_in without side effects.
func (h *GamificationHandler) Checkin(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.streakService.Checkin(userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// CheckBadges handles POST /gamification/badges/check and returns only the
// badges awarded by this pass.
func (h *GamificationHandler) CheckBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	awarded, err := h.badgeService.CheckAndAwardBadges(userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges := make([]dto.BadgeResponse, 0, len(awarded))
	for _, badge := range awarded {
		badges = append(badges, toBadgeResponse(badge, true))
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

// GetEarnedBadges handles GET /gamification/badges.
func (h *GamificationHandler) GetEarnedBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	earned, err := h.badgeService.ListEarned(userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges := make([]dto.EarnedBadgeResponse, 0, len(earned))
	for _, award := range earned {
		badges = append(badges, dto.EarnedBadgeResponse{
			BadgeResponse: toBadgeResponse(award.Badge, true),
			EarnedAt:      award.EarnedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

// GetMyProgress handles GET /gamification/progress.
func (h *GamificationHandler) GetMyProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progress, err := h.progressService.GetOrCreate(userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": progress})
}

// RecordCompletion handles POST /gamification/completions. The lesson
// service calls this after it has persisted the completion on its side.
func (h *GamificationHandler) RecordCompletion(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.RecordCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.completionService.RecordCompletion(userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// toBadgeResponse hides the description of a secret badge unless earned.
func toBadgeResponse(badge model.Badge, earned bool) dto.BadgeResponse {
	resp := dto.BadgeResponse{
		Slug:        badge.Slug,
		Name:        badge.Name,
		Description: badge.Description,
		Icon:        badge.Icon,
		Category:    string(badge.Category),
		XPReward:    badge.XPReward,
		IsSecret:    badge.IsSecret,
	}
	if badge.IsSecret && !earned {
		resp.Description = "???"
	}
	return resp
}
