package http

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/middleware"
	"github.com/open-builders/giveaway-bot/internal/common/validation"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models/dto"
	giveawayservice "github.com/open-builders/giveaway-bot/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service  giveawayservice.GiveawayService
	adminIDs []int64
	now      func() time.Time
}

func NewGiveawayHandler(service giveawayservice.GiveawayService, adminIDs []int64) *GiveawayHandler {
	validation.RegisterBindings()
	return &GiveawayHandler{
		service:  service,
		adminIDs: adminIDs,
		now:      time.Now,
	}
}

// RegisterRoutes expects router to already authenticate callers.
func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	giveaways := router.Group("/giveaways")
	{
		giveaways.POST("", h.create)
		giveaways.GET("/:id", h.getByID)
		giveaways.POST("/:id/join", h.join)
		giveaways.POST("/:id/leave", h.leave)
		giveaways.POST("/:id/complete", h.complete)
		giveaways.POST("/reroll", middleware.RequireAdmin(h.adminIDs), h.reroll)
	}

	router.GET("/communities/:id/giveaways", h.listByCommunity)
}

// @Summary Start a giveaway
// @Description Posts the announcement and starts the countdown. The caller becomes the host.
// @Tags giveaways
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param giveaway body dto.GiveawayCreateRequest true "Giveaway"
// @Success 201 {object} dto.GiveawayResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /giveaways [post]
func (h *GiveawayHandler) create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var input dto.GiveawayCreateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.NewValidationError("body", err.Error()))
		return
	}

	hostName := user.Username
	if hostName == "" {
		hostName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}

	g, err := h.service.Start(c.Request.Context(), giveawayservice.StartRequest{
		CommunityID:  input.CommunityID,
		ChatID:       input.ChatID,
		HostID:       user.ID,
		HostName:     hostName,
		Prize:        input.Prize,
		WinnersCount: input.WinnersCount,
		Duration:     input.Duration,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGiveawayResponse(g, h.now()))
}

// @Summary Get giveaway by ID
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.GiveawayResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /giveaways/{id} [get]
func (h *GiveawayHandler) getByID(c *gin.Context) {
	g, ok := h.service.Get(c.Param("id"))
	if !ok {
		_ = c.Error(apperrors.NewGiveawayNotFoundError(c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, dto.ToGiveawayResponse(g, h.now()))
}

// @Summary List active giveaways of a community
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Param id path int true "Community (chat) ID"
// @Success 200 {array} dto.GiveawayResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /communities/{id}/giveaways [get]
func (h *GiveawayHandler) listByCommunity(c *gin.Context) {
	communityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("id", "must be an integer"))
		return
	}

	now := h.now()
	active := h.service.ListActive(communityID)
	out := make([]dto.GiveawayResponse, 0, len(active))
	for _, g := range active {
		out = append(out, dto.ToGiveawayResponse(g, now))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Join giveaway
// @Description Enters the caller. Joining twice is a no-op.
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.MembershipResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /giveaways/{id}/join [post]
func (h *GiveawayHandler) join(c *gin.Context) {
	h.membership(c, true)
}

// @Summary Leave giveaway
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.MembershipResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /giveaways/{id}/leave [post]
func (h *GiveawayHandler) leave(c *gin.Context) {
	h.membership(c, false)
}

func (h *GiveawayHandler) membership(c *gin.Context, join bool) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")
	if _, ok := h.service.Get(id); !ok {
		_ = c.Error(apperrors.NewGiveawayNotFoundError(id))
		return
	}

	var (
		changed bool
		err     error
	)
	if join {
		changed, err = h.service.AddParticipant(c.Request.Context(), id, user.ID)
	} else {
		changed, err = h.service.RemoveParticipant(c.Request.Context(), id, user.ID)
	}
	// A failed write still changed the live roster; report it as applied.
	if err != nil && !apperrors.IsCode(err, apperrors.ErrCodePersistence) {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.MembershipResponse{GiveawayID: id, Changed: changed})
}

// @Summary End giveaway now
// @Description Draws winners immediately. Only the host or an admin may end a giveaway.
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.CompletionResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /giveaways/{id}/complete [post]
func (h *GiveawayHandler) complete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	g, ok := h.service.Get(id)
	if !ok {
		_ = c.Error(apperrors.NewGiveawayNotFoundError(id))
		return
	}
	if g.HostID != user.ID && !slices.Contains(h.adminIDs, user.ID) {
		_ = c.Error(apperrors.NewForbiddenError("only the host can end this giveaway"))
		return
	}

	result, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCompletionResponse(result))
}

// @Summary Reroll winners
// @Description Draws new winners for an ended giveaway identified by its announcement. Admins only.
// @Tags giveaways
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param reroll body dto.RerollRequest true "Announcement"
// @Success 200 {object} dto.RerollResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /giveaways/reroll [post]
func (h *GiveawayHandler) reroll(c *gin.Context) {
	var input dto.RerollRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.NewValidationError("body", err.Error()))
		return
	}

	winners, err := h.service.Reroll(c.Request.Context(), models.AnnouncementRef{
		ChatID:    input.ChatID,
		MessageID: input.MessageID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if winners == nil {
		winners = []int64{}
	}
	c.JSON(http.StatusOK, dto.RerollResponse{Winners: winners})
}
