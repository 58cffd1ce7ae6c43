package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Baaaki/exercise-catalog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InteractionHandler struct {
	interactionService *service.InteractionService
}

func NewInteractionHandler(interactionService *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
	}
}

// RateRequest keeps score raw so a fractional or mistyped score is reported as a score error
// rather than a malformed body
type RateRequest struct {
	Score json.RawMessage `json:"score"`
}

func (h *InteractionHandler) Favorite(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.interactionService.Favorite(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exercise favorited"})
}

func (h *InteractionHandler) Unfavorite(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	removed, err := h.interactionService.Unfavorite(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "No favorite found"
	if removed {
		message = "Favorite removed"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "removed": removed})
}

func (h *InteractionHandler) Save(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.interactionService.Save(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exercise saved"})
}

func (h *InteractionHandler) Unsave(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	removed, err := h.interactionService.Unsave(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "No save found"
	if removed {
		message = "Save removed"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "removed": removed})
}

func (h *InteractionHandler) Rate(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	score, ok := integerField(c, "score", req.Score)
	if !ok {
		return
	}

	rating, err := h.interactionService.Rate(c.Request.Context(), userID, id, score)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Exercise rated",
		"rating":  rating,
	})
}

// Favoriters lists the users who favorited the exercise
func (h *InteractionHandler) Favoriters(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	users, err := h.interactionService.Favoriters(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Savers lists the users who saved the exercise
func (h *InteractionHandler) Savers(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	users, err := h.interactionService.Savers(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *InteractionHandler) Collections(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	collections, err := h.interactionService.Collections(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (h *InteractionHandler) target(c *gin.Context) (userID uuid.UUID, id uint, ok bool) {
	if userID, ok = currentUser(c); !ok {
		return
	}
	id, ok = exerciseID(c)
	return
}
