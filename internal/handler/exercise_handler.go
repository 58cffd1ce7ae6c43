package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Baaaki/exercise-catalog/internal/service"
	"github.com/gin-gonic/gin"
)

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
	}
}

// Difficulty is kept raw in both requests so a mistyped value is reported as a
// difficulty error rather than a malformed body
type CreateExerciseRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Difficulty  json.RawMessage `json:"difficulty"`
	IsPublic    bool            `json:"isPublic"`
}

// UpdateExerciseRequest fields left out of the body are not changed
type UpdateExerciseRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Difficulty  json.RawMessage `json:"difficulty"`
	IsPublic    *bool           `json:"isPublic"`
}

func (h *ExerciseHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	difficulty, ok := integerField(c, "difficulty", req.Difficulty)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), userID, service.CreateExerciseInput{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  difficulty,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Exercise created",
		"exercise": exercise,
	})
}

func (h *ExerciseHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	difficulty, ok := integerField(c, "difficulty", req.Difficulty)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), userID, id, service.UpdateExerciseInput{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  difficulty,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Exercise updated",
		"exercise": exercise,
	})
}

func (h *ExerciseHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	if err := h.exerciseService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exercise deleted"})
}

func (h *ExerciseHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, exercise)
}

// List returns the caller's exercises and every public one
func (h *ExerciseHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	opts, ok := listOptions(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.List(c.Request.Context(), userID, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

// ListPublic needs no token; a token sent anyway does not widen the result
func (h *ExerciseHandler) ListPublic(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.ListPublic(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

func listOptions(c *gin.Context) (service.ListOptions, bool) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return service.ListOptions{}, false
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return service.ListOptions{}, false
	}

	return service.ListOptions{
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
		Limit:  limit,
		Offset: offset,
	}, true
}
