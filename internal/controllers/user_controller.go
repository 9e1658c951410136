package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type UserController interface {
	ListUsers(c *gin.Context)
	GetUser(c *gin.Context)
	Me(c *gin.Context)
	Subscriptions(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
}

type userController struct {
	users   services.UserService
	follows services.FollowService
}

func NewUserController(users services.UserService, follows services.FollowService) UserController {
	return &userController{users: users, follows: follows}
}

type recipesLimitQuery struct {
	RecipesLimit int `form:"recipes_limit" binding:"omitempty,min=0"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.UserResponse
// @Router /api/v1/users [get]
func (uc *userController) ListUsers(c *gin.Context) {
	users, err := uc.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := uc.project(c, users...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetUser godoc
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.APIError
// @Router /api/v1/users/{id} [get]
func (uc *userController) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	uc.respondUser(c, id)
}

// Me godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/me [get]
func (uc *userController) Me(c *gin.Context) {
	uc.respondUser(c, principal(c).UserID)
}

// Subscriptions godoc
// @Summary List followed users
// @Description Users the caller follows, each with their recipes and recipe count
// @Tags subscriptions
// @Produce json
// @Param recipes_limit query int false "Maximum recipes per user, 0 for all"
// @Success 200 {array} models.FollowProjection
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/subscriptions [get]
func (uc *userController) Subscriptions(c *gin.Context) {
	var q recipesLimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	subs, err := uc.follows.Subscriptions(c.Request.Context(), principal(c).UserID, q.RecipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// Subscribe godoc
// @Summary Follow a user
// @Tags subscriptions
// @Produce json
// @Param id path int true "User ID"
// @Param recipes_limit query int false "Maximum recipes in the response, 0 for all"
// @Success 201 {object} models.FollowProjection
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id}/subscribe [post]
func (uc *userController) Subscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var q recipesLimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	projection, err := uc.follows.Follow(c.Request.Context(), principal(c).UserID, id, q.RecipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projection)
}

// Unsubscribe godoc
// @Summary Unfollow a user
// @Tags subscriptions
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id}/subscribe [delete]
func (uc *userController) Unsubscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := uc.follows.Unfollow(c.Request.Context(), principal(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (uc *userController) respondUser(c *gin.Context, id uint) {
	user, err := uc.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := uc.project(c, *user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out[0])
}

// project renders users with is_subscribed from the caller's point of view
func (uc *userController) project(c *gin.Context, users ...models.User) ([]models.UserResponse, error) {
	following := map[uint]bool{}
	if viewer := principal(c); viewer.IsAuthenticated() && len(users) > 0 {
		ids := make([]uint, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		var err error
		if following, err = uc.follows.BatchIsFollowing(c.Request.Context(), viewer.UserID, ids); err != nil {
			return nil, err
		}
	}
	out := make([]models.UserResponse, len(users))
	for i, u := range users {
		out[i] = models.NewUserResponse(u, following[u.ID])
	}
	return out, nil
}
