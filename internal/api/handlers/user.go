package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"remaudio-service/internal/models"
	"remaudio-service/internal/services"
)

type UserHandler struct {
	userService  *services.UserService
	redisService *services.RedisService
}

func NewUserHandler(userService *services.UserService, redisService *services.RedisService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		redisService: redisService,
	}
}

// GetProfile godoc
// @Summary Get current user profile
// @Description Return the profile of the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update current user profile
// @Description Update name, email, password or profile picture of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Failure 409 {object} models.ErrorResponse "Email already in use"
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Code:    http.StatusConflict,
				Message: "Email already in use",
			})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Code:    http.StatusNotFound,
				Message: "User not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "Update failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// SearchUsers godoc
// @Summary Search users by name
// @Description Search for users by partial name match
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param name query string true "Name to search for"
// @Success 200 {array} models.UserResponse
// @Failure 400 {object} models.ErrorResponse "Missing name parameter"
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "name parameter is required",
		})
		return
	}

	users, err := h.userService.SearchUsersByName(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Search failed",
		})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetOnlineUsers godoc
// @Summary List online users
// @Description Return the IDs of users currently connected
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/online [get]
func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.redisService.GetOnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to fetch online users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"online": users, "count": len(users)})
}
