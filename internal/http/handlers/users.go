package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-backend/internal/domain"
	"rental-backend/internal/http/middleware"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

type UserHandler struct {
	Users repositories.UserRepository
}

// GET /api/users
func (h UserHandler) List(c *gin.Context) {
	users, err := h.Users.List(c.Query("role"), QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// GET /api/users/:id
func (h UserHandler) Get(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager && actor.UserID != id {
		RespondError(c, http.StatusForbidden, "cannot view another user's profile", nil)
		return
	}

	user, err := h.Users.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// PUT /api/users/:id
func (h UserHandler) Update(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	if actor.Role != domain.RoleAdmin && actor.UserID != id {
		RespondError(c, http.StatusForbidden, "cannot update another user's profile", nil)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}

	req.Name = utils.NormalizeSpace(req.Name)
	if req.Name == "" {
		RespondError(c, http.StatusBadRequest, "name is required", nil)
		return
	}

	if err := h.Users.Update(id, req.Name, utils.NormalizePhone(req.Phone)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}
