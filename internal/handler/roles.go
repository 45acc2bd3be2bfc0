package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unicorn-hrms/backend/internal/model"
)

// RoleAuthority is what the admin role endpoints need from the role service.
type RoleAuthority interface {
	Assign(ctx context.Context, userID int64, roleName string) error
	Revoke(ctx context.Context, userID int64, roleName string) error
	ListRoleNames(ctx context.Context, userID int64) ([]string, error)
}

type RoleHandler struct {
	svc RoleAuthority
}

func NewRoleHandler(svc RoleAuthority) *RoleHandler {
	return &RoleHandler{svc: svc}
}

// Assign godoc
// @Summary Assign a role to a user
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body model.AssignRoleRequest true "Role name"
// @Success 200 {object} model.Response
// @Failure 404 {object} model.Response
// @Failure 409 {object} model.Response
// @Router /api/v1/users/{id}/roles [post]
func (h *RoleHandler) Assign(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req model.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Role == "" {
		respondBadRequest(c, "role is required")
		return
	}

	if err := h.svc.Assign(c.Request.Context(), userID, req.Role); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, true, "role assigned successfully")
}

// Revoke godoc
// @Summary Revoke a role from a user
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param role path string true "Role name"
// @Success 200 {object} model.Response
// @Failure 404 {object} model.Response
// @Router /api/v1/users/{id}/roles/{role} [delete]
func (h *RoleHandler) Revoke(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Revoke(c.Request.Context(), userID, c.Param("role")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, true, "role revoked successfully")
}

// List godoc
// @Summary List a user's active roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} model.Response
// @Failure 404 {object} model.Response
// @Router /api/v1/users/{id}/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	names, err := h.svc.ListRoleNames(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, names, "")
}

func parseUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		respondBadRequest(c, "invalid user id")
		return 0, false
	}
	return userID, true
}
