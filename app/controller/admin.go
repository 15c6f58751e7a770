package controller

import (
	"errors"
	"net/http"
	"strings"

	appdto "github.com/vibast-solutions/ms-go-contacts/app/dto"
	dto "github.com/vibast-solutions/ms-go-contacts/app/dto/http"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AdminController struct {
	adminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

func (c *AdminController) ListUsers(ctx echo.Context) error {
	page, limit := pageParams(ctx)
	result, err := c.adminService.ListUsers(ctx.Request().Context(), page, limit, ctx.QueryParam("sort"))
	if err != nil {
		logrus.WithError(err).Error("List users failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, userPage(result))
}

func (c *AdminController) SearchUsers(ctx echo.Context) error {
	term := strings.TrimSpace(ctx.QueryParam("q"))
	if term == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "search term is required"})
	}

	page, limit := pageParams(ctx)
	result, err := c.adminService.SearchUsers(ctx.Request().Context(), term, page, limit, ctx.QueryParam("sort"))
	if err != nil {
		logrus.WithError(err).Error("Search users failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, userPage(result))
}

func (c *AdminController) UserDetail(ctx echo.Context) error {
	userID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
	}

	user, err := c.adminService.UserDetail(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("User detail failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (c *AdminController) DeleteUser(ctx echo.Context) error {
	actorID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	userID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
	}
	if userID == actorID {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "cannot delete your own account"})
	}

	if err := c.adminService.DeleteUser(ctx.Request().Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Delete user failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "actor_id": actorID}).Info("User deleted")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "user deleted"})
}

func userPage(result *appdto.PageResult[*entity.User]) dto.UserPageResponse {
	return dto.UserPageResponse{
		Users:      dto.NewUserResponses(result.Items),
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	}
}
