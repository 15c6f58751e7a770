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

type ContactController struct {
	contactService *service.ContactService
}

func NewContactController(contactService *service.ContactService) *ContactController {
	return &ContactController{contactService: contactService}
}

func (c *ContactController) Add(ctx echo.Context) error {
	ownerID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.AddContactRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Phone) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "name, email and phone are required"})
	}

	contact, err := c.contactService.Add(ctx.Request().Context(), ownerID, req.Name, req.Email, req.Phone, req.Age)
	if err != nil {
		logrus.WithError(err).WithField("owner_id", ownerID).Error("Add contact failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{"owner_id": ownerID, "contact_id": contact.ID}).Info("Contact created")
	return ctx.JSON(http.StatusCreated, dto.NewContactResponse(contact))
}

func (c *ContactController) List(ctx echo.Context) error {
	ownerID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	page, limit := pageParams(ctx)
	result, err := c.contactService.List(ctx.Request().Context(), ownerID, page, limit, ctx.QueryParam("sort"))
	if err != nil {
		logrus.WithError(err).WithField("owner_id", ownerID).Error("List contacts failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, contactPage(result))
}

func (c *ContactController) Search(ctx echo.Context) error {
	ownerID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	term := strings.TrimSpace(ctx.QueryParam("q"))
	if term == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "search term is required"})
	}

	page, limit := pageParams(ctx)
	result, err := c.contactService.Search(ctx.Request().Context(), ownerID, term, page, limit, ctx.QueryParam("sort"))
	if err != nil {
		logrus.WithError(err).WithField("owner_id", ownerID).Error("Search contacts failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, contactPage(result))
}

func (c *ContactController) Detail(ctx echo.Context) error {
	ownerID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	contactID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid contact id"})
	}

	contact, err := c.contactService.Detail(ctx.Request().Context(), ownerID, contactID)
	if err != nil {
		return c.mapContactError(ctx, ownerID, contactID, err)
	}

	return ctx.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

func (c *ContactController) Edit(ctx echo.Context) error {
	ownerID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	contactID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid contact id"})
	}

	var req dto.EditContactRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	contact, err := c.contactService.Edit(ctx.Request().Context(), ownerID, contactID, req.Name, req.Email, req.Phone)
	if err != nil {
		return c.mapContactError(ctx, ownerID, contactID, err)
	}

	logrus.WithFields(logrus.Fields{"owner_id": ownerID, "contact_id": contactID}).Info("Contact updated")
	return ctx.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

func (c *ContactController) Delete(ctx echo.Context) error {
	ownerID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	contactID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid contact id"})
	}

	if err := c.contactService.Delete(ctx.Request().Context(), ownerID, contactID); err != nil {
		return c.mapContactError(ctx, ownerID, contactID, err)
	}

	logrus.WithFields(logrus.Fields{"owner_id": ownerID, "contact_id": contactID}).Info("Contact deleted")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "contact deleted"})
}

func (c *ContactController) mapContactError(ctx echo.Context, ownerID, contactID uint64, err error) error {
	if errors.Is(err, service.ErrContactNotFound) {
		return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "contact not found"})
	}
	if errors.Is(err, service.ErrNotContactOwner) {
		return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "not allowed"})
	}
	logrus.WithError(err).WithFields(logrus.Fields{"owner_id": ownerID, "contact_id": contactID}).Error("Contact operation failed")
	return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}

func contactPage(result *appdto.PageResult[*entity.Contact]) dto.ContactPageResponse {
	contacts := make([]dto.ContactResponse, 0, len(result.Items))
	for _, contact := range result.Items {
		contacts = append(contacts, dto.NewContactResponse(contact))
	}
	return dto.ContactPageResponse{
		Contacts:   contacts,
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	}
}
