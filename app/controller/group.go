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

type GroupController struct {
	groupService *service.GroupService
	uploads      *service.UploadStore
}

func NewGroupController(groupService *service.GroupService, uploads *service.UploadStore) *GroupController {
	return &GroupController{groupService: groupService, uploads: uploads}
}

// Create accepts a multipart form so the group icon can be uploaded
// together with the name and description.
func (c *GroupController) Create(ctx echo.Context) error {
	userID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	name := strings.TrimSpace(ctx.FormValue("name"))
	if name == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "name is required"})
	}
	description := strings.TrimSpace(ctx.FormValue("description"))

	var iconURL string
	if fileHeader, err := ctx.FormFile("icon"); err == nil {
		stored, err := c.uploads.Save(fileHeader, "group-icon")
		if err != nil {
			logrus.WithError(err).Error("Group icon upload failed")
			return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		}
		iconURL = stored.URL
	}

	group, err := c.groupService.Create(ctx.Request().Context(), userID, name, description, iconURL)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Create group failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{"group_id": group.ID, "user_id": userID}).Info("Group created")
	return ctx.JSON(http.StatusCreated, dto.NewGroupResponse(group))
}

func (c *GroupController) List(ctx echo.Context) error {
	userID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	page, limit := pageParams(ctx)
	groups, err := c.groupService.ListForUser(ctx.Request().Context(), userID, page, limit)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("List groups failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	responses := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, dto.NewGroupResponse(group))
	}
	return ctx.JSON(http.StatusOK, dto.GroupListResponse{Groups: responses, Page: page, Limit: limit})
}

// ListAll serves the admin view of every group, not just the caller's
// memberships.
func (c *GroupController) ListAll(ctx echo.Context) error {
	page, limit := pageParams(ctx)
	groups, err := c.groupService.ListAll(ctx.Request().Context(), page, limit)
	if err != nil {
		logrus.WithError(err).Error("List all groups failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	responses := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, dto.NewGroupResponse(group))
	}
	return ctx.JSON(http.StatusOK, dto.GroupListResponse{Groups: responses, Page: page, Limit: limit})
}

func (c *GroupController) Detail(ctx echo.Context) error {
	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	group, err := c.groupService.Detail(ctx.Request().Context(), groupID)
	if err != nil {
		return c.mapGroupError(ctx, groupID, err)
	}

	return ctx.JSON(http.StatusOK, dto.NewGroupResponse(group))
}

func (c *GroupController) Members(ctx echo.Context) error {
	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	members, err := c.groupService.Members(ctx.Request().Context(), groupID)
	if err != nil {
		return c.mapGroupError(ctx, groupID, err)
	}

	return ctx.JSON(http.StatusOK, dto.MembersResponse{Members: dto.NewUserResponses(members)})
}

func (c *GroupController) AddMembers(ctx echo.Context) error {
	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	var req dto.MemberIDsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.UserIDs) == 0 {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "user_ids is required"})
	}

	if err := c.groupService.AddMembers(ctx.Request().Context(), groupID, req.UserIDs); err != nil {
		if errors.Is(err, service.ErrUsersNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "one or more users not found"})
		}
		return c.mapGroupError(ctx, groupID, err)
	}

	logrus.WithFields(logrus.Fields{"group_id": groupID, "count": len(req.UserIDs)}).Info("Members added")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "members added"})
}

func (c *GroupController) RemoveMembers(ctx echo.Context) error {
	actorID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	var req dto.MemberIDsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.UserIDs) == 0 {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "user_ids is required"})
	}

	if err := c.groupService.RemoveMembers(ctx.Request().Context(), actorID, groupID, req.UserIDs); err != nil {
		if errors.Is(err, service.ErrAdminCannotLeave) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "cannot remove yourself from the group"})
		}
		if errors.Is(err, service.ErrUsersNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "one or more users not found"})
		}
		return c.mapGroupError(ctx, groupID, err)
	}

	logrus.WithFields(logrus.Fields{"group_id": groupID, "count": len(req.UserIDs)}).Info("Members removed")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "members removed"})
}

func (c *GroupController) Leave(ctx echo.Context) error {
	user, ok := contextUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	if err := c.groupService.Leave(ctx.Request().Context(), user, groupID); err != nil {
		if errors.Is(err, service.ErrAdminCannotLeave) {
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "admin cannot leave a group"})
		}
		if errors.Is(err, service.ErrNotMember) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not a member of this group"})
		}
		return c.mapGroupError(ctx, groupID, err)
	}

	logrus.WithFields(logrus.Fields{"group_id": groupID, "user_id": user.ID}).Info("User left group")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "left group"})
}

func (c *GroupController) Delete(ctx echo.Context) error {
	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	if err := c.groupService.DeleteGroup(ctx.Request().Context(), groupID); err != nil {
		return c.mapGroupError(ctx, groupID, err)
	}

	logrus.WithField("group_id", groupID).Info("Group deleted")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "group deleted"})
}

func (c *GroupController) GenerateInvite(ctx echo.Context) error {
	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	result, err := c.groupService.GenerateInvite(ctx.Request().Context(), groupID)
	if err != nil {
		return c.mapGroupError(ctx, groupID, err)
	}

	return ctx.JSON(http.StatusOK, dto.InviteResponse{Token: result.Token, InviteURL: result.InviteURL})
}

func (c *GroupController) ValidateInvite(ctx echo.Context) error {
	token := strings.TrimSpace(ctx.QueryParam("token"))
	if token == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "token is required"})
	}

	groupID, err := c.groupService.ValidateInvite(token)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invite link has expired"})
		}
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid invite link"})
	}

	return ctx.JSON(http.StatusOK, dto.ValidateInviteResponse{GroupID: groupID})
}

func (c *GroupController) RedeemInvite(ctx echo.Context) error {
	userID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.RedeemInviteRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Token) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "token is required"})
	}

	result, err := c.groupService.RedeemInvite(ctx.Request().Context(), userID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invite link has expired"})
		case errors.Is(err, service.ErrInvalidToken):
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid invite link"})
		case errors.Is(err, service.ErrGroupNotFound):
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "group not found"})
		case errors.Is(err, service.ErrAlreadyMember):
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: "already a member of this group"})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Redeem invite failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "group_id": result.GroupID}).Info("Invite redeemed")
	return ctx.JSON(http.StatusOK, dto.RedeemInviteResponse{
		GroupID:   result.GroupID,
		GroupName: result.GroupName,
		Message:   "joined group",
	})
}

func (c *GroupController) UploadDocuments(ctx echo.Context) error {
	userID, ok := contextUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid multipart form"})
	}
	headers := form.File["documents"]
	if len(headers) == 0 {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "no files uploaded"})
	}

	files := make([]service.StoredFile, 0, len(headers))
	for _, header := range headers {
		stored, err := c.uploads.Save(header, "document")
		if err != nil {
			logrus.WithError(err).WithField("group_id", groupID).Error("Document upload failed")
			return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		}
		files = append(files, *stored)
	}

	docs, err := c.groupService.SaveDocuments(ctx.Request().Context(), userID, groupID, files)
	if err != nil {
		if errors.Is(err, service.ErrNotMember) {
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "not a member of this group"})
		}
		return c.mapGroupError(ctx, groupID, err)
	}

	responses := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, dto.NewDocumentResponse(doc))
	}
	logrus.WithFields(logrus.Fields{"group_id": groupID, "count": len(docs)}).Info("Documents uploaded")
	return ctx.JSON(http.StatusCreated, responses)
}

func (c *GroupController) ListDocuments(ctx echo.Context) error {
	groupID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid group id"})
	}

	page, limit := pageParams(ctx)
	result, err := c.groupService.Documents(ctx.Request().Context(), groupID, page, limit)
	if err != nil {
		return c.mapGroupError(ctx, groupID, err)
	}

	return ctx.JSON(http.StatusOK, documentPage(result))
}

func (c *GroupController) DeleteDocuments(ctx echo.Context) error {
	user, ok := contextUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.DeleteDocumentsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.DocumentIDs) == 0 {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "document_ids is required"})
	}

	if err := c.groupService.DeleteDocuments(ctx.Request().Context(), user, req.DocumentIDs); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Delete documents failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "count": len(req.DocumentIDs)}).Info("Documents deleted")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "documents deleted"})
}

func (c *GroupController) mapGroupError(ctx echo.Context, groupID uint64, err error) error {
	if errors.Is(err, service.ErrGroupNotFound) {
		return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "group not found"})
	}
	logrus.WithError(err).WithField("group_id", groupID).Error("Group operation failed")
	return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}

func documentPage(result *appdto.PageResult[*entity.Document]) dto.DocumentPageResponse {
	docs := make([]dto.DocumentResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		docs = append(docs, dto.NewDocumentResponse(doc))
	}
	return dto.DocumentPageResponse{
		Documents:  docs,
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	}
}
