package controller

import (
	"strconv"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"

	"github.com/labstack/echo/v4"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// pageParams reads page/limit query parameters, clamping them to sane values.
func pageParams(ctx echo.Context) (page, limit int) {
	page = defaultPage
	limit = defaultLimit

	if v, err := strconv.Atoi(ctx.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && v > 0 {
		limit = v
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit
}

func pathID(ctx echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func contextUserID(ctx echo.Context) (uint64, bool) {
	id, ok := ctx.Get("user_id").(uint64)
	return id, ok
}

// contextUser rebuilds the authenticated user from the claims the auth
// middleware stored on the request context.
func contextUser(ctx echo.Context) (*entity.User, bool) {
	id, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return nil, false
	}
	email, _ := ctx.Get("user_email").(string)
	role, _ := ctx.Get("user_role").(string)
	return &entity.User{ID: id, Email: email, Role: role}, true
}
