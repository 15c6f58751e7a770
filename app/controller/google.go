package controller

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	dto "github.com/vibast-solutions/ms-go-contacts/app/dto/http"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

const oauthStateCookie = "oauth_state"

type GoogleController struct {
	authService *service.AuthService
	oauth       *oauth2.Config
}

func NewGoogleController(authService *service.AuthService, cfg config.GoogleConfig) *GoogleController {
	return &GoogleController{
		authService: authService,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// Redirect sends the browser to Google's consent screen with a random
// state value pinned in a short-lived cookie.
func (c *GoogleController) Redirect(ctx echo.Context) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		logrus.WithError(err).Error("Failed to generate oauth state")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	ctx.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   ctx.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return ctx.Redirect(http.StatusTemporaryRedirect, c.oauth.AuthCodeURL(state))
}

func (c *GoogleController) Callback(ctx echo.Context) error {
	cookie, err := ctx.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != ctx.QueryParam("state") {
		logrus.Warn("Google callback with bad state")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid oauth state"})
	}
	ctx.SetCookie(&http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := ctx.QueryParam("code")
	if code == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing authorization code"})
	}

	reqCtx := ctx.Request().Context()
	token, err := c.oauth.Exchange(reqCtx, code)
	if err != nil {
		logrus.WithError(err).Error("Google code exchange failed")
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "google authentication failed"})
	}

	profile, err := c.fetchProfile(ctx, token)
	if err != nil {
		logrus.WithError(err).Error("Google userinfo fetch failed")
		return ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to fetch google profile"})
	}

	result, err := c.authService.AuthGoogle(reqCtx, profile)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotVerified) {
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "google account email is not verified"})
		}
		logrus.WithError(err).WithField("email", profile.Email).Error("Google auth failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", result.User.ID).Info("Google login successful")
	return ctx.JSON(http.StatusOK, dto.AuthResponse{
		User:         dto.NewUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

func (c *GoogleController) fetchProfile(ctx echo.Context, token *oauth2.Token) (service.GoogleProfile, error) {
	var profile service.GoogleProfile

	client := c.oauth.Client(ctx.Request().Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return profile, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return profile, err
	}

	profile = service.GoogleProfile{
		Sub:           payload.ID,
		Email:         payload.Email,
		EmailVerified: payload.VerifiedEmail,
		GivenName:     payload.GivenName,
		FamilyName:    payload.FamilyName,
		Picture:       payload.Picture,
	}
	return profile, nil
}
