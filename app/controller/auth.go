package controller

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/vibast-solutions/ms-go-contacts/app/dto/http"
	"github.com/vibast-solutions/ms-go-contacts/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	authService *service.AuthService
	uploads     *service.UploadStore
}

func NewAuthController(authService *service.AuthService, uploads *service.UploadStore) *AuthController {
	return &AuthController{authService: authService, uploads: uploads}
}

func (c *AuthController) Signup(ctx echo.Context) error {
	var req dto.SignupRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "first_name, last_name, email and password are required"})
	}

	logrus.WithField("email", req.Email).Info("Signup request received")
	result, err := c.authService.Signup(ctx.Request().Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("email", req.Email).Warn("Signup failed: user already exists")
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: "user already exists"})
		}
		if errors.Is(err, service.ErrMailDelivery) {
			logrus.WithField("email", req.Email).Error("Signup failed: otp mail delivery")
			return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to send verification email"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Signup failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", result.User.ID).Info("User signed up")
	return ctx.JSON(http.StatusCreated, dto.SignupResponse{
		UserID:  result.User.ID,
		Email:   result.User.Email,
		Message: "signup successful, please verify your email",
	})
}

func (c *AuthController) VerifyEmail(ctx echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and otp are required"})
	}

	result, err := c.authService.VerifyEmail(ctx.Request().Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		case errors.Is(err, service.ErrOTPNotFound):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "no otp found"})
		case errors.Is(err, service.ErrOTPMismatch):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "wrong otp"})
		case errors.Is(err, service.ErrOTPExpired):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "otp expired"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Verify email failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", result.User.ID).Info("Email verified")
	return ctx.JSON(http.StatusOK, dto.AuthResponse{
		User:         dto.NewUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

func (c *AuthController) Login(ctx echo.Context) error {
	var req dto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and password are required"})
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
		}
		if errors.Is(err, service.ErrAccountNotVerified) {
			logrus.WithField("email", req.Email).Warn("Login failed: account not verified")
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "account not verified"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", result.User.ID).Info("Login successful")
	return ctx.JSON(http.StatusOK, dto.AuthResponse{
		User:         dto.NewUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

func (c *AuthController) Logout(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	if err := c.authService.Logout(ctx.Request().Context(), userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", userID).Info("Logout successful")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out successfully"})
}

func (c *AuthController) RefreshToken(ctx echo.Context) error {
	var req dto.RefreshTokenRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.RefreshToken) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "refresh_token is required"})
	}

	result, err := c.authService.RefreshAccessToken(ctx.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			logrus.Warn("Refresh failed: token expired")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "refresh token expired"})
		}
		if errors.Is(err, service.ErrInvalidToken) {
			logrus.Warn("Refresh failed: invalid token")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid refresh token"})
		}
		logrus.WithError(err).Error("Refresh failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.RefreshTokenResponse{
		User:        dto.NewUserResponse(result.User),
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (c *AuthController) SendResetOTP(ctx echo.Context) error {
	var req dto.SendResetOTPRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Email) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email is required"})
	}

	logrus.WithField("email", req.Email).Info("Password reset OTP requested")
	if err := c.authService.SendResetOTP(ctx.Request().Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "email does not exist"})
		}
		if errors.Is(err, service.ErrMailDelivery) {
			logrus.WithField("email", req.Email).Error("Reset OTP mail delivery failed")
			return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to send otp email"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Send reset OTP failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "otp sent"})
}

func (c *AuthController) VerifyResetOTP(ctx echo.Context) error {
	var req dto.VerifyResetOTPRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and otp are required"})
	}

	result, err := c.authService.VerifyResetOTP(ctx.Request().Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		case errors.Is(err, service.ErrOTPNotFound):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "no otp found"})
		case errors.Is(err, service.ErrOTPMismatch):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "wrong otp"})
		case errors.Is(err, service.ErrOTPExpired):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "otp expired"})
		case errors.Is(err, service.ErrInvalidToken):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "no reset request found"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Verify reset OTP failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.VerifyResetOTPResponse{ResetToken: result.ResetToken})
}

func (c *AuthController) ResetPassword(ctx echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.ResetToken) == "" || strings.TrimSpace(req.NewPassword) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "reset_token and new_password are required"})
	}

	if err := c.authService.ResetPassword(ctx.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "reset token expired"})
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrResetTokenMismatch):
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "this password reset link is not valid"})
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).Error("Reset password failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Password reset successful")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "password reset successfully"})
}

func (c *AuthController) Profile(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	user, err := c.authService.Profile(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Profile fetch failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (c *AuthController) UploadAvatar(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	fileHeader, err := ctx.FormFile("avatar")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "no file uploaded"})
	}

	stored, err := c.uploads.Save(fileHeader, "avatar")
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Avatar upload failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	if err = c.authService.UpdateAvatar(ctx.Request().Context(), userID, stored.URL); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Avatar update failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, dto.AvatarResponse{AvatarURL: stored.URL})
}
