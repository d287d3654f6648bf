package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmun/delegation-api/internal/auth"
	"github.com/openmun/delegation-api/internal/domain/registration"
	"github.com/openmun/delegation-api/internal/response"
)

// AuthHandler exposes signup, sign-in, email verification, and password
// reset over HTTP.
type AuthHandler struct {
	registration *registration.Service
	identity     *auth.Service
}

func NewAuthHandler(reg *registration.Service, identity *auth.Service) *AuthHandler {
	return &AuthHandler{
		registration: reg,
		identity:     identity,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req registration.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	p, err := h.registration.Register(c.Request.Context(), req)
	switch {
	case err == nil:
		response.SuccessResponse(c, http.StatusCreated,
			"Account created. Check your email to verify your address.", p)
	case errors.Is(err, registration.ErrVerificationEmailFailed):
		// The account exists; the delegate can ask for a re-send.
		response.SuccessResponse(c, http.StatusCreated,
			"Account created, but the verification email could not be sent. Request a new one via resend-verification.", p)
	case errors.Is(err, registration.ErrCommunityNotFound):
		response.NotFoundError(c, "Community not found")
	case errors.Is(err, registration.ErrCommunityFull):
		response.ConflictError(c, "Community has no seats left")
	case errors.Is(err, registration.ErrCountryUnavailable):
		response.ConflictError(c, "Country is not available in this community")
	case errors.Is(err, registration.ErrEmailAlreadyRegistered):
		response.ConflictError(c, "Email is already registered")
	case errors.Is(err, registration.ErrInvalidRequest):
		response.BadRequestError(c, err.Error())
	default:
		response.InternalServerError(c, "Failed to create account")
	}
}

// LoginRequest is the sign-in payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	token, p, err := h.identity.SignIn(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		response.SuccessResponse(c, http.StatusOK, "Signed in", gin.H{
			"token":  token,
			"person": p,
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.UnauthorizedError(c, "Invalid email or password")
	case errors.Is(err, auth.ErrEmailNotVerified):
		response.ForbiddenError(c, "Email address has not been verified")
	default:
		response.InternalServerError(c, "Failed to sign in")
	}
}

// VerifyRequest carries an emailed verification token
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// Verify handles POST /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	err := h.identity.VerifyEmail(c.Request.Context(), req.Token)
	switch {
	case err == nil:
		response.SuccessResponse(c, http.StatusOK, "Email verified", nil)
	case errors.Is(err, auth.ErrInvalidToken):
		response.BadRequestError(c, "Invalid or expired verification token")
	default:
		response.InternalServerError(c, "Failed to verify email")
	}
}

// EmailRequest carries a bare email address
type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResendVerification handles POST /api/auth/resend-verification. The reply
// is the same whether or not the email is registered.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	if err := h.identity.ResendVerification(c.Request.Context(), req.Email); err != nil {
		response.InternalServerError(c, "Failed to send verification email")
		return
	}
	response.SuccessResponse(c, http.StatusAccepted,
		"If the address is registered, a verification email is on its way.", nil)
}

// RequestPasswordReset handles POST /api/auth/reset-password/request
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	if err := h.identity.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.InternalServerError(c, "Failed to send reset email")
		return
	}
	response.SuccessResponse(c, http.StatusAccepted,
		"If the address is registered, a reset email is on its way.", nil)
}

// ResetPasswordRequest carries a reset token and the replacement password
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ResetPassword handles POST /api/auth/reset-password/confirm
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	err := h.identity.ResetPassword(c.Request.Context(), req.Token, req.Password)
	switch {
	case err == nil:
		response.SuccessResponse(c, http.StatusOK, "Password updated", nil)
	case errors.Is(err, auth.ErrInvalidToken):
		response.BadRequestError(c, "Invalid or expired reset token")
	case errors.Is(err, auth.ErrInvalidPassword):
		response.BadRequestError(c, err.Error())
	default:
		response.InternalServerError(c, "Failed to reset password")
	}
}
