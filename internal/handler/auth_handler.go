package handler

import (
	"encoding/json"
	"net/http"

	"file-manager-server/internal/model/requestresponse"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/security"
	"file-manager-server/internal/util"
)

type AuthHandler struct {
	userService ports.UserService
	authService ports.AuthenticationService
}

func NewAuthHandler(userService ports.UserService, authService ports.AuthenticationService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

// Register godoc
// @Summary Register a new account
// @Description Creates an unverified account and sends a verification email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requestresponse.RegisterRequest true "Registration payload"
// @Success 201 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Invalid or already registered email, bad name or password"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	emailSent, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.MessageResponse{
		Message:   "Registration successful. Please check your email to verify your account.",
		EmailSent: &emailSent,
	})
}

// VerifyEmail godoc
// @Summary Redeem an email verification token
// @Description Marks the account verified and redirects to the front page.
// @Tags Auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 302 {string} string "Redirect to /?verified=true"
// @Failure 400 {object} requestresponse.ErrorResponse "Invalid or expired token"
// @Router /api/auth/verify [get]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if err := h.userService.VerifyEmail(r.Context(), token); err != nil {
		util.HandleError(w, err)
		return
	}

	http.Redirect(w, r, "/?verified=true", http.StatusFound)
}

// ResendVerification godoc
// @Summary Resend the verification email
// @Description Issues a fresh verification token; the previous link stops working.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requestresponse.EmailRequest true "Account email"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Already verified"
// @Failure 404 {object} requestresponse.ErrorResponse "No account with this email"
// @Router /api/auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	emailSent, err := h.userService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{
		Message:   "Verification email sent. Please check your inbox.",
		EmailSent: &emailSent,
	})
}

// Login godoc
// @Summary Log in
// @Description Checks credentials and returns a bearer token for verified accounts.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requestresponse.LoginRequest true "Credentials"
// @Success 200 {object} requestresponse.LoginResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Invalid credentials or email not verified"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User: requestresponse.UserResponse{
			ID:            user.ID,
			Name:          user.Name,
			Email:         user.Email,
			EmailVerified: user.EmailVerified,
		},
	})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the presented session token.
// @Tags Auth
// @Produce json
// @Param Authorization header string true "Bearer token" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := security.IdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, err)
		return
	}

	var until = claims.ExpiresAt
	if until == nil {
		util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Logged out successfully"})
		return
	}

	if err := h.authService.Logout(r.Context(), claims.ID, until.Time); err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Logged out successfully"})
}

// Me godoc
// @Summary Current account
// @Description Returns the authenticated account, re-read from the database.
// @Tags Auth
// @Produce json
// @Param Authorization header string true "Bearer token" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := security.IdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	})
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Always answers with the same message; never reveals whether the address exists.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requestresponse.EmailRequest true "Account email"
// @Success 200 {object} requestresponse.MessageResponse
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	emailSent, err := h.userService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{
		Message:   "If an account with that email exists, a password reset link has been sent.",
		EmailSent: &emailSent,
	})
}

// ResetPassword godoc
// @Summary Redeem a password reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requestresponse.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Invalid token or weak password"
// @Router /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		util.HandleError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Password has been reset successfully"})
}
