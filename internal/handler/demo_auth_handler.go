package handler

import (
	"net/http"

	"file-manager-server/internal/model/requestresponse"
	"file-manager-server/internal/security"
	"file-manager-server/internal/util"
)

// DemoAuthHandler : canned /api/auth responses for demo deployments. The
// account endpoints never touch the database; the fixed demo identity has no
// users row to look up.
type DemoAuthHandler struct{}

func NewDemoAuthHandler() *DemoAuthHandler {
	return &DemoAuthHandler{}
}

func demoUser() requestresponse.UserResponse {
	return requestresponse.UserResponse{
		ID:            security.DemoUserID,
		Name:          "Demo User",
		Email:         "demo@example.com",
		EmailVerified: true,
	}
}

func (h *DemoAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, demoUser())
}

func (h *DemoAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.LoginResponse{
		Message: "Login successful (demo mode)",
		User:    demoUser(),
	})
}

func (h *DemoAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "User created successfully (demo mode)"})
}

func (h *DemoAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Logout successful (demo mode)"})
}

func (h *DemoAuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Verification email sent (demo mode)"})
}

func (h *DemoAuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Reset email sent (demo mode)"})
}

func (h *DemoAuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "Password reset successful (demo mode)"})
}
