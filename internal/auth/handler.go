package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-topup/internal/logger"
	"ms-topup/internal/models"
)

type Handler struct {
	Service *Service
	Logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// Login exchanges admin credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	token, err := h.Service.Login(req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		h.Logger.Warn("AUTH", fmt.Sprintf("Failed login attempt for %s", req.Username))
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Login: %v", err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{
		Message: "Login successful",
		Token:   token,
	})
}

// Register creates a new admin account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	err := h.Service.Register(req.Username, req.Password)
	if errors.Is(err, ErrAdminExists) {
		writeError(w, http.StatusConflict, "Username already taken")
		return
	}
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Register: %v", err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("Admin registered: %s", req.Username))
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Admin created"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
