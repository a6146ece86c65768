package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/todo-manager-be/internal/auth"
	"github.com/isdelr/todo-manager-be/internal/services"
)

// AuthHandler handles HTTP requests for registration, login, and the
// current-user profile.
type AuthHandler struct {
	auth  services.AuthServiceProvider
	users services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServiceProvider, users services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{auth: authService, users: users}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	UserName        string `json:"userName"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	err := h.auth.Register(services.RegisterInput{
		Username:        payload.UserName,
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		Email:           payload.Email,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})
	if err != nil {
		var rejected *services.RegistrationRejectedError
		switch {
		case errors.Is(err, services.ErrPasswordMismatch):
			respondFail(w, http.StatusBadRequest, "Passwords do not match.")
		case errors.Is(err, services.ErrUsernameTaken):
			respondFail(w, http.StatusBadRequest, "Username is already taken.")
		case errors.As(err, &rejected):
			respondFail(w, http.StatusBadRequest, "Registration failed: "+strings.Join(rejected.Reasons, " "))
		default:
			log.Error().Err(err).Str("username", payload.UserName).Msg("Failed to register user")
			respondFail(w, http.StatusInternalServerError, "Registration failed due to a server issue. Please try again.")
		}
		return
	}

	respondOK(w, http.StatusOK, nil, "User registered successfully.")
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.auth.Login(payload.UserName, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", payload.UserName).Msg("Failed login attempt")
			respondFail(w, http.StatusBadRequest, "Invalid username or password.")
			return
		}
		log.Error().Err(err).Str("username", payload.UserName).Msg("Unexpected error during login")
		respondFail(w, http.StatusInternalServerError, "An unexpected error occurred during login. Please try again.")
		return
	}

	respondOK(w, http.StatusOK, result, "Login successful.")
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	user, err := h.users.GetByUsername(claims.Username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Error().Str("username", claims.Username).Msg("User from token not found in store")
			respondFail(w, http.StatusNotFound, "User information could not be found.")
			return
		}
		log.Error().Err(err).Str("username", claims.Username).Msg("Failed to fetch user profile")
		respondFail(w, http.StatusInternalServerError, "Unable to fetch your profile at the moment. Please try again.")
		return
	}

	respondOK(w, http.StatusOK, user, "User profile loaded successfully.")
}
