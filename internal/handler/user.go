package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendhq/tend/internal/domain"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/user"
)

// RegisterUserRequest represents the request to register a household member
type RegisterUserRequest struct {
	Name string `json:"name" validate:"required,max=50"`
	Role string `json:"role" validate:"required,role"`
}

// UserResponse wraps a household member for API responses
type UserResponse struct {
	User *domain.User `json:"user"`
}

// HandleRegisterUser handles household member registration.
// Registration is idempotent: re-registering an existing name returns the
// existing member.
func HandleRegisterUser(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req RegisterUserRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Register user"); err != nil {
			return
		}

		registered, err := userService.Register(r.Context(), req.Name, domain.Role(req.Role))
		if err != nil {
			respondServiceError(w, r, "Register user", err)
			return
		}

		log.Info("User registered", "user_id", registered.ID, "name", registered.Name)
		respondJSON(w, http.StatusCreated, UserResponse{User: registered})
	}
}

// HandleGetUser returns a member by id
func HandleGetUser(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		u, err := userService.GetUser(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get user", err)
			return
		}

		respondJSON(w, http.StatusOK, UserResponse{User: u})
	}
}
