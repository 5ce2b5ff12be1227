package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"uniride/internal/domain"
	"uniride/internal/middleware"
	"uniride/internal/service"
)

// UserHandler handles HTTP requests for accounts and profiles.
type UserHandler struct {
	accountService *service.AccountService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accountService *service.AccountService) *UserHandler {
	return &UserHandler{accountService: accountService}
}

// TripRefPayload is one entry of a user's trip history on the wire.
type TripRefPayload struct {
	TripID string `json:"trip_id"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UserPayload is the profile representation on the wire.
type UserPayload struct {
	UID            string           `json:"uid"`
	UserID         string           `json:"user_id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Photo          string           `json:"photo,omitempty"`
	City           string           `json:"city,omitempty"`
	Address        string           `json:"address,omitempty"`
	NearbyLandmark string           `json:"nearby_landmark,omitempty"`
	IsDriver       bool             `json:"is_driver"`
	MyTrips        []TripRefPayload `json:"my_trips"`
}

func toUserPayload(u *domain.User) UserPayload {
	refs := make([]TripRefPayload, 0, len(u.MyTrips))
	for _, r := range u.MyTrips {
		refs = append(refs, TripRefPayload{
			TripID: r.TripID,
			Role:   string(r.Role),
			Status: string(r.Status),
		})
	}
	return UserPayload{
		UID:            u.UID,
		UserID:         u.UserID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Phone:          u.Phone,
		Photo:          u.Photo,
		City:           u.City,
		Address:        u.Address,
		NearbyLandmark: u.NearbyLandmark,
		IsDriver:       u.IsDriver,
		MyTrips:        refs,
	}
}

// RegisterRequest is the HTTP request body for creating an account.
type RegisterRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	City      string `json:"city,omitempty"`
	Address   string `json:"address,omitempty"`
}

// SessionResponse is the HTTP response carrying an authenticated session.
type SessionResponse struct {
	User      UserPayload `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
}

// Register handles POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "invalid_request"})
		return
	}

	session, err := h.accountService.Register(c.Request.Context(), service.RegisterAccountRequest{
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		City:      req.City,
		Address:   req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SessionResponse{
		User:      toUserPayload(session.User),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// Me handles GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.accountService.Profile(c.Request.Context(), middleware.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserPayload(user))
}

// UpdateProfileRequest is the HTTP request body for PATCH /api/me. Omitted
// fields keep their stored values.
type UpdateProfileRequest struct {
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Photo          string `json:"photo,omitempty"`
	City           string `json:"city,omitempty"`
	Address        string `json:"address,omitempty"`
	NearbyLandmark string `json:"nearby_landmark,omitempty"`
}

// UpdateMe handles PATCH /api/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "invalid_request"})
		return
	}

	user, err := h.accountService.UpdateProfile(c.Request.Context(), service.UpdateProfileRequest{
		UID:            middleware.UID(c),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Photo:          req.Photo,
		City:           req.City,
		Address:        req.Address,
		NearbyLandmark: req.NearbyLandmark,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserPayload(user))
}
