package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"uniride/internal/domain"
	"uniride/internal/middleware"
	"uniride/internal/service"
)

// VehicleHandler handles HTTP requests for vehicles.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// VehiclePayload is a registered vehicle on the wire.
type VehiclePayload struct {
	VehicleID    string `json:"vehicle_id"`
	LicensePlate string `json:"license_plate"`
	Model        string `json:"model"`
	Capacity     int    `json:"capacity"`
	SOATURL      string `json:"soat_url"`
	PhotoURL     string `json:"photo_url,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func toVehiclePayload(v *domain.Vehicle) VehiclePayload {
	return VehiclePayload{
		VehicleID:    v.ID,
		LicensePlate: v.LicensePlate,
		Model:        v.Model,
		Capacity:     v.Capacity,
		SOATURL:      v.SOATURL,
		PhotoURL:     v.PhotoURL,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
}

// RegisterVehicleRequest is the HTTP request body for registering a vehicle.
type RegisterVehicleRequest struct {
	LicensePlate string `json:"license_plate" binding:"required,plate"`
	Model        string `json:"model" binding:"required"`
	Capacity     int    `json:"capacity" binding:"required,min=2"`
	SOATURL      string `json:"soat_url" binding:"required"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// RegisterVehicle handles POST /api/vehicles
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "invalid_request"})
		return
	}

	vehicle, err := h.vehicleService.Register(c.Request.Context(), service.RegisterVehicleRequest{
		OwnerUID:     middleware.UID(c),
		LicensePlate: req.LicensePlate,
		Model:        req.Model,
		Capacity:     req.Capacity,
		SOATURL:      req.SOATURL,
		PhotoURL:     req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehiclePayload(vehicle))
}

// ListVehicles handles GET /api/vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicleService.List(c.Request.Context(), middleware.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]VehiclePayload, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehiclePayload(v))
	}
	respondJSON(c, http.StatusOK, gin.H{"vehicles": out})
}

// DeleteVehicle handles DELETE /api/vehicles/:id
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	err := h.vehicleService.Delete(c.Request.Context(), middleware.UID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "vehicle deleted"})
}
