package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"uniride/internal/domain"
)

// uploadTimeout bounds document uploads, which ride on slower campus networks
// than the JSON calls.
const uploadTimeout = 8 * time.Second

var (
	ErrInvalidPlate = errors.New("license plate must be three letters followed by three digits")
	ErrSOATRequired = errors.New("a SOAT document is required")
	ErrLastVehicle  = errors.New("cannot delete the only registered vehicle")
)

// VehicleAPI is the typed vehicle surface of the SDK.
type VehicleAPI struct {
	c *Client
}

// NewVehicleAPI creates the vehicle API surface over a Client.
func NewVehicleAPI(c *Client) *VehicleAPI {
	return &VehicleAPI{c: c}
}

// List fetches the caller's registered vehicles.
func (a *VehicleAPI) List(ctx context.Context) ([]Vehicle, error) {
	var resp struct {
		Vehicles []Vehicle `json:"vehicles"`
	}
	if err := a.c.do(ctx, http.MethodGet, "/api/vehicles", nil, nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Vehicles, nil
}

// RegisterVehicleRequest contains the parameters for registering a vehicle.
type RegisterVehicleRequest struct {
	LicensePlate string `json:"license_plate"`
	Model        string `json:"model"`
	Capacity     int    `json:"capacity"`
	SOATURL      string `json:"soat_url"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// Register validates the plate locally, then registers the vehicle. The plate
// is normalized before validation so "abc 123" goes over the wire as "ABC123".
func (a *VehicleAPI) Register(ctx context.Context, req RegisterVehicleRequest) (*Vehicle, error) {
	plate := domain.NormalizePlate(req.LicensePlate)
	if !domain.ValidPlate(plate) {
		return nil, ErrInvalidPlate
	}
	if req.SOATURL == "" {
		return nil, ErrSOATRequired
	}
	req.LicensePlate = plate

	var vehicle Vehicle
	if err := a.c.do(ctx, http.MethodPost, "/api/vehicles", nil, req, &vehicle, uuid.New().String()); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Delete removes a vehicle. The caller's last vehicle is protected locally,
// mirroring the backend rule, so the request is never sent.
func (a *VehicleAPI) Delete(ctx context.Context, vehicleID string) error {
	vehicles, err := a.List(ctx)
	if err != nil {
		return err
	}
	if len(vehicles) <= 1 {
		return ErrLastVehicle
	}

	return a.c.do(ctx, http.MethodDelete, "/api/vehicles/"+vehicleID, nil, nil, nil, "")
}

// UploadDocument uploads a SOAT or vehicle photo to the given upload endpoint
// and returns the stored file's URL. The call is bounded by uploadTimeout
// regardless of the parent context.
func (a *VehicleAPI) UploadDocument(ctx context.Context, uploadURL, filename string, content io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(bytes.TrimSpace(data)), nil
}
