package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/utils"
	"github.com/MKhiriev/drawer-sync/models"
	"github.com/go-resty/resty/v2"
)

const roomPrefix = "/api/rooms/{room}"

type httpAuthorityAdapter struct {
	client *utils.HTTPClient

	mu     sync.RWMutex
	token  string
	roomID string

	logger *logger.Logger
}

// NewHTTPAuthorityAdapter constructs an HTTP/REST implementation of
// [AuthorityAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying HTTP client with the
// resolved base URL and request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPAuthorityAdapter(adapterCfg config.Adapter, logger *logger.Logger) (AuthorityAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpAuthorityAdapter{client: client, logger: logger.WithComponent("adapter")}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [AuthorityAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent requests.
func (h *httpAuthorityAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [AuthorityAdapter].
func (h *httpAuthorityAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// SetRoom implements [AuthorityAdapter].
func (h *httpAuthorityAdapter) SetRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roomID = roomID
}

func (h *httpAuthorityAdapter) room() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.roomID
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	RoomID       string `json:"room_id,omitempty"`
}

// RefreshToken implements [AuthorityAdapter]. It POSTs the credential to
// POST /api/auth/refresh and parses the bearer token from the Authorization
// response header.
func (h *httpAuthorityAdapter) RefreshToken(ctx context.Context, refreshToken string) (models.Token, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(refreshRequest{RefreshToken: refreshToken, RoomID: h.room()}).
		Post("/api/auth/refresh")
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: refresh request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	signed, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("refresh parse bearer token: %w", err)
	}
	token, err := utils.ParseToken(signed)
	if err != nil {
		return models.Token{}, fmt.Errorf("refresh parse token: %w", err)
	}

	return token, nil
}

type fieldsBody struct {
	Fields    models.Fields `json:"fields"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

type hintBody struct {
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CreateDrawer implements [AuthorityAdapter]: POST /drawers.
func (h *httpAuthorityAdapter) CreateDrawer(ctx context.Context, drawer models.Drawer, updatedAt *time.Time) (models.Drawer, error) {
	if updatedAt != nil {
		drawer.UpdatedAt = updatedAt
	}

	var created models.Drawer
	req, err := h.roomRequest(ctx)
	if err != nil {
		return models.Drawer{}, err
	}
	resp, err := req.
		SetBody(drawer).
		SetResult(&created).
		Post(roomPrefix + "/drawers")
	if err != nil {
		return models.Drawer{}, fmt.Errorf("%w: create drawer request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Drawer{}, err
	}

	if created.ID == "" {
		created = drawer
	}
	return created, nil
}

// UpdateDrawer implements [AuthorityAdapter]: PATCH /drawers/{id}.
func (h *httpAuthorityAdapter) UpdateDrawer(ctx context.Context, drawerID string, fields models.Fields, updatedAt *time.Time) error {
	req, err := h.roomRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParam("drawer", drawerID).
		SetBody(fieldsBody{Fields: fields, UpdatedAt: updatedAt}).
		Patch(roomPrefix + "/drawers/{drawer}")
	if err != nil {
		return fmt.Errorf("%w: update drawer request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

// DeleteDrawer implements [AuthorityAdapter]: DELETE /drawers/{id}.
func (h *httpAuthorityAdapter) DeleteDrawer(ctx context.Context, drawerID string, updatedAt *time.Time) error {
	req, err := h.roomRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParam("drawer", drawerID).
		SetBody(hintBody{UpdatedAt: updatedAt}).
		Delete(roomPrefix + "/drawers/{drawer}")
	if err != nil {
		return fmt.Errorf("%w: delete drawer request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

type resizeBody struct {
	Rows      int        `json:"rows"`
	Cols      int        `json:"cols"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type compartmentsResult struct {
	Compartments []models.Compartment `json:"compartments"`
}

// ResizeDrawer implements [AuthorityAdapter]: PATCH /drawers/{id}/resize.
func (h *httpAuthorityAdapter) ResizeDrawer(ctx context.Context, drawerID string, rows, cols int, updatedAt *time.Time) ([]models.Compartment, error) {
	var result compartmentsResult
	req, err := h.roomRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetPathParam("drawer", drawerID).
		SetBody(resizeBody{Rows: rows, Cols: cols, UpdatedAt: updatedAt}).
		SetResult(&result).
		Patch(roomPrefix + "/drawers/{drawer}/resize")
	if err != nil {
		return nil, fmt.Errorf("%w: resize drawer request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return result.Compartments, nil
}

// UpdateCompartment implements [AuthorityAdapter]:
// PATCH /drawers/{d}/compartments/{c}.
func (h *httpAuthorityAdapter) UpdateCompartment(ctx context.Context, drawerID, compartmentID string, fields models.Fields, updatedAt *time.Time) error {
	req, err := h.roomRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParams(map[string]string{"drawer": drawerID, "compartment": compartmentID}).
		SetBody(fieldsBody{Fields: fields, UpdatedAt: updatedAt}).
		Patch(roomPrefix + "/drawers/{drawer}/compartments/{compartment}")
	if err != nil {
		return fmt.Errorf("%w: update compartment request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

type dividersBody struct {
	Count       int        `json:"count"`
	Orientation string     `json:"orientation,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type subCompartmentsResult struct {
	SubCompartments []models.SubCompartment `json:"sub_compartments"`
}

// SetDividerCount implements [AuthorityAdapter]:
// PUT /drawers/{d}/compartments/{c}/dividers.
func (h *httpAuthorityAdapter) SetDividerCount(ctx context.Context, drawerID, compartmentID string, count int, orientation string, updatedAt *time.Time) ([]models.SubCompartment, error) {
	var result subCompartmentsResult
	req, err := h.roomRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetPathParams(map[string]string{"drawer": drawerID, "compartment": compartmentID}).
		SetBody(dividersBody{Count: count, Orientation: orientation, UpdatedAt: updatedAt}).
		SetResult(&result).
		Put(roomPrefix + "/drawers/{drawer}/compartments/{compartment}/dividers")
	if err != nil {
		return nil, fmt.Errorf("%w: set dividers request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return result.SubCompartments, nil
}

// UpdateSubCompartment implements [AuthorityAdapter]:
// PATCH /drawers/{d}/compartments/{c}/sub-compartments/{s}.
func (h *httpAuthorityAdapter) UpdateSubCompartment(ctx context.Context, update models.SubCompartmentUpdated, updatedAt *time.Time) error {
	req, err := h.roomRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParams(map[string]string{
			"drawer":      update.DrawerID,
			"compartment": update.CompartmentID,
			"sub":         update.SubCompartmentID,
		}).
		SetBody(fieldsBody{Fields: update.Fields, UpdatedAt: updatedAt}).
		Patch(roomPrefix + "/drawers/{drawer}/compartments/{compartment}/sub-compartments/{sub}")
	if err != nil {
		return fmt.Errorf("%w: update sub-compartment request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

type batchBody struct {
	Updates   []models.SubCompartmentUpdated `json:"updates"`
	UpdatedAt *time.Time                     `json:"updated_at,omitempty"`
}

// BatchUpdateSubCompartments implements [AuthorityAdapter]:
// PATCH /drawers/{d}/sub-compartments/batch.
func (h *httpAuthorityAdapter) BatchUpdateSubCompartments(ctx context.Context, drawerID string, updates []models.SubCompartmentUpdated, updatedAt *time.Time) error {
	if len(updates) == 0 {
		return nil
	}

	req, err := h.roomRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParam("drawer", drawerID).
		SetBody(batchBody{Updates: updates, UpdatedAt: updatedAt}).
		Patch(roomPrefix + "/drawers/{drawer}/sub-compartments/batch")
	if err != nil {
		return fmt.Errorf("%w: batch update request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

type categoryBody struct {
	models.Category
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CreateCategory implements [AuthorityAdapter]: POST /categories.
func (h *httpAuthorityAdapter) CreateCategory(ctx context.Context, category models.Category, updatedAt *time.Time) (models.Category, error) {
	var created models.Category
	req, err := h.roomRequest(ctx)
	if err != nil {
		return models.Category{}, err
	}
	resp, err := req.
		SetBody(categoryBody{Category: category, UpdatedAt: updatedAt}).
		SetResult(&created).
		Post(roomPrefix + "/categories")
	if err != nil {
		return models.Category{}, fmt.Errorf("%w: create category request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Category{}, err
	}

	if created.ID == "" {
		created = category
	}
	return created, nil
}

// UpdateCategory implements [AuthorityAdapter]: PATCH /categories/{id}.
func (h *httpAuthorityAdapter) UpdateCategory(ctx context.Context, categoryID string, fields models.Fields, updatedAt *time.Time) error {
	req, err := h.roomRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParam("category", categoryID).
		SetBody(fieldsBody{Fields: fields, UpdatedAt: updatedAt}).
		Patch(roomPrefix + "/categories/{category}")
	if err != nil {
		return fmt.Errorf("%w: update category request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

// DeleteCategory implements [AuthorityAdapter]: DELETE /categories/{id}.
func (h *httpAuthorityAdapter) DeleteCategory(ctx context.Context, categoryID string, updatedAt *time.Time) error {
	req, err := h.roomRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParam("category", categoryID).
		SetBody(hintBody{UpdatedAt: updatedAt}).
		Delete(roomPrefix + "/categories/{category}")
	if err != nil {
		return fmt.Errorf("%w: delete category request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

type mergeBody struct {
	CompartmentIDs []string   `json:"compartment_ids"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// MergeCompartments implements [AuthorityAdapter]:
// POST /drawers/{d}/compartments/merge.
func (h *httpAuthorityAdapter) MergeCompartments(ctx context.Context, drawerID string, compartmentIDs []string, updatedAt *time.Time) ([]models.Compartment, error) {
	var result compartmentsResult
	req, err := h.roomRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetPathParam("drawer", drawerID).
		SetBody(mergeBody{CompartmentIDs: compartmentIDs, UpdatedAt: updatedAt}).
		SetResult(&result).
		Post(roomPrefix + "/drawers/{drawer}/compartments/merge")
	if err != nil {
		return nil, fmt.Errorf("%w: merge compartments request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return result.Compartments, nil
}

// SplitCompartment implements [AuthorityAdapter]:
// POST /drawers/{d}/compartments/{c}/split.
func (h *httpAuthorityAdapter) SplitCompartment(ctx context.Context, drawerID, compartmentID string, updatedAt *time.Time) ([]models.Compartment, error) {
	var result compartmentsResult
	req, err := h.roomRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetPathParams(map[string]string{"drawer": drawerID, "compartment": compartmentID}).
		SetBody(hintBody{UpdatedAt: updatedAt}).
		SetResult(&result).
		Post(roomPrefix + "/drawers/{drawer}/compartments/{compartment}/split")
	if err != nil {
		return nil, fmt.Errorf("%w: split compartment request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return result.Compartments, nil
}

// roomRequest returns an authenticated JSON request scoped to the current
// room.
func (h *httpAuthorityAdapter) roomRequest(ctx context.Context) (*resty.Request, error) {
	h.mu.RLock()
	token, roomID := h.token, h.roomID
	h.mu.RUnlock()

	if roomID == "" {
		return nil, ErrNoRoom
	}

	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("room", roomID)
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req, nil
}
