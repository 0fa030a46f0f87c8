package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talbothotels/backoffice/internal/model"
	"github.com/talbothotels/backoffice/internal/repository"
	"github.com/talbothotels/backoffice/internal/utils"
)

// HotelHandler exposes CRUD and reporting endpoints over the hotel fleet.
type HotelHandler struct {
	Hotels *repository.HotelRepo
}

func NewHotelHandler(hotels *repository.HotelRepo) *HotelHandler {
	return &HotelHandler{Hotels: hotels}
}

type hotelReq struct {
	Name           string `json:"name"`
	Location       string `json:"location"`
	Address        string `json:"address"`
	Rooms          int    `json:"rooms"`
	Manager        string `json:"manager"`
	Phone          string `json:"phone"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	IsActive       *bool  `json:"is_active"`
	CuentaContable string `json:"cuenta_contable"`
	Presupuesto    int64  `json:"presupuesto"`
}

type hotelResp struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Address        string    `json:"address,omitempty"`
	Rooms          int       `json:"rooms"`
	Manager        string    `json:"manager,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	IsActive       bool      `json:"is_active"`
	CuentaContable string    `json:"cuenta_contable,omitempty"`
	Presupuesto    int64     `json:"presupuesto"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type hotelListResp struct {
	Hotels  []hotelResp `json:"hotels"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Pages   int         `json:"pages"`
}

func toHotelResp(h *model.Hotel) hotelResp {
	return hotelResp{
		ID:             h.ID,
		Name:           h.Name,
		Location:       h.Location,
		Address:        h.Address,
		Rooms:          h.Rooms,
		Manager:        h.Manager,
		Phone:          h.Phone,
		Description:    h.Description,
		Status:         h.Status,
		IsActive:       h.IsActive,
		CuentaContable: h.CuentaContable,
		Presupuesto:    h.Presupuesto,
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
	}
}

func hotelList(hotels []model.Hotel, total, page, perPage int) hotelListResp {
	out := hotelListResp{
		Hotels:  make([]hotelResp, 0, len(hotels)),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   utils.Pages(total, perPage),
	}
	for i := range hotels {
		out.Hotels = append(out.Hotels, toHotelResp(&hotels[i]))
	}
	return out
}

func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	return utils.NormalizePage(page, perPage)
}

// List handles GET /v1/hotels with pagination and an active_only filter
// that defaults to true.
func (h *HotelHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)
	activeOnly := c.QueryParam("active_only") != "false"

	ctx, cancel := reqCtx(c)
	defer cancel()

	hotels, err := h.Hotels.List(ctx, (page-1)*perPage, perPage, activeOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	total, err := h.Hotels.Count(ctx, activeOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, hotelList(hotels, total, page, perPage))
}

// Search handles GET /v1/hotels/search?q=term against name and location.
func (h *HotelHandler) Search(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	page, perPage := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	hotels, total, err := h.Hotels.Search(ctx, term, (page-1)*perPage, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, hotelList(hotels, total, page, perPage))
}

// Stats handles GET /v1/hotels/stats (admin).
func (h *HotelHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Hotels.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, stats)
}

// ListByStatus handles GET /v1/hotels/status/:status.
func (h *HotelHandler) ListByStatus(c echo.Context) error {
	status := strings.ToLower(strings.TrimSpace(c.Param("status")))
	if !model.ValidHotelStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	page, perPage := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	hotels, total, err := h.Hotels.ListByStatus(ctx, status, (page-1)*perPage, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, hotelList(hotels, total, page, perPage))
}

// Get handles GET /v1/hotels/:id.
func (h *HotelHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toHotelResp(hotel))
}

// Create handles POST /v1/hotels (admin).
func (h *HotelHandler) Create(c echo.Context) error {
	var req hotelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and location are required"})
	}
	status := req.Status
	if status == "" {
		status = model.HotelStatusActive
	}
	if !model.ValidHotelStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Hotels.GetByName(ctx, req.Name); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hotel name already exists"})
	} else if !errors.Is(err, repository.ErrHotelNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	hotel := &model.Hotel{
		Name:           req.Name,
		Location:       req.Location,
		Address:        req.Address,
		Rooms:          req.Rooms,
		Manager:        req.Manager,
		Phone:          req.Phone,
		Description:    req.Description,
		Status:         status,
		IsActive:       active,
		CuentaContable: req.CuentaContable,
		Presupuesto:    req.Presupuesto,
	}
	if err := h.Hotels.Create(ctx, hotel); err != nil {
		switch {
		case errors.Is(err, repository.ErrHotelNameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hotel name already exists"})
		case errors.Is(err, repository.ErrCuentaContableExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuenta contable already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hotel failed"})
	}
	return c.JSON(http.StatusCreated, toHotelResp(hotel))
}

// Update handles PUT /v1/hotels/:id (admin): partial update over the
// existing record.
func (h *HotelHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Name           *string `json:"name"`
		Location       *string `json:"location"`
		Address        *string `json:"address"`
		Rooms          *int    `json:"rooms"`
		Manager        *string `json:"manager"`
		Phone          *string `json:"phone"`
		Description    *string `json:"description"`
		Status         *string `json:"status"`
		IsActive       *bool   `json:"is_active"`
		CuentaContable *string `json:"cuenta_contable"`
		Presupuesto    *int64  `json:"presupuesto"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		if name != hotel.Name {
			if _, err := h.Hotels.GetByName(ctx, name); err == nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "hotel name already exists"})
			} else if !errors.Is(err, repository.ErrHotelNotFound) {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
			}
			hotel.Name = name
		}
	}
	if req.Location != nil {
		hotel.Location = strings.TrimSpace(*req.Location)
	}
	if req.Address != nil {
		hotel.Address = *req.Address
	}
	if req.Rooms != nil {
		hotel.Rooms = *req.Rooms
	}
	if req.Manager != nil {
		hotel.Manager = *req.Manager
	}
	if req.Phone != nil {
		hotel.Phone = *req.Phone
	}
	if req.Description != nil {
		hotel.Description = *req.Description
	}
	if req.Status != nil {
		if !model.ValidHotelStatus(*req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		hotel.Status = *req.Status
	}
	if req.IsActive != nil {
		hotel.IsActive = *req.IsActive
	}
	if req.CuentaContable != nil {
		hotel.CuentaContable = *req.CuentaContable
	}
	if req.Presupuesto != nil {
		hotel.Presupuesto = *req.Presupuesto
	}

	if err := h.Hotels.Update(ctx, hotel); err != nil {
		switch {
		case errors.Is(err, repository.ErrHotelNameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hotel name already exists"})
		case errors.Is(err, repository.ErrCuentaContableExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuenta contable already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toHotelResp(hotel))
}

// Delete handles DELETE /v1/hotels/:id (admin). Hotels are removed
// permanently, unlike users which are soft-deleted.
func (h *HotelHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.Hotels.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hotel " + hotel.Name + " deleted"})
}
