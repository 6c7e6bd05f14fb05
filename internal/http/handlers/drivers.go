package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/http/middleware"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
)

type DriverHandler struct {
	Drivers  repositories.DriverRepository
	Location services.LocationService
}

type driverRequest struct {
	UserID         int64  `json:"userId"`
	Experience     int    `json:"experience"`
	ServiceOptions string `json:"serviceOptions"`
}

// GET /api/drivers
func (h DriverHandler) List(c *gin.Context) {
	onlyAvailable := c.Query("available") == "true"
	drivers, err := h.Drivers.List(onlyAvailable, QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

// GET /api/drivers/:id
func (h DriverHandler) Get(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}
	driver, err := h.Drivers.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": driver})
}

// POST /api/drivers
func (h DriverHandler) Create(c *gin.Context) {
	var req driverRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.UserID < 1 {
		RespondError(c, http.StatusBadRequest, "userId is required", nil)
		return
	}
	if req.Experience < 0 {
		RespondError(c, http.StatusBadRequest, "experience cannot be negative", nil)
		return
	}

	id, err := h.Drivers.Create(models.Driver{
		UserID:         req.UserID,
		Experience:     req.Experience,
		ServiceOptions: req.ServiceOptions,
		Available:      true,
		Active:         true,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "driver created", "id": id})
}

// PUT /api/drivers/:id
func (h DriverHandler) Update(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}
	var req driverRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Experience < 0 {
		RespondError(c, http.StatusBadRequest, "experience cannot be negative", nil)
		return
	}

	err := h.Drivers.Update(models.Driver{
		ID:             id,
		Experience:     req.Experience,
		ServiceOptions: req.ServiceOptions,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver updated"})
}

// POST /api/drivers/:id/location
// Drivers report their own position. The relay to the active booking is
// best effort inside the service.
func (h DriverHandler) ReportLocation(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	if actor.Role == domain.RoleDriver {
		driver, err := h.Drivers.GetByID(id)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		if driver.UserID != actor.UserID {
			RespondError(c, http.StatusForbidden, "cannot report another driver's location", nil)
			return
		}
	}

	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		RespondError(c, http.StatusBadRequest, "latitude and longitude are required", nil)
		return
	}

	svc := h.Location
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.UpdateLocation(id, *req.Latitude, *req.Longitude); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "location updated"})
}
