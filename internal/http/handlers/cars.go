package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-backend/internal/domain/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/utils"
)

type CarHandler struct {
	Cars repositories.CarRepository
}

type carRequest struct {
	OwnerID     int64  `json:"ownerId"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	PlateNumber string `json:"plateNumber"`
	PricePerDay int64  `json:"pricePerDay"`
}

func (r carRequest) validate() string {
	switch {
	case utils.TrimOrEmpty(r.Brand) == "" || utils.TrimOrEmpty(r.Model) == "":
		return "brand and model are required"
	case utils.TrimOrEmpty(r.PlateNumber) == "":
		return "plateNumber is required"
	case r.PricePerDay < 1:
		return "pricePerDay must be positive"
	case r.Year < 1980 || r.Year > 2100:
		return "year is out of range"
	}
	return ""
}

// GET /api/cars
func (h CarHandler) List(c *gin.Context) {
	onlyAvailable := c.Query("available") == "true"
	cars, err := h.Cars.List(onlyAvailable, QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cars})
}

// GET /api/cars/:id
func (h CarHandler) Get(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}
	car, err := h.Cars.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": car})
}

// POST /api/cars
func (h CarHandler) Create(c *gin.Context) {
	var req carRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		RespondError(c, http.StatusBadRequest, msg, nil)
		return
	}

	id, err := h.Cars.Create(models.Car{
		OwnerID:     req.OwnerID,
		Brand:       utils.TrimOrEmpty(req.Brand),
		Model:       utils.TrimOrEmpty(req.Model),
		Year:        req.Year,
		PlateNumber: utils.TrimOrEmpty(req.PlateNumber),
		PricePerDay: req.PricePerDay,
		Available:   true,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "car created", "id": id})
}

// PUT /api/cars/:id
func (h CarHandler) Update(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}
	var req carRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		RespondError(c, http.StatusBadRequest, msg, nil)
		return
	}

	err := h.Cars.Update(models.Car{
		ID:          id,
		OwnerID:     req.OwnerID,
		Brand:       utils.TrimOrEmpty(req.Brand),
		Model:       utils.TrimOrEmpty(req.Model),
		Year:        req.Year,
		PlateNumber: utils.TrimOrEmpty(req.PlateNumber),
		PricePerDay: req.PricePerDay,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "car updated"})
}

// DELETE /api/cars/:id
func (h CarHandler) Delete(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Cars.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "car deleted"})
}
