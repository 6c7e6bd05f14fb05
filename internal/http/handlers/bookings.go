package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
	"rental-backend/internal/http/middleware"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/utils"
)

type BookingHandler struct {
	Svc      services.BookingService
	Bookings repositories.BookingRepository
	Cars     repositories.CarRepository
	Drivers  repositories.DriverRepository
}

type bookingRequest struct {
	CarID           *int64                `json:"carId"`
	DriverID        *int64                `json:"driverId"`
	BookingType     string                `json:"bookingType"`
	PickupLocation  string                `json:"pickupLocation"`
	DropoffLocation string                `json:"dropoffLocation"`
	StartDate       string                `json:"startDate"`
	EndDate         string                `json:"endDate"`
	PaymentMethod   string                `json:"paymentMethod"`
	Extras          []models.BookingExtra `json:"extras"`
}

func (r bookingRequest) toCreate(customerID int64) (services.CreateBookingRequest, string) {
	start, err := utils.ParseDateOrISO(r.StartDate)
	if err != nil {
		return services.CreateBookingRequest{}, "startDate is not a valid date"
	}
	end, err := utils.ParseDateOrISO(r.EndDate)
	if err != nil {
		return services.CreateBookingRequest{}, "endDate is not a valid date"
	}
	return services.CreateBookingRequest{
		CarID:           r.CarID,
		DriverID:        r.DriverID,
		CustomerID:      customerID,
		BookingType:     utils.TrimOrEmpty(r.BookingType),
		PickupLocation:  utils.NormalizeSpace(r.PickupLocation),
		DropoffLocation: utils.NormalizeSpace(r.DropoffLocation),
		StartDate:       start,
		EndDate:         end,
		PaymentMethod:   utils.TrimOrEmpty(r.PaymentMethod),
		Extras:          r.Extras,
	}, ""
}

// POST /api/bookings
func (h BookingHandler) Create(c *gin.Context) {
	var req bookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	actor := middleware.GetActor(c)
	create, msg := req.toCreate(actor.UserID)
	if msg != "" {
		RespondError(c, http.StatusBadRequest, msg, nil)
		return
	}

	svc := h.Svc
	svc.RequestID = middleware.GetRequestID(c)
	id, err := svc.Create(create)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	booking, err := h.Bookings.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "booking created", "data": booking})
}

// POST /api/bookings/quote
// Price preview with no writes. Uses the same calculation as creation.
func (h BookingHandler) Quote(c *gin.Context) {
	var req bookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	start, err := utils.ParseDateOrISO(req.StartDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "startDate is not a valid date", nil)
		return
	}
	end, err := utils.ParseDateOrISO(req.EndDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "endDate is not a valid date", nil)
		return
	}

	var car *models.Car
	if req.CarID != nil {
		got, err := h.Cars.GetByID(*req.CarID)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		car = &got
	}
	var driver *models.Driver
	if req.DriverID != nil {
		got, err := h.Drivers.GetByID(*req.DriverID)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		driver = &got
	}

	quote, err := services.ComputeQuote(car, driver, req.Extras, start, end)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quote})
}

// GET /api/bookings
func (h BookingHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)

	customerID := actor.UserID
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleManager {
		customerID = int64(QueryInt(c, "customer_id", 0))
	}

	bookings, err := h.Bookings.List(customerID, c.Query("status"), QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// GET /api/bookings/:id
func (h BookingHandler) Get(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.Bookings.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	actor := middleware.GetActor(c)
	if actor.Role == domain.RoleCustomer && booking.CustomerID != actor.UserID {
		RespondError(c, http.StatusForbidden, "cannot view another customer's booking", nil)
		return
	}

	extras, err := h.Bookings.ListExtras(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	booking.Extras = extras

	c.JSON(http.StatusOK, gin.H{"data": booking})
}

// PUT /api/bookings/:id/status
func (h BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if utils.TrimOrEmpty(req.Status) == "" {
		RespondError(c, http.StatusBadRequest, "status is required", nil)
		return
	}

	svc := h.Svc
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.UpdateStatus(id, utils.TrimOrEmpty(req.Status), utils.NormalizeSpace(req.Reason), middleware.GetActor(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking status updated"})
}

// POST /api/bookings/:id/assign-driver
func (h BookingHandler) AssignDriver(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DriverID int64 `json:"driverId"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.DriverID < 1 {
		RespondError(c, http.StatusBadRequest, "driverId is required", nil)
		return
	}

	svc := h.Svc
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.AssignDriver(id, req.DriverID, middleware.GetActor(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver assigned"})
}
