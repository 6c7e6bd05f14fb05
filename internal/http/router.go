package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "rental-backend/internal/config"
	"rental-backend/internal/domain"
	"rental-backend/internal/flutterwave"
	h "rental-backend/internal/http/handlers"
	"rental-backend/internal/http/middleware"
	"rental-backend/internal/notify"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
// Everything downstream receives its dependencies here.
func NewRouter(env intconfig.Env, db *sql.DB) *gin.Engine {
	users := repositories.UserRepository{DB: db}
	cars := repositories.CarRepository{DB: db}
	drivers := repositories.DriverRepository{DB: db}
	bookings := repositories.BookingRepository{DB: db}
	reservations := repositories.ReservationRepository{DB: db}
	invoices := repositories.InvoiceRepository{DB: db}
	payments := repositories.PaymentRepository{DB: db}
	references := repositories.PaymentReferenceRepository{DB: db}
	notifications := repositories.NotificationRepository{DB: db}

	gateway := flutterwave.NewHTTP(env.FlutterwaveSecretKey, env.FlutterwaveBaseURL)

	bookingSvc := services.BookingService{
		DB:            db,
		Bookings:      bookings,
		Cars:          cars,
		Drivers:       drivers,
		Reservations:  reservations,
		Notifications: notifications,
	}
	invoiceSvc := services.InvoiceService{
		DB:       db,
		Invoices: invoices,
		Payments: payments,
		Bookings: bookings,
		Gateway:  gateway,
	}
	paymentSvc := services.PaymentService{
		DB:            db,
		Gateway:       gateway,
		References:    references,
		Payments:      payments,
		Invoices:      invoices,
		Bookings:      bookings,
		Users:         users,
		Notifications: notifications,
		Invoicer:      invoiceSvc,
		RedirectURL:   env.PaymentRedirectURL,
	}
	notificationSvc := services.NotificationService{
		Notifications: notifications,
		Users:         users,
		Email:         notify.NewEmailSender(env),
		SMS:           notify.NewSMSSender(env),
		Sleep:         time.Sleep,
	}
	locationSvc := services.LocationService{
		Drivers:  drivers,
		Bookings: bookings,
	}
	docsSvc := services.DocsService{
		Invoices: invoices,
		Bookings: bookings,
		Users:    users,
	}

	authH := h.AuthHandler{Users: users, Secret: env.JWTSecret}
	userH := h.UserHandler{Users: users}
	carH := h.CarHandler{Cars: cars}
	driverH := h.DriverHandler{Drivers: drivers, Location: locationSvc}
	bookingH := h.BookingHandler{Svc: bookingSvc, Bookings: bookings, Cars: cars, Drivers: drivers}
	paymentH := h.PaymentHandler{Svc: paymentSvc, Invoices: invoiceSvc}
	invoiceH := h.InvoiceHandler{Invoices: invoices, Payments: payments, Svc: invoiceSvc, Docs: docsSvc}
	notificationH := h.NotificationHandler{Notifications: notifications, Svc: notificationSvc}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.RequireAuth(env.JWTSecret)
	staff := middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)

		usersGroup := api.Group("/users", auth)
		usersGroup.GET("", staff, userH.List)
		usersGroup.GET("/:id", userH.Get)
		usersGroup.PUT("/:id", userH.Update)

		carsGroup := api.Group("/cars")
		carsGroup.GET("", carH.List)
		carsGroup.GET("/:id", carH.Get)
		carsGroup.POST("", auth, staff, carH.Create)
		carsGroup.PUT("/:id", auth, staff, carH.Update)
		carsGroup.DELETE("/:id", auth, staff, carH.Delete)

		driversGroup := api.Group("/drivers")
		driversGroup.GET("", driverH.List)
		driversGroup.GET("/:id", driverH.Get)
		driversGroup.POST("", auth, staff, driverH.Create)
		driversGroup.PUT("/:id", auth, staff, driverH.Update)
		driversGroup.POST("/:id/location", auth, driverH.ReportLocation)

		bookingsGroup := api.Group("/bookings", auth)
		bookingsGroup.POST("", bookingH.Create)
		bookingsGroup.POST("/quote", bookingH.Quote)
		bookingsGroup.GET("", bookingH.List)
		bookingsGroup.GET("/:id", bookingH.Get)
		bookingsGroup.PUT("/:id/status", bookingH.UpdateStatus)
		bookingsGroup.POST("/:id/assign-driver", staff, bookingH.AssignDriver)

		paymentsGroup := api.Group("/payments")
		paymentsGroup.POST("/initialize", auth, paymentH.Initialize)
		paymentsGroup.GET("/callback", paymentH.VerifyCallback)
		paymentsGroup.POST("/:id/refund", auth, staff, paymentH.Refund)

		invoicesGroup := api.Group("/invoices", auth)
		invoicesGroup.GET("", invoiceH.List)
		invoicesGroup.GET("/:id", invoiceH.Get)
		invoicesGroup.GET("/:id/payments", invoiceH.ListPayments)
		invoicesGroup.GET("/:id/pdf", invoiceH.PDF)
		invoicesGroup.POST("", staff, invoiceH.Create)

		notificationsGroup := api.Group("/notifications", auth)
		notificationsGroup.GET("", notificationH.List)
		notificationsGroup.POST("/:id/read", notificationH.MarkRead)
		notificationsGroup.POST("/:id/dispatch", staff, notificationH.Dispatch)
	}

	return r
}
