package router

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/handler"
	"fintrack/internal/response"
	"fintrack/internal/validation"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	issuer auth.TokenIssuerInterface,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	trackerHandler *handler.TrackerHandler,
	transactionHandler *handler.TransactionHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = validation.NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Unknown paths get the same envelope shape as everything else.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return response.Error(c, http.StatusNotFound, "API endpoint not found.")
	})

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes (require a live, unrevoked JWT)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
		},
	}), auth.RequireToken(issuer))

	secured.POST("/auth/logout", authHandler.Logout)

	// Profile routes
	secured.GET("/user/profile", profileHandler.Get)
	secured.PATCH("/user/profile", profileHandler.Update)
	secured.PUT("/user/avatar", profileHandler.UploadAvatar)
	secured.DELETE("/user/avatar", profileHandler.DeleteAvatar)

	// Tracker routes
	secured.GET("/trackers", trackerHandler.List)
	secured.POST("/trackers", trackerHandler.Create)
	secured.GET("/trackers/:trackerID", trackerHandler.Get)
	secured.PATCH("/trackers/:trackerID", trackerHandler.Update)
	secured.DELETE("/trackers/:trackerID", trackerHandler.Delete)

	// Transaction routes
	secured.GET("/trackers/:trackerID/transactions", transactionHandler.List)
	secured.POST("/trackers/:trackerID/transactions", transactionHandler.Create)
	secured.PATCH("/trackers/:trackerID/transactions/:transactionID", transactionHandler.Update)
	secured.DELETE("/trackers/:trackerID/transactions/:transactionID", transactionHandler.Delete)
	secured.PUT("/trackers/:trackerID/transactions/:transactionID/image", transactionHandler.UploadImage)
}
