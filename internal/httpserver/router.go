package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/mkrasnov/contactbook/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHandler
	ContactHandler *ContactHandler
	UserHandler    *UserHandler
	UtilsHandler   *UtilsHandler
	AuthMW         *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh-token", d.AuthHandler.Refresh)
	auth.POST("/reset-password/request", d.AuthHandler.RequestPasswordReset)
	auth.POST("/reset-password/confirm", d.AuthHandler.ConfirmPasswordReset)
	auth.POST("/logout", d.AuthHandler.Logout, d.AuthMW.RequireLogin)

	contacts := api.Group("/contacts", d.AuthMW.RequireLogin)
	contacts.GET("", d.ContactHandler.List)
	contacts.POST("", d.ContactHandler.Create)
	contacts.GET("/birthdays", d.ContactHandler.Birthdays)
	contacts.GET("/search", d.ContactHandler.Search)
	contacts.GET("/:id", d.ContactHandler.Get)
	contacts.PUT("/:id", d.ContactHandler.Update)
	contacts.DELETE("/:id", d.ContactHandler.Delete)

	users := api.Group("/users", d.AuthMW.RequireLogin)
	users.GET("/me", d.UserHandler.Me)
	users.GET("", d.UserHandler.List, d.AuthMW.AdminOnly)
	users.PATCH("/avatar", d.UserHandler.UpdateAvatar, d.AuthMW.AdminOnly)
	users.PUT("/:id/role", d.UserHandler.UpdateRole, d.AuthMW.AdminOnly)
	users.GET("/:id", d.UserHandler.Get)

	utils := api.Group("/utils")
	utils.GET("/healthcheck", d.UtilsHandler.Healthcheck)
	utils.GET("/version", d.UtilsHandler.VersionInfo)
	utils.GET("/request-info", d.UtilsHandler.RequestInfo)

	e.Static("/static", "static")
}
