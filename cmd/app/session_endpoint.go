package main

import (
	"net/http"

	"ThriftStoreAPI/internal/middleware"
	"ThriftStoreAPI/internal/model"
	"ThriftStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type openSessionRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func registerSessionRoutes(g *echo.Group, ss *services.SessionService) {
	p := g.Group("/session")

	// OPEN session (public)
	p.POST("", func(c echo.Context) error {
		req := new(openSessionRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		token, err := ss.Open(model.Buyer{Email: req.Email, Name: req.Name, Phone: req.Phone})
		if err != nil {
			if model.IsValidation(err) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		resp := echo.Map{"token": token}
		// best effort: prefill the saved delivery address if the backend has one
		if addr := ss.Prefill(c.Request().Context(), req.Email); addr != nil {
			resp["saved_address"] = addr
		}
		return c.JSON(http.StatusOK, resp)
	})

	// SAVED address (JWT)
	p.GET("/address", middleware.JWTMiddleware()(func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		addr := ss.Prefill(c.Request().Context(), claims.Email)
		if addr == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no saved address"})
		}
		return c.JSON(http.StatusOK, addr)
	}))
}
