package main

import (
	"errors"
	"net/http"
	"strconv"

	"ThriftStoreAPI/internal/middleware"
	"ThriftStoreAPI/internal/model"
	"ThriftStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type addCartRequest struct {
	ItemID      int64   `json:"item_id"`
	Title       string  `json:"title"`
	Price       *string `json:"price"`
	RentPrice   *string `json:"rent_price"`
	ListingKind string  `json:"listing_type"`
	ImagePath   *string `json:"image_path"`
}

func registerCartRoutes(g *echo.Group, cs *services.CartService) {
	p := g.Group("/cart")
	p.Use(middleware.JWTMiddleware())

	// GET cart
	p.GET("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		cart, err := cs.Get(c.Request().Context(), claims.Email)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, cart)
	})

	// ADD item
	p.POST("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(addCartRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		added, err := cs.Add(c.Request().Context(), claims.Email, model.CartLine{
			ItemID:      req.ItemID,
			Title:       req.Title,
			UnitPrice:   req.Price,
			RentPrice:   req.RentPrice,
			ListingKind: model.ListingKind(req.ListingKind),
			ImagePath:   req.ImagePath,
		})
		if err != nil {
			if errors.Is(err, services.ErrInvalidListingKind) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		if !added {
			// duplicate add is a no-op, not a conflict
			return c.JSON(http.StatusOK, map[string]string{"message": "already in cart"})
		}
		return c.JSON(http.StatusCreated, map[string]string{"message": "added"})
	})

	// REMOVE item
	p.DELETE("/:itemid", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		itemID, _ := strconv.ParseInt(c.Param("itemid"), 10, 64)
		kind := model.ListingKind(c.QueryParam("listing_type"))
		if err := cs.Remove(c.Request().Context(), claims.Email, itemID, kind); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "removed"})
	})

	// CLEAR cart
	p.DELETE("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if err := cs.Clear(c.Request().Context(), claims.Email); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "cleared"})
	})
}
