package main

import (
	"net/http"
	"time"

	"ThriftStoreAPI/internal/middleware"
	"ThriftStoreAPI/internal/model"
	"ThriftStoreAPI/internal/payment"
	"ThriftStoreAPI/internal/pricing"
	"ThriftStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type checkoutRequest struct {
	DeliveryAddress string               `json:"delivery_address"`
	PaymentMethod   string               `json:"payment_method"`
	Card            *payment.CardDetails `json:"card,omitempty"`
	CardToken       string               `json:"card_token,omitempty"`
}

type selectDriverRequest struct {
	Driver string `json:"driver"`
}

// checkoutWaitFor is how long the endpoint holds the request open for a
// terminal result before answering 202 with the attempt id to poll.
const checkoutWaitFor = 30 * time.Second

func registerCheckoutRoutes(g *echo.Group, cks *services.CheckoutService, cs *services.CartService, gw services.MarketplaceGateway) {
	p := g.Group("/checkout")
	p.Use(middleware.JWTMiddleware())

	// QUOTE: price breakdown for the current cart before committing
	p.GET("/quote", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		method := model.PaymentMethod(c.QueryParam("payment_method"))
		if !method.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "payment_method must be online or cod"})
		}

		cart, err := cs.Get(c.Request().Context(), claims.Email)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		// the quote degrades to zero commission if settings are unreachable
		settings, err := gw.FetchSettings(c.Request().Context())
		if err != nil {
			settings = nil
		}
		return c.JSON(http.StatusOK, pricing.QuoteFor(cart.Items, method, settings))
	})

	// SELECT payment driver
	p.POST("/driver", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(selectDriverRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		if err := cks.SelectDriver(claims.Email, payment.Kind(req.Driver)); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "driver selected"})
	})

	// START checkout
	p.POST("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(checkoutRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		attempt, err := cks.Start(c.Request().Context(), services.CheckoutRequest{
			Buyer:           model.Buyer{Email: claims.Email, Name: claims.Name, Phone: claims.Phone},
			DeliveryAddress: req.DeliveryAddress,
			Method:          model.PaymentMethod(req.PaymentMethod),
			Card:            req.Card,
			CardToken:       req.CardToken,
		})
		if err != nil {
			if model.IsValidation(err) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}

		select {
		case <-attempt.Done():
			return c.JSON(statusFor(attempt.Result()), attempt.Result())
		case <-attempt.RedirectReady():
			// hosted flow: the app opens this URL and the attempt resolves
			// through the payment return endpoint
			return c.JSON(http.StatusAccepted, echo.Map{
				"attempt_id":   attempt.ID,
				"state":        attempt.State(),
				"redirect_url": attempt.RedirectURL(),
			})
		case <-time.After(checkoutWaitFor):
			return c.JSON(http.StatusAccepted, echo.Map{
				"attempt_id": attempt.ID,
				"state":      attempt.State(),
			})
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	})

	// POLL attempt
	p.GET("/:id", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		attempt, ok := cks.Attempt(c.Param("id"))
		if !ok || attempt.BuyerEmail != claims.Email {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown attempt"})
		}
		if res := attempt.Result(); res != nil {
			return c.JSON(statusFor(res), echo.Map{
				"attempt_id":  attempt.ID,
				"transitions": attempt.Transitions(),
				"result":      res,
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"attempt_id":   attempt.ID,
			"state":        attempt.State(),
			"transitions":  attempt.Transitions(),
			"redirect_url": attempt.RedirectURL(),
		})
	})
}

func statusFor(res *services.Result) int {
	if res.State == model.StateFailed {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}
