package main

import (
	"net/http"

	"ThriftStoreAPI/internal/payment"
	"ThriftStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
)

func registerPaymentRoutes(g *echo.Group, cks *services.CheckoutService, hosted *payment.HostedCheckoutDriver) {
	p := g.Group("/payments")

	// ============================
	// PROVIDER RETURN REDIRECT
	// (NO JWT, must be public)
	// ============================
	p.GET("/return", func(c echo.Context) error {
		orderID := c.QueryParam("order_id")
		if orderID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id required"})
		}

		// forward the provider's identifiers on the eventual status update
		cks.NoteGatewayExtras(orderID, map[string]string{
			"gateway_order_id":  c.QueryParam("transaction_id"),
			"gateway_signature": c.QueryParam("signature_key"),
		})

		handled := hosted.CompleteFromReturn(payment.ReturnParams{
			OrderRef:    orderID,
			PaymentID:   c.QueryParam("transaction_id"),
			Status:      c.QueryParam("transaction_status"),
			StatusCode:  c.QueryParam("status_code"),
			GrossAmount: c.QueryParam("gross_amount"),
			Signature:   c.QueryParam("signature_key"),
		})
		if !handled {
			// already resolved or never ours; the provider just needs a 200
			return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// ============================
	// BUYER CLOSED PAYMENT PAGE
	// ============================
	p.POST("/cancel/:orderid", func(c echo.Context) error {
		if !hosted.Abandon(c.Param("orderid")) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending payment for order"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
	})
}
