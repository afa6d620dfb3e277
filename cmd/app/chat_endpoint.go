package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ThriftStoreAPI/external/marketplace"
	"ThriftStoreAPI/internal/middleware"
	"ThriftStoreAPI/internal/poll"

	"github.com/labstack/echo/v4"
)

// refresh intervals the mobile client expects
const (
	messagesInterval      = 3 * time.Second
	notificationsInterval = 10 * time.Second
)

func registerChatRoutes(g *echo.Group, backend *marketplace.Client) {
	p := g.Group("")
	p.Use(middleware.JWTMiddleware())

	// LIST conversations (one-shot proxy)
	p.GET("/conversations", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		raw, err := backend.Conversations(c.Request().Context(), claims.Email)
		if err != nil {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
		return c.JSONBlob(http.StatusOK, raw)
	})

	// LIST messages (one-shot proxy)
	p.GET("/conversations/:id/messages", func(c echo.Context) error {
		convID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
		}
		raw, err := backend.ConversationMessages(c.Request().Context(), convID)
		if err != nil {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
		return c.JSONBlob(http.StatusOK, raw)
	})

	// STREAM messages: server-sent events refreshed on the chat cadence,
	// for as long as the client keeps the connection open
	p.GET("/conversations/:id/stream", func(c echo.Context) error {
		convID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
		}
		return streamSSE(c, messagesInterval, func(ctx context.Context) ([]byte, error) {
			return backend.ConversationMessages(ctx, convID)
		})
	})

	// NOTIFICATIONS (one-shot proxy)
	p.GET("/notifications", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		raw, err := backend.CheckNotifications(c.Request().Context(), claims.Email)
		if err != nil {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
		return c.JSONBlob(http.StatusOK, raw)
	})

	// STREAM notifications on the slower cadence
	p.GET("/notifications/stream", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		return streamSSE(c, notificationsInterval, func(ctx context.Context) ([]byte, error) {
			return backend.CheckNotifications(ctx, claims.Email)
		})
	})
}

func streamSSE(c echo.Context, interval time.Duration, fetch func(ctx context.Context) ([]byte, error)) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// a backend error skips the frame; the poller keeps the cadence going
	p := poll.New(c.Path(), interval, func(ctx context.Context) error {
		raw, err := fetch(ctx)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", raw); err != nil {
			return err
		}
		w.Flush()
		return nil
	})
	p.Run(c.Request().Context())
	return nil
}
