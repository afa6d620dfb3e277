package main

import (
	"log"
	"os"

	"ThriftStoreAPI/external/marketplace"
	mt "ThriftStoreAPI/external/midtrans"

	"ThriftStoreAPI/internal/db"
	"ThriftStoreAPI/internal/payment"
	"ThriftStoreAPI/internal/repository"
	"ThriftStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	// ======================
	// INFRA
	// ======================
	var cartStore repository.CartStore
	if os.Getenv("DATABASE_URL") != "" {
		pool, err := db.Connect()
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		cartStore = repository.NewCartRepository(pool)
	} else {
		// no database configured: carts live in memory for local development
		cartStore = repository.NewMemoryCartStore()
	}

	// ======================
	// EXTERNALS
	// ======================
	backend, err := marketplace.NewClient()
	if err != nil {
		log.Fatal(err)
	}

	serverKey := mt.ServerKey()
	hosted := payment.NewHostedCheckoutDriver(mt.NewSnapClient(), serverKey)
	native := payment.NewNativeSDKDriver(mt.NewCoreClient(), serverKey)

	// ======================
	// SERVICES
	// ======================
	cartSvc := services.NewCartService(cartStore)
	sessionSvc := services.NewSessionService(backend)
	checkoutSvc := services.NewCheckoutService(backend, cartStore,
		payment.NewMockCardDriver(),
		hosted,
		native,
		payment.NewCodDriver(),
	)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	api := e.Group("/thrift-store")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerSessionRoutes(api, sessionSvc)
	registerCartRoutes(api, cartSvc)
	registerCheckoutRoutes(api, checkoutSvc, cartSvc, backend)
	registerPaymentRoutes(api, checkoutSvc, hosted)
	registerChatRoutes(api, backend)

	// ======================
	// SERVER
	// ======================
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
