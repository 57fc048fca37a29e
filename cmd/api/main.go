package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopcore/internal/config"
	"shopcore/internal/db"
	"shopcore/internal/httpserver"
	addressrepo "shopcore/internal/repository/address"
	cartrepo "shopcore/internal/repository/cart"
	orderrepo "shopcore/internal/repository/order"
	productrepo "shopcore/internal/repository/product"
	tokenrepo "shopcore/internal/repository/token"
	userrepo "shopcore/internal/repository/user"
	wishlistrepo "shopcore/internal/repository/wishlist"
	addresssvc "shopcore/internal/service/address"
	cartsvc "shopcore/internal/service/cart"
	catalogsvc "shopcore/internal/service/catalog"
	checkoutsvc "shopcore/internal/service/checkout"
	inventorysvc "shopcore/internal/service/inventory"
	ordersvc "shopcore/internal/service/order"
	usersvc "shopcore/internal/service/user"
	wishlistsvc "shopcore/internal/service/wishlist"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	wishlistRepo := wishlistrepo.NewPostgres(dbpool)
	addressRepo := addressrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	engine := inventorysvc.New(productRepo, logger)
	catalogService := catalogsvc.New(productRepo)
	cartService := cartsvc.New(cartRepo, productRepo, logger)
	wishlistService := wishlistsvc.New(dbpool, wishlistRepo, cartRepo, productRepo, logger)
	addressService := addresssvc.New(addressRepo)
	checkoutService := checkoutsvc.New(dbpool, cartRepo, addressRepo, orderRepo, engine, logger)
	orderService := ordersvc.New(orderRepo, engine, logger)
	userService := usersvc.New(userRepo, tokenRepo)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Users:       userService,
		Catalog:     catalogService,
		Carts:       cartService,
		Wishlists:   wishlistService,
		Addresses:   addressService,
		Checkout:    checkoutService,
		Orders:      orderService,
		CORSOrigins: cfg.CORSOrigins,
		AdminKey:    cfg.AdminKey,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
