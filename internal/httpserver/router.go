package httpserver

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopcore/internal/domain"
	cartsvc "shopcore/internal/service/cart"
	checkoutsvc "shopcore/internal/service/checkout"
	ordersvc "shopcore/internal/service/order"
	usersvc "shopcore/internal/service/user"
	wishlistsvc "shopcore/internal/service/wishlist"
)

// Service interfaces consumed by the handlers. Defined here so tests can
// substitute stubs without touching the concrete services.
type UserService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	AccessTTLSeconds() int
}

type CatalogService interface {
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, in cartsvc.AddInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type WishlistService interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddItem(ctx context.Context, userID string, in wishlistsvc.AddInput) (*domain.Wishlist, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Wishlist, error)
	MoveToCart(ctx context.Context, userID, itemID string, in wishlistsvc.MoveInput) (*domain.Wishlist, error)
}

type AddressService interface {
	List(ctx context.Context, userID string) ([]domain.Address, error)
	Get(ctx context.Context, userID, id string) (*domain.Address, error)
	Create(ctx context.Context, userID string, addr domain.Address) (*domain.Address, error)
	Update(ctx context.Context, userID, id string, addr domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID string, in checkoutsvc.Input) (*domain.Order, error)
}

type OrderService interface {
	Get(ctx context.Context, userID, orderID string) (*domain.Order, error)
	GetByNumber(ctx context.Context, userID, orderNumber string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, in ordersvc.UpdateInput) (*domain.Order, error)
	Cancel(ctx context.Context, userID, orderID, reason string) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, next domain.PaymentStatus) (*domain.Order, error)
}

// Deps carries everything the router needs.
type Deps struct {
	Users     UserService
	Catalog   CatalogService
	Carts     CartService
	Wishlists WishlistService
	Addresses AddressService
	Checkout  CheckoutService
	Orders    OrderService

	CORSOrigins string
	AdminKey    string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/signup", signupHandler(deps.Users))
	auth.POST("/login", loginHandler(deps.Users))
	auth.POST("/logout", authMiddleware(deps.Users), logoutHandler(deps.Users))
	auth.GET("/me", authMiddleware(deps.Users), meHandler())

	api.GET("/products", listProductsHandler(deps.Catalog))
	api.GET("/products/:slug", getProductHandler(deps.Catalog))

	authed := api.Group("", authMiddleware(deps.Users))
	{
		authed.GET("/cart", getCartHandler(deps.Carts))
		authed.POST("/cart/items", addCartItemHandler(deps.Carts))
		authed.PATCH("/cart/items/:itemId", updateCartItemHandler(deps.Carts))
		authed.DELETE("/cart/items/:itemId", removeCartItemHandler(deps.Carts))
		authed.DELETE("/cart", clearCartHandler(deps.Carts))

		authed.GET("/wishlist", getWishlistHandler(deps.Wishlists))
		authed.POST("/wishlist/items", addWishlistItemHandler(deps.Wishlists))
		authed.DELETE("/wishlist/items/:itemId", removeWishlistItemHandler(deps.Wishlists))
		authed.POST("/wishlist/items/:itemId/move-to-cart", moveToCartHandler(deps.Wishlists))

		authed.GET("/addresses", listAddressesHandler(deps.Addresses))
		authed.GET("/addresses/:addressId", getAddressHandler(deps.Addresses))
		authed.POST("/addresses", createAddressHandler(deps.Addresses))
		authed.PUT("/addresses/:addressId", updateAddressHandler(deps.Addresses))
		authed.DELETE("/addresses/:addressId", deleteAddressHandler(deps.Addresses))
		authed.PATCH("/addresses/:addressId/default", setDefaultAddressHandler(deps.Addresses))

		authed.POST("/checkout", checkoutHandler(deps.Checkout))

		authed.GET("/orders", listOrdersHandler(deps.Orders))
		authed.GET("/orders/:orderId", getOrderHandler(deps.Orders))
		authed.GET("/orders/number/:orderNumber", getOrderByNumberHandler(deps.Orders))
		authed.POST("/orders/:orderId/cancel", cancelOrderHandler(deps.Orders))
	}

	admin := api.Group("/admin", adminMiddleware(deps.AdminKey))
	{
		admin.GET("/orders", adminListOrdersHandler(deps.Orders))
		admin.PATCH("/orders/:orderId", adminUpdateOrderHandler(deps.Orders))
		admin.PATCH("/orders/:orderId/payment", adminPaymentStatusHandler(deps.Orders))
	}

	return router
}

func corsConfig(origins string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Admin-Key", requestIDHeader)
	cfg.MaxAge = 12 * time.Hour
	if origins == "" || origins == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = strings.Split(origins, ",")
	return cfg
}
