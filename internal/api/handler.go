package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storefront-service/internal/account"
	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog       *catalog.Catalog
	cartEngine    *cart.Engine
	accountEngine *account.Engine
	orchestrator  *checkout.Orchestrator
	publisher     broker.Publisher
	tokens        *TokenIssuer

	flowMu sync.Mutex
	flow   *checkout.Flow
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cat *catalog.Catalog,
	cartEngine *cart.Engine,
	accountEngine *account.Engine,
	orchestrator *checkout.Orchestrator,
	publisher broker.Publisher,
	tokens *TokenIssuer,
) *Handler {
	return &Handler{
		catalog:       cat,
		cartEngine:    cartEngine,
		accountEngine: accountEngine,
		orchestrator:  orchestrator,
		publisher:     publisher,
		tokens:        tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:slug", h.getProduct)

		v1.POST("/auth/login", h.login)
		v1.POST("/auth/signup", h.signup)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		authed := v1.Group("", h.requireAuth())
		{
			authed.POST("/auth/logout", h.logout)

			authed.GET("/account", h.getAccount)
			authed.PATCH("/account/profile", h.updateProfile)
			authed.POST("/account/addresses", h.addAddress)
			authed.PATCH("/account/addresses/:id", h.updateAddress)
			authed.DELETE("/account/addresses/:id", h.deleteAddress)
			authed.POST("/account/wishlist/:productId", h.addToWishlist)
			authed.DELETE("/account/wishlist/:productId", h.removeFromWishlist)
			authed.GET("/account/orders", h.listOrders)

			authed.GET("/checkout", h.checkoutState)
			authed.POST("/checkout/address", h.selectAddress)
			authed.POST("/checkout/payment", h.selectPayment)
			authed.POST("/checkout/coupon", h.applyCoupon)
			authed.POST("/checkout/advance", h.advanceCheckout)
			authed.POST("/checkout/back", h.backCheckout)
			authed.POST("/checkout/place-order", h.placeOrder)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts serves the catalog, optionally filtered by category,
// search query or bestseller flag.
func (h *Handler) listProducts(c *gin.Context) {
	var products []models.Product
	switch {
	case c.Query("q") != "":
		products = h.catalog.Search(c.Query("q"))
	case c.Query("category") != "":
		products = h.catalog.ByCategory(c.Query("category"))
	case c.Query("bestsellers") == "true":
		products = h.catalog.Bestsellers()
	default:
		products = h.catalog.Products()
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct serves a single product by slug.
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.BySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// login authenticates against the mock credential set and issues a token.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.accountEngine.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// signup creates a fresh account and issues a token.
func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.accountEngine.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	event := &models.UserSignedUpEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeUserSignedUp,
			Timestamp: time.Now(),
		},
		UserID: user.ID,
		Email:  user.Email,
	}
	if err := h.publisher.PublishUserSignedUp(c.Request.Context(), event); err != nil {
		util.GetLogger().Error("Failed to publish UserSignedUp event", zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// logout clears the session and discards any open checkout flow.
func (h *Handler) logout(c *gin.Context) {
	h.accountEngine.Logout(c.Request.Context())
	h.resetFlow()
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// getCart serves the current cart snapshot.
func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartEngine.State())
}

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Variant   string `json:"variant" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// addCartItem resolves the product and adds a line to the cart.
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.ByID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	err = h.cartEngine.Add(c.Request.Context(), product, req.Variant, req.Quantity)
	if errors.Is(err, cart.ErrVariantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found"})
		return
	}
	if errors.Is(err, cart.ErrInvalidQuantity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be positive"})
		return
	}

	c.JSON(http.StatusOK, h.cartEngine.State())
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// updateCartItem replaces a line quantity; zero or less removes the line.
func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.cartEngine.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
	c.JSON(http.StatusOK, h.cartEngine.State())
}

// removeCartItem deletes a line from the cart.
func (h *Handler) removeCartItem(c *gin.Context) {
	h.cartEngine.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, h.cartEngine.State())
}

// clearCart empties the cart.
func (h *Handler) clearCart(c *gin.Context) {
	h.cartEngine.Clear(c.Request.Context())
	c.JSON(http.StatusOK, h.cartEngine.State())
}

// getAccount serves the current user snapshot.
func (h *Handler) getAccount(c *gin.Context) {
	c.JSON(http.StatusOK, h.accountEngine.Current())
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.accountEngine.UpdateProfile(c.Request.Context(), account.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	c.JSON(http.StatusOK, h.accountEngine.Current())
}

type addressRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	Pincode      string `json:"pincode" binding:"required"`
	IsDefault    bool   `json:"isDefault"`
}

func (h *Handler) addAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	address := h.accountEngine.AddAddress(c.Request.Context(), models.Address{
		Name:         req.Name,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		IsDefault:    req.IsDefault,
	})
	c.JSON(http.StatusCreated, address)
}

type updateAddressRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Pincode      *string `json:"pincode"`
	IsDefault    *bool   `json:"isDefault"`
}

func (h *Handler) updateAddress(c *gin.Context) {
	var req updateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.accountEngine.UpdateAddress(c.Request.Context(), c.Param("id"), account.AddressUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		IsDefault:    req.IsDefault,
	})
	c.JSON(http.StatusOK, h.accountEngine.Current())
}

func (h *Handler) deleteAddress(c *gin.Context) {
	h.accountEngine.DeleteAddress(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, h.accountEngine.Current())
}

func (h *Handler) addToWishlist(c *gin.Context) {
	productID := c.Param("productId")
	if _, err := h.catalog.ByID(productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	h.accountEngine.AddToWishlist(c.Request.Context(), productID)
	c.JSON(http.StatusOK, h.accountEngine.Current())
}

func (h *Handler) removeFromWishlist(c *gin.Context) {
	h.accountEngine.RemoveFromWishlist(c.Request.Context(), c.Param("productId"))
	c.JSON(http.StatusOK, h.accountEngine.Current())
}

func (h *Handler) listOrders(c *gin.Context) {
	user := h.accountEngine.Current()
	c.JSON(http.StatusOK, gin.H{"orders": user.Orders})
}

// currentFlow lazily starts a checkout flow for the session.
func (h *Handler) currentFlow() *checkout.Flow {
	h.flowMu.Lock()
	defer h.flowMu.Unlock()

	if h.flow == nil {
		h.flow = h.orchestrator.NewFlow()
	}
	return h.flow
}

func (h *Handler) resetFlow() {
	h.flowMu.Lock()
	h.flow = nil
	h.flowMu.Unlock()
}

// checkoutState serves the flow step, selections and a fresh quote.
func (h *Handler) checkoutState(c *gin.Context) {
	flow := h.currentFlow()
	c.JSON(http.StatusOK, gin.H{
		"step":          int(flow.Step()),
		"addressId":     flow.AddressID(),
		"paymentMethod": flow.PaymentMethod(),
		"quote":         h.orchestrator.QuoteFor(flow),
		"isProcessing":  h.orchestrator.IsProcessing(),
	})
}

type selectAddressRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}

func (h *Handler) selectAddress(c *gin.Context) {
	var req selectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.currentFlow().SelectAddress(req.AddressID)
	h.checkoutState(c)
}

type selectPaymentRequest struct {
	Method string `json:"method" binding:"required,oneof=upi card netbanking"`
	Notes  string `json:"notes"`
}

func (h *Handler) selectPayment(c *gin.Context) {
	var req selectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	flow := h.currentFlow()
	flow.SelectPayment(req.Method)
	if req.Notes != "" {
		flow.SetNotes(req.Notes)
	}
	h.checkoutState(c)
}

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	quote, err := h.orchestrator.ApplyCoupon(h.currentFlow(), req.Code)
	if errors.Is(err, checkout.ErrInvalidCoupon) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid coupon code",
			"quote": quote,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

func (h *Handler) advanceCheckout(c *gin.Context) {
	if err := h.currentFlow().Advance(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.checkoutState(c)
}

func (h *Handler) backCheckout(c *gin.Context) {
	h.currentFlow().Back()
	h.checkoutState(c)
}

// placeOrder commits the checkout. The flow instance is discarded after a
// successful commit.
func (h *Handler) placeOrder(c *gin.Context) {
	result := h.orchestrator.PlaceOrder(c.Request.Context(), h.currentFlow())
	if !result.Placed() {
		status := http.StatusUnprocessableEntity
		if result.Failure == checkout.FailureNotAuthenticated {
			status = http.StatusUnauthorized
		}
		if result.Failure == checkout.FailureAlreadyProcessing {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error":  result.Message,
			"reason": string(result.Failure),
		})
		return
	}

	h.resetFlow()
	c.JSON(http.StatusCreated, gin.H{
		"order": result.Order,
		"quote": result.Quote,
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
