package server

import (
	"errors"
	"net/http"
	"strconv"

	"woostore/storefront/internal/cart"
	"woostore/storefront/internal/client"
	"woostore/storefront/internal/domain"
	"woostore/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// bindingDetails lists the failing fields of a validation error, or the decode error text
func bindingDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+": "+fe.Tag())
	}
	return fields
}

func (s *Server) listProducts(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}
	perPage, err := intQuery(c, "per_page", domain.DefaultPerPage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "per_page must be an integer"})
		return
	}
	perPage = min(max(perPage, 1), domain.MaxPerPage)

	result, err := s.client.GetProducts(c.Request.Context(), domain.ProductQuery{
		Page:     page,
		PerPage:  perPage,
		Status:   domain.ProductStatusPublish,
		Search:   c.Query("search"),
		Category: c.Query("category"),
		MinPrice: c.Query("min_price"),
		MaxPrice: c.Query("max_price"),
		OrderBy:  c.Query("orderby"),
		Order:    c.Query("order"),
	})
	if err != nil {
		s.upstreamFailure(c, "Failed to fetch products", err)
		return
	}

	c.Header(client.HeaderTotalPages, strconv.Itoa(result.TotalPages))
	c.Header(client.HeaderTotal, strconv.Itoa(result.TotalProducts))
	c.JSON(http.StatusOK, result.Products)
}

// getProduct serves one published product. Drafts and unknown ids are both 404.
func (s *Server) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := s.client.GetProduct(c.Request.Context(), id)
	if err != nil {
		if client.StatusCode(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "status": http.StatusNotFound})
			return
		}
		s.upstreamFailure(c, "Failed to fetch product", err)
		return
	}
	if product.Status != "" && product.Status != domain.ProductStatusPublish {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "status": http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) listCategories(c *gin.Context) {
	perPage, err := intQuery(c, "per_page", domain.DefaultCategoriesPerPage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "per_page must be an integer"})
		return
	}
	hideEmpty, err := strconv.ParseBool(c.DefaultQuery("hide_empty", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hide_empty must be a boolean"})
		return
	}

	categories, err := s.client.GetCategories(c.Request.Context(), domain.CategoryQuery{
		PerPage:   min(max(perPage, 1), domain.MaxPerPage),
		HideEmpty: hideEmpty,
	})
	if err != nil {
		s.upstreamFailure(c, "Failed to fetch categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) createOrder(c *gin.Context) {
	var doc domain.OrderDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order", "details": bindingDetails(err)})
		return
	}
	doc.PaymentMethodTitle = doc.PaymentMethod.GetTitle()

	order, err := s.orders.Submit(c.Request.Context(), &doc)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order", "details": err.Error()})
			return
		}
		s.upstreamFailure(c, "Failed to create order", err)
		return
	}

	log.Infof("✅ Order %d created (%d line items)", order.ID, len(doc.LineItems))
	c.JSON(http.StatusOK, order)
}

// upstreamFailure answers 500 with the upstream status code only. Upstream bodies are never relayed.
func (s *Server) upstreamFailure(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	if errors.Is(err, client.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration incomplete"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "status": client.StatusCode(err)})
}

type cartResponse struct {
	Items     []domain.CartLineItem `json:"items"`
	ItemCount int                   `json:"item_count"`
	Total     string                `json:"total"`
}

func newCartResponse(store *cart.Store) cartResponse {
	return cartResponse{
		Items:     store.Items(),
		ItemCount: store.ItemCount(),
		Total:     store.FormatTotal(),
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (s *Server) withCart(c *gin.Context, mutate func(*cart.Store)) {
	var resp cartResponse
	err := s.carts.With(c.Request.Context(), c.GetString(sessionIDKey), func(store *cart.Store) error {
		if mutate != nil {
			mutate(store)
		}
		resp = newCartResponse(store)
		return nil
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to access cart"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getCart(c *gin.Context) {
	s.withCart(c, nil)
}

func (s *Server) addCartItem(c *gin.Context) {
	var item domain.CartLineItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item", "details": bindingDetails(err)})
		return
	}
	s.withCart(c, func(store *cart.Store) {
		store.AddToCart(c.Request.Context(), item)
	})
}

func (s *Server) updateCartItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity", "details": bindingDetails(err)})
		return
	}
	s.withCart(c, func(store *cart.Store) {
		store.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	})
}

func (s *Server) removeCartItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.withCart(c, func(store *cart.Store) {
		store.RemoveFromCart(c.Request.Context(), id)
	})
}

func (s *Server) clearCart(c *gin.Context) {
	s.withCart(c, func(store *cart.Store) {
		store.ClearCart(c.Request.Context())
	})
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}
