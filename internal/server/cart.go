package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	cartservice "github.com/nahomjim91/spice-marketplace/internal/cart/service"
)

type customizationsRequest struct {
	GiftWrap     string `json:"gift_wrap"`
	Message      string `json:"message"`
	DeliveryDate string `json:"delivery_date"`
}

type addCartItemRequest struct {
	ProductID      string                 `json:"product_id"`
	Quantity       *int                   `json:"quantity"`
	Customizations *customizationsRequest `json:"customizations"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (s *Server) GetCart(c *gin.Context) {
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.State(), nil
	})
}

func (s *Server) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	var custom *cartdomain.Customizations
	if req.Customizations != nil {
		custom = &cartdomain.Customizations{
			GiftWrap:     strings.TrimSpace(req.Customizations.GiftWrap),
			Message:      strings.TrimSpace(req.Customizations.Message),
			DeliveryDate: strings.TrimSpace(req.Customizations.DeliveryDate),
		}
	}

	productID := strings.TrimSpace(req.ProductID)
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.AddItem(ctx, productID, quantity, custom)
	})
}

func (s *Server) UpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		AbortWithError(c, newValidationError("quantity", "invalid_quantity", "quantity is required"))
		return
	}

	itemID := strings.TrimSpace(c.Param("id"))
	quantity := *req.Quantity
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.UpdateQuantity(ctx, itemID, quantity)
	})
}

func (s *Server) RemoveCartItem(c *gin.Context) {
	itemID := strings.TrimSpace(c.Param("id"))
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.RemoveItem(ctx, itemID)
	})
}

func (s *Server) ClearCart(c *gin.Context) {
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.ClearCart(ctx)
	})
}

func (s *Server) ToggleCart(c *gin.Context) {
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.ToggleCart(ctx)
	})
}

func (s *Server) OpenCart(c *gin.Context) {
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.OpenCart(ctx)
	})
}

func (s *Server) CloseCart(c *gin.Context) {
	s.withCart(c, http.StatusOK, func(ctx context.Context, sess *cartservice.Session) (cartdomain.CartState, error) {
		return sess.CloseCart(ctx)
	})
}

// withCart runs fn while holding the caller's cart session and renders the
// resulting state.
func (s *Server) withCart(c *gin.Context, status int, fn func(context.Context, *cartservice.Session) (cartdomain.CartState, error)) {
	id := sessionID(c)
	var state cartdomain.CartState
	err := s.carts.Do(c.Request.Context(), id, func(sess *cartservice.Session) error {
		var err error
		state, err = fn(c.Request.Context(), sess)
		return err
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(status, gin.H{"data": newCartView(id, state)})
}
