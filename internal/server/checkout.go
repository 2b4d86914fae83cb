package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cartservice "github.com/nahomjim91/spice-marketplace/internal/cart/service"
	checkoutdomain "github.com/nahomjim91/spice-marketplace/internal/checkout/domain"
)

type checkoutRequest struct {
	Shipping checkoutdomain.ShippingInfo `json:"shipping"`
	Currency string                      `json:"currency"`
}

func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var receipt *checkoutdomain.Receipt
	err := s.carts.Do(c.Request.Context(), sessionID(c), func(sess *cartservice.Session) error {
		var err error
		receipt, err = s.checkoutSvc.Checkout(c.Request.Context(), sess, checkoutdomain.Request{
			Shipping: req.Shipping,
			Currency: strings.TrimSpace(req.Currency),
		})
		return err
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": newReceiptView(receipt)})
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.checkoutSvc.GetOrder(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newOrderView(order)})
}
