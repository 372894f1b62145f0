package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"beatshop/internal/services"
)

// CartHandler exposes the single visitor cart.
type CartHandler struct {
	cart *services.CartStore
}

func NewCartHandler(cart *services.CartStore) *CartHandler {
	return &CartHandler{cart: cart}
}

type cartModifyRequest struct {
	ID     uint   `json:"id"`
	Action string `json:"action"`
}

// GetCart returns the current cart contents.
func (h *CartHandler) GetCart(c echo.Context) error {
	ids, err := h.cart.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read cart")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"cart": ids})
}

// ModifyCart adds or removes one listing id.
func (h *CartHandler) ModifyCart(c echo.Context) error {
	var req cartModifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Invalid JSON payload"})
	}
	if req.ID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Missing listing id"})
	}

	ctx := c.Request().Context()
	switch req.Action {
	case "add":
		ids, err := h.cart.Add(ctx, req.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update cart")
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"cart":    ids,
			"message": "Added to cart",
		})
	case "remove":
		ids, err := h.cart.Remove(ctx, req.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update cart")
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"cart":    ids,
			"message": "Removed from cart",
		})
	default:
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Invalid action"})
	}
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c echo.Context) error {
	if err := h.cart.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear cart")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Cart cleared",
	})
}
