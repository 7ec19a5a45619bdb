package controllers

import (
	"net/http"
	"strconv"

	"shop-backend/middleware"
	"shop-backend/models"
	"shop-backend/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// @Summary Create cart
// @Description Create (or return) the caller's cart
// @Tags Cart
// @Produce json
// @Success 201 {object} models.Response
// @Router /cart [post]
func (ctrl *CartController) CreateCart(c *gin.Context) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Identity required"})
		return
	}

	cart, err := ctrl.carts.GetOrCreateCart(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Cart ready",
		Data:    cart,
	})
}

// @Summary Get cart
// @Description Get the caller's cart with computed totals
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Identity required"})
		return
	}

	view, err := ctrl.carts.GetCart(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart retrieved successfully",
		Data:    view,
	})
}

// @Summary Add item
// @Description Add a product to the cart; adding the same product again sums quantities
// @Tags Cart
// @Accept json
// @Produce json
// @Param item body models.AddItemRequest true "Item"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Identity required"})
		return
	}

	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	item, err := ctrl.carts.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Item added to cart",
		Data:    item,
	})
}

// @Summary Update item
// @Description Replace an item's quantity; 0 removes the item
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param item body models.UpdateItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Identity required"})
		return
	}

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid item ID"})
		return
	}

	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	item, err := ctrl.carts.UpdateItem(c.Request.Context(), owner, itemID, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	if item == nil {
		c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed from cart"})
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Item updated",
		Data:    item,
	})
}

// @Summary Remove item
// @Description Remove an item from the cart
// @Tags Cart
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Identity required"})
		return
	}

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid item ID"})
		return
	}

	if err := ctrl.carts.RemoveItem(c.Request.Context(), owner, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed from cart"})
}

// @Summary Clear cart
// @Description Destroy the caller's cart
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Identity required"})
		return
	}

	if err := ctrl.carts.Clear(c.Request.Context(), owner); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart cleared"})
}
