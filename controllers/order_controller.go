package controllers

import (
	"net/http"
	"strconv"

	"shop-backend/models"
	"shop-backend/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func requester(c *gin.Context) (int, bool) {
	return c.GetInt("user_id"), c.GetString("user_role") == "admin"
}

// @Summary Create order
// @Description Check out the caller's cart, or an explicit item list. Server recomputes all totals.
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param order body models.CreateOrderRequest true "Order data"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	userID, _ := requester(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	order, err := ctrl.orders.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

// @Summary Get order
// @Description Get one order; owners see their own, admins see all
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, isAdmin := requester(c)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid order ID"})
		return
	}

	order, err := ctrl.orders.GetOrder(c.Request.Context(), userID, isAdmin, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order retrieved successfully",
		Data:    order,
	})
}

// @Summary List orders
// @Description List orders with optional status filter and pagination
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} models.PaginationResponse
// @Router /orders [get]
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	userID, isAdmin := requester(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := models.OrderFilter{Page: page, Limit: limit}
	if raw := c.Query("status"); raw != "" && raw != "All" {
		status, ok := models.ParseOrderStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid status filter"})
			return
		}
		filter.Status = status
	}

	orders, total, err := ctrl.orders.ListOrders(c.Request.Context(), userID, isAdmin, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}
	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Orders retrieved successfully",
		Data:    orders,
		Meta: models.MetaData{
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

// @Summary Update order status
// @Description Advance an order through its lifecycle (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid order ID"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Status is required"})
		return
	}

	order, err := ctrl.orders.UpdateStatus(c.Request.Context(), orderID, req.Status, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order status updated successfully",
		Data:    order,
	})
}
