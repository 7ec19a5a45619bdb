package controllers

import (
	"net/http"
	"strings"

	"shop-backend/middleware"
	"shop-backend/models"
	"shop-backend/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth  *services.AuthService
	carts *services.CartService
}

func NewAuthController(auth *services.AuthService, carts *services.CartService) *AuthController {
	return &AuthController{auth: auth, carts: carts}
}

// @Summary Register
// @Description Register a new customer account
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "User data"
// @Success 201 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	resp, err := ctrl.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	if !ctrl.mergeGuestCart(c, resp.User.ID) {
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Registration successful",
		Data:    resp,
	})
}

// @Summary Login
// @Description Authenticate and receive a JWT. A guest cart identified by
// the X-Guest-Session header is merged into the user's cart.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	resp, err := ctrl.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	if !ctrl.mergeGuestCart(c, resp.User.ID) {
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}

// mergeGuestCart runs the one-time guest-to-user cart merge when a login
// or registration carries a guest session. Merge failures surface as the
// request's error: a half-merged cart is never possible, but the caller
// should know the merge did not happen.
func (ctrl *AuthController) mergeGuestCart(c *gin.Context, userID int) bool {
	session := strings.TrimSpace(c.GetHeader(middleware.GuestSessionHeader))
	if session == "" {
		return true
	}
	if _, err := ctrl.carts.MergeGuestCart(c.Request.Context(), session, userID); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// @Summary Create address
// @Description Add a delivery address for the caller
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param address body models.CreateAddressRequest true "Address"
// @Success 201 {object} models.Response
// @Router /addresses [post]
func (ctrl *AuthController) CreateAddress(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req models.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	address, err := ctrl.auth.CreateAddress(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Address created",
		Data:    address,
	})
}

// @Summary List addresses
// @Description List the caller's delivery addresses
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /addresses [get]
func (ctrl *AuthController) ListAddresses(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Unauthorized"})
		return
	}

	addresses, err := ctrl.auth.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Addresses retrieved successfully",
		Data:    addresses,
	})
}
