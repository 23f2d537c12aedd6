package orderControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartControllers "github.com/junaidrashid-git/storefront/controllers/cart"
	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/pricing"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// orderError carries the HTTP status a failed placement should answer with.
type orderError struct {
	status  int
	message string
}

func (e *orderError) Error() string { return e.message }

func rejectOrder(status int, message string) error {
	return &orderError{status: status, message: message}
}

// Generate unique order reference
func generateOrderRef() string {
	// Example: 20250908130500-<uuid4>
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// -------- Core Logic --------

// PlaceOrder turns the user's cart into an order. Prices come from the
// products table at this moment; when the request carries totals that no
// longer match, the order is rejected with 409 so the client can re-price.
func PlaceOrder(db *gorm.DB, userID string, req models.OrderRequest) (*models.Order, error) {
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCOD
	}
	if !req.PaymentMethod.Valid() {
		return nil, rejectOrder(http.StatusBadRequest, "Unknown payment method")
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := cartControllers.LoadCart(tx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return rejectOrder(http.StatusBadRequest, "Cart is empty")
		}

		shipTo, err := resolveAddress(tx, userID, req)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			if item.Product == nil {
				return rejectOrder(http.StatusConflict, "Product "+item.ProductID+" is no longer available")
			}
			if !item.Product.InStock {
				return rejectOrder(http.StatusConflict, item.Product.Name+" is out of stock")
			}
			items = append(items, models.OrderItem{
				ProductID: item.ProductID,
				Name:      item.Product.Name,
				Price:     item.Product.Price,
				Quantity:  item.Quantity,
				Image:     item.Product.FirstImage(),
			})
		}

		totals := pricing.CartTotals(cart.Items)
		if clientSentTotals(req) && !sameTotals(req, totals) {
			return rejectOrder(http.StatusConflict, "Cart totals changed, please review your order")
		}

		order = models.Order{
			OrderRef:        generateOrderRef(),
			UserID:          userID,
			Items:           items,
			ShippingAddress: shipTo,
			Subtotal:        totals.Subtotal,
			ShippingCharges: totals.ShippingCharges,
			Total:           totals.Total,
			PaymentMethod:   req.PaymentMethod,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Clear cart items
		return tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// resolveAddress snapshots the saved address named by the request, or the
// inline shipping address when no id is given.
func resolveAddress(tx *gorm.DB, userID string, req models.OrderRequest) (models.AddressFields, error) {
	if req.AddressID == "" {
		in := models.AddressInput{AddressFields: req.ShippingAddress}
		if err := in.Validate(); err != nil {
			return models.AddressFields{}, rejectOrder(http.StatusBadRequest, errs.Message(err))
		}
		return in.AddressFields, nil
	}

	var address models.Address
	if err := tx.Where("id = ? AND user_id = ?", req.AddressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AddressFields{}, rejectOrder(http.StatusBadRequest, "Address not found")
		}
		return models.AddressFields{}, err
	}
	return address.AddressFields, nil
}

func clientSentTotals(req models.OrderRequest) bool {
	return req.Subtotal != 0 || req.ShippingCharges != 0 || req.Total != 0
}

func sameTotals(req models.OrderRequest, t pricing.Totals) bool {
	return req.Subtotal == t.Subtotal && req.ShippingCharges == t.ShippingCharges && req.Total == t.Total
}

// -------- Handlers --------

// POST /api/orders
func PlaceOrderHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req models.OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := PlaceOrder(db, userID, req)
		if err != nil {
			var oe *orderError
			if errors.As(err, &oe) {
				c.JSON(oe.status, gin.H{"error": oe.message})
				return
			}
			zap.L().Error("failed to place order", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}

		zap.L().Info("order placed",
			zap.String("order_ref", order.OrderRef),
			zap.String("user_id", userID),
			zap.Int64("total", order.Total))

		if hub != nil {
			hub.Broadcast(order)
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /api/orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		orders := []models.Order{}
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:order_id
//
// Accepts either the order id or its reference.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id := c.Param("order_id")

		var order models.Order
		if err := db.
			Preload("Items").
			Where("(id = ? OR order_ref = ?) AND user_id = ?", id, id, userID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := listOrders(db, c.Query("status"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func listOrders(db *gorm.DB, status string) ([]models.Order, error) {
	query := db.Preload("Items").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	orders := []models.Order{}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
