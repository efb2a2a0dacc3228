package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-pos-store/internal/database"
	"go-pos-store/internal/logger"
	"go-pos-store/internal/metrics"
	"go-pos-store/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SaleRequest is what the billing screen sends us
type SaleRequest struct {
	Items []struct {
		ID       uint `json:"id"`
		Quantity int  `json:"quantity"`
	} `json:"items"`
	CustomerName string `json:"customer_name"`
}

// --- POST: /api/save-sale ---
// The whole commit runs inside one transaction. Each line decrements stock
// with a conditional single-row update (decrement only if sufficient), so
// two concurrent carts cannot both pass the stock check. Any failure on any
// line rolls back everything; stock only ever moves for a sale that fully
// committed.
func SaveSale(c *gin.Context) {
	log := logger.FromContext(c)

	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No items in cart"})
		return
	}
	// Reject the whole cart before touching anything
	for _, item := range req.Items {
		if item.Quantity < 1 {
			metrics.SalesFailedTotal.WithLabelValues("bad_quantity").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Quantity must be a positive integer"})
			return
		}
	}

	// Operator comes from the JWT middleware; sales survive user removal
	var userID *uint
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			userID = &id
		}
	}

	transactionID := fmt.Sprintf("TRX-%d", time.Now().Unix())

	tx := database.DB.Begin()

	var totalAmount float64
	var saleItems []models.SaleItem

	for _, item := range req.Items {
		var product models.Product

		if err := tx.First(&product, item.ID).Error; err != nil {
			tx.Rollback()
			metrics.SalesFailedTotal.WithLabelValues("product_not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Product %d not found", item.ID)})
			return
		}

		// Decrement-if-sufficient: the WHERE clause makes the stock check and
		// the decrement one atomic statement, so a concurrent sale cannot
		// oversell the same product.
		result := tx.Model(&models.Product{}).
			Where("id = ? AND stock_quantity >= ?", product.ID, item.Quantity).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
		if result.Error != nil {
			tx.Rollback()
			metrics.SalesFailedTotal.WithLabelValues("db_error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update stock"})
			return
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			metrics.SalesFailedTotal.WithLabelValues("insufficient_stock").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("Not enough stock for %s", product.Name)})
			return
		}

		totalAmount += product.Price * float64(item.Quantity)

		productID := product.ID
		saleItems = append(saleItems, models.SaleItem{
			ProductID:   &productID,
			Quantity:    item.Quantity,
			PriceAtSale: product.Price,
		})
	}

	sale := models.Sale{
		TransactionID: transactionID,
		CustomerName:  req.CustomerName,
		UserID:        userID,
		TotalAmount:   totalAmount,
		Items:         saleItems, // inserted together with the header
	}

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		metrics.SalesFailedTotal.WithLabelValues("db_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create sale record"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		metrics.SalesFailedTotal.WithLabelValues("db_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to commit sale"})
		return
	}

	metrics.SalesCommittedTotal.Inc()
	metrics.SaleAmount.Observe(totalAmount)
	for _, item := range saleItems {
		// Stock gauge reflects the decrement the sale just made
		var product models.Product
		if err := database.DB.First(&product, *item.ProductID).Error; err == nil {
			metrics.UpdateProductStock(strconv.FormatUint(uint64(product.ID), 10), float64(product.StockQuantity))
		}
	}

	log.Info("sale committed",
		zap.String("transaction_id", transactionID),
		zap.Int("lines", len(saleItems)),
		zap.Float64("total", totalAmount))

	c.JSON(http.StatusOK, gin.H{"success": true, "transaction_id": transactionID})
}

// --- GET: /api/sales ---
// Sales history with optional filters. Malformed date bounds are ignored
// rather than rejected; the billing UI passes them straight through.
func ListSales(c *gin.Context) {
	start := database.ParseReportDate(c.Query("start_date"))
	end := database.ParseReportDate(c.Query("end_date"))

	query := database.SalesInRange(database.DB, start, end).
		Preload("Items").
		Order("created_at desc")

	if searchTxn := c.Query("search_txn"); searchTxn != "" {
		query = query.Where("transaction_id LIKE ?", "%"+searchTxn+"%")
	}

	if categoryStr := c.Query("category"); categoryStr != "" {
		if categoryID, err := strconv.Atoi(categoryStr); err == nil {
			subquery := database.DB.Table("sale_items").
				Select("sale_items.sale_id").
				Joins("JOIN products ON products.id = sale_items.product_id").
				Where("products.category_id = ?", categoryID)
			query = query.Where("id IN (?)", subquery)
		}
	}

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// --- GET: /api/invoice/:transaction_id ---
func GetInvoice(c *gin.Context) {
	transactionID := c.Param("transaction_id")

	var sale models.Sale
	err := database.DB.Preload("Items.Product").
		Where("transaction_id = ?", transactionID).
		First(&sale).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, sale)
}
