package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go-pos-store/internal/database"
	"go-pos-store/internal/logger"
	"go-pos-store/internal/metrics"
	"go-pos-store/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductRequest is the create/update payload. Category carries either an
// existing category ID or a free-text name (see resolveCategory).
type ProductRequest struct {
	Barcode       string  `json:"barcode" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Price         float64 `json:"price"`
	Cost          float64 `json:"cost"`
	StockQuantity int     `json:"stock_quantity"`
	GSTPercentage float64 `json:"gst_percentage"`
	Category      string  `json:"category"`
	ImageURL      string  `json:"image_url"`
}

// --- GET: List all products, newest first ---
func GetProducts(c *gin.Context) {
	var products []models.Product
	result := database.DB.Preload("Category").Order("id desc").Find(&products)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// --- GET: /api/get-product?barcode=... ---
// Barcode lookup for the billing screen scanner.
func GetProductByBarcode(c *gin.Context) {
	barcode := c.Query("barcode")

	var product models.Product
	if err := database.DB.Where("barcode = ?", barcode).First(&product).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"barcode": product.Barcode,
		"id":      product.ID,
		"name":    product.Name,
		"price":   product.Price,
		"stock":   product.StockQuantity,
		"gst":     product.GSTPercentage,
	})
}

// --- POST: Add a new product ---
func AddProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// Pre-check the barcode so the caller gets a validation error instead
	// of a raw uniqueness-constraint failure
	var count int64
	database.DB.Model(&models.Product{}).Where("barcode = ?", req.Barcode).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A product with this barcode already exists"})
		return
	}

	category, err := resolveCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve category"})
		return
	}

	product := models.Product{
		Barcode:       req.Barcode,
		Name:          req.Name,
		Price:         req.Price,
		Cost:          req.Cost,
		StockQuantity: req.StockQuantity,
		GSTPercentage: req.GSTPercentage,
		ImageURL:      req.ImageURL,
	}
	if category != nil {
		product.CategoryID = &category.ID
	}

	if err := database.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	metrics.RecordProductOperation("create")
	metrics.UpdateProductStock(strconv.FormatUint(uint64(product.ID), 10), float64(product.StockQuantity))
	logger.FromContext(c).Info("product created",
		zap.Uint("product_id", product.ID),
		zap.String("barcode", product.Barcode),
		zap.String("name", product.Name))
	c.JSON(http.StatusCreated, product)
}

// --- PUT: Update a product ---
func UpdateProduct(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// Make sure the new barcode does not collide with another product
	var count int64
	database.DB.Model(&models.Product{}).
		Where("barcode = ? AND id != ?", req.Barcode, product.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Another product with this barcode already exists"})
		return
	}

	product.Barcode = req.Barcode
	product.Name = req.Name
	product.Price = req.Price
	product.Cost = req.Cost
	product.StockQuantity = req.StockQuantity
	product.GSTPercentage = req.GSTPercentage
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	if req.Category != "" {
		category, err := resolveCategory(req.Category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve category"})
			return
		}
		product.CategoryID = &category.ID
	}

	if err := database.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	metrics.RecordProductOperation("update")
	metrics.UpdateProductStock(idStr, float64(product.StockQuantity))
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product ---
// Past sale lines keep their snapshot; their product reference goes null.
func DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	result := database.DB.Delete(&models.Product{}, id)
	if result.Error != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	metrics.RecordProductOperation("delete")
	logger.FromContext(c).Info("product deleted", zap.String("product_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// --- UPLOAD: Handle product image files ---
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// Timestamped name avoids collisions, e.g. "1756700000_burger.jpg"
	filename := fmt.Sprintf("%d_%s", time.Now().Unix(), file.Filename)
	filepath := "./uploads/" + filename

	if err := c.SaveUploadedFile(file, filepath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     baseURL + "/uploads/" + filename,
	})
}
