package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go-pos-store/internal/database"
	"go-pos-store/internal/logger"
	"go-pos-store/internal/metrics"
	"go-pos-store/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// --- GET: /api/categories ---
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := database.DB.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// --- POST: /api/categories ---
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	// Name must be unique; checked here so the caller gets a readable error
	var count int64
	database.DB.Model(&models.Category{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category with this name already exists"})
		return
	}

	category := models.Category{Name: name}
	if err := database.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	metrics.RecordCategoryOperation("create")
	logger.FromContext(c).Info("category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))
	c.JSON(http.StatusCreated, category)
}

// --- PUT: /api/categories/:id ---
func UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	var count int64
	database.DB.Model(&models.Category{}).
		Where("name = ? AND id != ?", name, category.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category with this name already exists"})
		return
	}

	category.Name = name
	if err := database.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	metrics.RecordCategoryOperation("update")
	c.JSON(http.StatusOK, category)
}

// --- DELETE: /api/categories/:id ---
// Deleting a category deletes its products with it. The cascade runs in one
// transaction so a failure leaves both tables untouched.
func DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	tx := database.DB.Begin()
	if err := tx.Where("category_id = ?", category.ID).Delete(&models.Product{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category products"})
		return
	}
	if err := tx.Delete(&category).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	tx.Commit()

	metrics.RecordCategoryOperation("delete")
	logger.FromContext(c).Info("category deleted",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// resolveCategoryByID looks up an existing category by its numeric ID.
func resolveCategoryByID(value string) (*models.Category, bool) {
	id, err := strconv.Atoi(value)
	if err != nil {
		return nil, false
	}
	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		return nil, false
	}
	return &category, true
}

// getOrCreateCategoryByName returns the category with the given name,
// creating it first if it does not exist yet.
func getOrCreateCategoryByName(name string) (*models.Category, error) {
	var category models.Category
	err := database.DB.Where("name = ?", name).FirstOrCreate(&category, models.Category{Name: name}).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// resolveCategory handles the product form's dual-mode category field: the
// value is tried as an ID first, then treated as a free-text name.
func resolveCategory(value string) (*models.Category, error) {
	if value == "" {
		return nil, nil
	}
	if category, ok := resolveCategoryByID(value); ok {
		return category, nil
	}
	return getOrCreateCategoryByName(value)
}
