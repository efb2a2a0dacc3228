package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"go-pos-store/internal/database"
	"go-pos-store/internal/logger"
	"go-pos-store/internal/metrics"
	"go-pos-store/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- GET: /reports/data ---
// Time-bucketed sales series for the report charts. Bad date bounds are
// silently dropped; unknown granularities fall back to daily.
func GetReportsData(c *gin.Context) {
	start := database.ParseReportDate(c.Query("start_date"))
	end := database.ParseReportDate(c.Query("end_date"))
	granularity := c.DefaultQuery("granularity", database.GranularityDaily)

	buckets, err := database.GetBucketedSales(granularity, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate sales"})
		return
	}

	labels := make([]string, 0, len(buckets))
	totals := make([]float64, 0, len(buckets))
	var grandTotal float64
	for _, bucket := range buckets {
		labels = append(labels, bucket.Period.Format("2006-01-02"))
		totals = append(totals, bucket.Total)
		grandTotal += bucket.Total
	}

	c.JSON(http.StatusOK, gin.H{
		"labels":      labels,
		"totals":      totals,
		"grand_total": grandTotal,
	})
}

// --- GET: /reports/export ---
// Same series as /reports/data, as a CSV attachment.
func ExportReportsCSV(c *gin.Context) {
	startParam := c.Query("start_date")
	endParam := c.Query("end_date")
	granularity := c.DefaultQuery("granularity", database.GranularityDaily)

	start := database.ParseReportDate(startParam)
	end := database.ParseReportDate(endParam)

	buckets, err := database.GetBucketedSales(granularity, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate sales"})
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{database.PeriodColumnName(granularity), "Total Sales"})
	for _, bucket := range buckets {
		writer.Write([]string{
			bucket.Period.Format("2006-01-02"),
			strconv.FormatFloat(bucket.Total, 'f', -1, 64),
		})
	}
	writer.Flush()

	if startParam == "" {
		startParam = "all"
	}
	if endParam == "" {
		endParam = "all"
	}
	filename := fmt.Sprintf("sales_report_%s_%s_%s.csv", granularity, startParam, endParam)

	metrics.ReportExportsTotal.WithLabelValues(granularity, "csv").Inc()
	logger.FromContext(c).Info("report exported",
		zap.String("granularity", granularity),
		zap.String("filename", filename))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// --- GET: /api/dashboard ---
func GetDashboard(c *gin.Context) {
	summary, err := database.GetSalesSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_products": summary.TotalProducts,
		"sales_today":    summary.RevenueToday,
		"low_stock":      summary.LowStockCount,
		"recent_sales":   summary.RecentSales,
	})
}

// --- DATA STRUCTURES FOR VALUATION REPORT ---

// ValuationItem is a single product row in the valuation report
type ValuationItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	CostPrice float64 `json:"cost_price"`
	TotalCost float64 `json:"total_cost"`
}

// CategoryGroup holds one category's worth of inventory value
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

// ValuationResponse is the final payload
type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// --- GET: /api/reports/valuation ---
// GetStockValuation calculates the total monetary value of all physical
// inventory, grouped by category.
func GetStockValuation(c *gin.Context) {
	var products []models.Product
	if err := database.DB.Preload("Category").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	var grandTotal float64
	groupedMap := make(map[string]*CategoryGroup)

	for _, p := range products {
		catName := "Uncategorized"
		if p.Category != nil {
			catName = p.Category.Name
		}

		if _, exists := groupedMap[catName]; !exists {
			groupedMap[catName] = &CategoryGroup{
				CategoryName: catName,
				Items:        []ValuationItem{},
			}
		}

		itemTotal := float64(p.StockQuantity) * p.Cost

		groupedMap[catName].Items = append(groupedMap[catName].Items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.StockQuantity,
			CostPrice: p.Cost,
			TotalCost: itemTotal,
		})
		groupedMap[catName].Subtotal += itemTotal
		grandTotal += itemTotal
	}

	var response ValuationResponse
	response.GrandTotal = grandTotal
	for _, group := range groupedMap {
		response.Categories = append(response.Categories, *group)
	}

	c.JSON(http.StatusOK, response)
}
