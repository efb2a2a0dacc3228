package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"go-pos-store/internal/database"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB points the package-global connection at a fresh in-memory
// sqlite database, one per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	return db
}

// testRouter wires the handlers under test without the auth middleware.
func testRouter() *gin.Engine {
	r := gin.New()

	r.GET("/api/products", GetProducts)
	r.POST("/api/products", AddProduct)
	r.PUT("/api/products/:id", UpdateProduct)
	r.DELETE("/api/products/:id", DeleteProduct)
	r.GET("/api/get-product", GetProductByBarcode)

	r.GET("/api/categories", ListCategories)
	r.POST("/api/categories", CreateCategory)
	r.PUT("/api/categories/:id", UpdateCategory)
	r.DELETE("/api/categories/:id", DeleteCategory)

	r.POST("/api/save-sale", SaveSale)
	r.GET("/api/sales", ListSales)
	r.GET("/api/invoice/:transaction_id", GetInvoice)

	r.GET("/api/dashboard", GetDashboard)
	r.GET("/api/reports/valuation", GetStockValuation)
	r.GET("/reports/data", GetReportsData)
	r.GET("/reports/export", ExportReportsCSV)

	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return payload
}
