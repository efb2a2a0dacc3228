package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go-pos-store/internal/models"
)

func TestReportsDataMonthly(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter()

	sales := []models.Sale{
		{TransactionID: "TRX-a", TotalAmount: 50, CreatedAt: time.Date(2025, 5, 3, 10, 0, 0, 0, time.Local)},
		{TransactionID: "TRX-b", TotalAmount: 75, CreatedAt: time.Date(2025, 5, 21, 15, 0, 0, 0, time.Local)},
	}
	if err := db.Create(&sales).Error; err != nil {
		t.Fatalf("seed sales: %v", err)
	}

	w := doRequest(t, r, http.MethodGet, "/reports/data?granularity=monthly", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	payload := decodeBody(t, w)

	labels := payload["labels"].([]interface{})
	totals := payload["totals"].([]interface{})
	if len(labels) != 1 || len(totals) != 1 {
		t.Fatalf("expected one monthly bucket, got %v / %v", labels, totals)
	}
	if labels[0] != "2025-05-01" {
		t.Fatalf("expected label 2025-05-01 got %v", labels[0])
	}
	if totals[0] != float64(125) {
		t.Fatalf("expected total 125 got %v", totals[0])
	}
	if payload["grand_total"] != float64(125) {
		t.Fatalf("expected grand total 125 got %v", payload["grand_total"])
	}
}

func TestReportsDataEmpty(t *testing.T) {
	setupTestDB(t)
	r := testRouter()

	w := doRequest(t, r, http.MethodGet, "/reports/data", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	payload := decodeBody(t, w)
	if len(payload["labels"].([]interface{})) != 0 {
		t.Fatalf("expected empty labels got %v", payload["labels"])
	}
	if payload["grand_total"] != float64(0) {
		t.Fatalf("expected grand total 0 got %v", payload["grand_total"])
	}
}

func TestReportsDataMalformedDatesIgnored(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter()

	sale := models.Sale{TransactionID: "TRX-c", TotalAmount: 30, CreatedAt: time.Date(2025, 5, 3, 10, 0, 0, 0, time.Local)}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	w := doRequest(t, r, http.MethodGet, "/reports/data?start_date=notadate&end_date=2025-13-99", "")
	if w.Code != http.StatusOK {
		t.Fatalf("malformed dates must not error, got %d", w.Code)
	}
	payload := decodeBody(t, w)
	if payload["grand_total"] != float64(30) {
		t.Fatalf("bad bounds should be dropped, got grand total %v", payload["grand_total"])
	}
}

func TestReportsExportCSV(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter()

	sales := []models.Sale{
		{TransactionID: "TRX-d", TotalAmount: 50, CreatedAt: time.Date(2025, 5, 3, 10, 0, 0, 0, time.Local)},
		{TransactionID: "TRX-e", TotalAmount: 75, CreatedAt: time.Date(2025, 5, 21, 15, 0, 0, 0, time.Local)},
	}
	if err := db.Create(&sales).Error; err != nil {
		t.Fatalf("seed sales: %v", err)
	}

	w := doRequest(t, r, http.MethodGet, "/reports/export?granularity=monthly", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	disposition := w.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "sales_report_monthly_all_all.csv") {
		t.Fatalf("unexpected filename in %q", disposition)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "Month,Total Sales" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "2025-05-01,125" {
		t.Fatalf("unexpected row %q", lines[1])
	}

	// Date bounds show up in the filename; weekly relabels the period column
	w = doRequest(t, r, http.MethodGet, "/reports/export?granularity=weekly&start_date=2025-05-01&end_date=2025-05-31", "")
	disposition = w.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "sales_report_weekly_2025-05-01_2025-05-31.csv") {
		t.Fatalf("unexpected filename in %q", disposition)
	}
	if !strings.HasPrefix(w.Body.String(), "Week,Total Sales") {
		t.Fatalf("weekly export should use the Week column, got %q", w.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter()

	products := []models.Product{
		{Barcode: "d1", Name: "Plenty", StockQuantity: 40},
		{Barcode: "d2", Name: "Scarce", StockQuantity: 2},
	}
	if err := db.Create(&products).Error; err != nil {
		t.Fatalf("seed products: %v", err)
	}
	sale := models.Sale{TransactionID: "TRX-today", TotalAmount: 30, CreatedAt: time.Now()}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	w := doRequest(t, r, http.MethodGet, "/api/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	payload := decodeBody(t, w)
	if payload["total_products"] != float64(2) {
		t.Fatalf("expected 2 products got %v", payload["total_products"])
	}
	if payload["sales_today"] != float64(30) {
		t.Fatalf("expected 30 revenue today got %v", payload["sales_today"])
	}
	if payload["low_stock"] != float64(1) {
		t.Fatalf("expected 1 low stock got %v", payload["low_stock"])
	}
}

func TestStockValuation(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter()

	drinks := models.Category{Name: "Drinks"}
	db.Create(&drinks)
	products := []models.Product{
		{Barcode: "v1", Name: "Cola", Cost: 0.50, StockQuantity: 100, CategoryID: &drinks.ID},
		{Barcode: "v2", Name: "Loose Item", Cost: 2.00, StockQuantity: 10},
	}
	if err := db.Create(&products).Error; err != nil {
		t.Fatalf("seed products: %v", err)
	}

	w := doRequest(t, r, http.MethodGet, "/api/reports/valuation", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	payload := decodeBody(t, w)
	if payload["grand_total"] != float64(70) {
		t.Fatalf("expected grand total 70 got %v", payload["grand_total"])
	}

	groups := payload["categories"].([]interface{})
	if len(groups) != 2 {
		t.Fatalf("expected 2 category groups got %d", len(groups))
	}
	byName := map[string]float64{}
	for _, g := range groups {
		group := g.(map[string]interface{})
		byName[group["category_name"].(string)] = group["subtotal"].(float64)
	}
	if byName["Drinks"] != 50 || byName["Uncategorized"] != 20 {
		t.Fatalf("unexpected subtotals %v", byName)
	}
}
