package database

import (
	"testing"
	"time"

	"go-pos-store/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	DB = db
}

func createSaleAt(t *testing.T, when time.Time, total float64) {
	t.Helper()
	sale := models.Sale{
		TransactionID: "TRX-" + when.Format("20060102150405.000000000"),
		TotalAmount:   total,
		CreatedAt:     when,
	}
	if err := DB.Create(&sale).Error; err != nil {
		t.Fatalf("create sale: %v", err)
	}
}

func date(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.Local)
}

func TestTruncatePeriod(t *testing.T) {
	ts := date(2025, time.March, 16, 14, 30) // a Sunday

	if got := TruncatePeriod(ts, GranularityDaily); !got.Equal(date(2025, time.March, 16, 0, 0)) {
		t.Fatalf("daily: got %v", got)
	}
	if got := TruncatePeriod(ts, GranularityWeekly); !got.Equal(date(2025, time.March, 10, 0, 0)) {
		t.Fatalf("weekly: Sunday should map to the preceding Monday, got %v", got)
	}
	if got := TruncatePeriod(ts, GranularityMonthly); !got.Equal(date(2025, time.March, 1, 0, 0)) {
		t.Fatalf("monthly: got %v", got)
	}

	// A Monday is already its own week start
	monday := date(2025, time.March, 10, 9, 0)
	if got := TruncatePeriod(monday, GranularityWeekly); !got.Equal(date(2025, time.March, 10, 0, 0)) {
		t.Fatalf("weekly: Monday should truncate to itself, got %v", got)
	}

	// Unknown granularity falls back to daily
	if got := TruncatePeriod(ts, "hourly"); !got.Equal(date(2025, time.March, 16, 0, 0)) {
		t.Fatalf("fallback: got %v", got)
	}
}

func TestParseReportDate(t *testing.T) {
	if got := ParseReportDate("2025-05-01"); got == nil || !got.Equal(date(2025, time.May, 1, 0, 0)) {
		t.Fatalf("valid date: got %v", got)
	}
	if got := ParseReportDate("01/05/2025"); got != nil {
		t.Fatalf("malformed date should be ignored, got %v", got)
	}
	if got := ParseReportDate(""); got != nil {
		t.Fatalf("empty date should be ignored, got %v", got)
	}
}

func TestGetBucketedSalesMonthly(t *testing.T) {
	setupTestDB(t)
	createSaleAt(t, date(2025, time.May, 3, 10, 0), 50)
	createSaleAt(t, date(2025, time.May, 20, 16, 45), 75)

	buckets, err := GetBucketedSales(GranularityMonthly, nil, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket got %d", len(buckets))
	}
	if !buckets[0].Period.Equal(date(2025, time.May, 1, 0, 0)) {
		t.Fatalf("unexpected period %v", buckets[0].Period)
	}
	if buckets[0].Total != 125 {
		t.Fatalf("expected total 125 got %v", buckets[0].Total)
	}
}

func TestGetBucketedSalesDailyOrdering(t *testing.T) {
	setupTestDB(t)
	// Inserted out of order on purpose
	createSaleAt(t, date(2025, time.May, 5, 12, 0), 20)
	createSaleAt(t, date(2025, time.May, 1, 9, 0), 10)
	createSaleAt(t, date(2025, time.May, 1, 18, 0), 15)

	buckets, err := GetBucketedSales(GranularityDaily, nil, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets got %d", len(buckets))
	}
	if !buckets[0].Period.Before(buckets[1].Period) {
		t.Fatalf("buckets not ascending: %v before %v", buckets[0].Period, buckets[1].Period)
	}
	if buckets[0].Total != 25 || buckets[1].Total != 20 {
		t.Fatalf("unexpected totals %v / %v", buckets[0].Total, buckets[1].Total)
	}
}

func TestGetBucketedSalesRangeInclusive(t *testing.T) {
	setupTestDB(t)
	createSaleAt(t, date(2025, time.April, 30, 23, 0), 1) // before range
	createSaleAt(t, date(2025, time.May, 1, 23, 59), 10)  // first day, late evening
	createSaleAt(t, date(2025, time.May, 10, 0, 0), 20)   // last day, midnight
	createSaleAt(t, date(2025, time.May, 11, 0, 1), 2)    // after range

	start := ParseReportDate("2025-05-01")
	end := ParseReportDate("2025-05-10")

	buckets, err := GetBucketedSales(GranularityDaily, start, end)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	var total float64
	for _, b := range buckets {
		total += b.Total
	}
	if total != 30 {
		t.Fatalf("range should include both end dates and nothing else, got total %v", total)
	}
}

func TestGetBucketedSalesEmptyRange(t *testing.T) {
	setupTestDB(t)
	createSaleAt(t, date(2025, time.May, 5, 12, 0), 100)

	start := ParseReportDate("2030-01-01")
	end := ParseReportDate("2030-12-31")

	buckets, err := GetBucketedSales(GranularityDaily, start, end)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(buckets) != 0 {
		t.Fatalf("expected empty series got %d buckets", len(buckets))
	}
}

func TestGetSalesReport(t *testing.T) {
	setupTestDB(t)
	createSaleAt(t, date(2025, time.May, 2, 10, 0), 40)
	createSaleAt(t, date(2025, time.May, 3, 10, 0), 60)
	createSaleAt(t, date(2025, time.June, 1, 10, 0), 999)

	start := ParseReportDate("2025-05-01")
	end := ParseReportDate("2025-05-31")

	report, err := GetSalesReport(start, end)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalRevenue != 100 {
		t.Fatalf("expected revenue 100 got %v", report.TotalRevenue)
	}
	if report.TotalCount != 2 {
		t.Fatalf("expected 2 orders got %d", report.TotalCount)
	}
}

func TestGetSalesSummary(t *testing.T) {
	setupTestDB(t)
	products := []models.Product{
		{Barcode: "111", Name: "Plenty", StockQuantity: 50},
		{Barcode: "222", Name: "Scarce", StockQuantity: 3},
	}
	if err := DB.Create(&products).Error; err != nil {
		t.Fatalf("seed products: %v", err)
	}
	createSaleAt(t, time.Now(), 30)
	createSaleAt(t, time.Now().AddDate(0, 0, -1), 500)

	summary, err := GetSalesSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalProducts != 2 {
		t.Fatalf("expected 2 products got %d", summary.TotalProducts)
	}
	if summary.LowStockCount != 1 {
		t.Fatalf("expected 1 low-stock product got %d", summary.LowStockCount)
	}
	if summary.RevenueToday != 30 {
		t.Fatalf("yesterday's sale must not count towards today, got %v", summary.RevenueToday)
	}
	if len(summary.RecentSales) != 2 {
		t.Fatalf("expected 2 recent sales got %d", len(summary.RecentSales))
	}
}
