package database

import (
	"sort"
	"time"

	"go-pos-store/internal/models"

	"gorm.io/gorm"
)

// Report granularities. Anything unrecognized falls back to daily.
const (
	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

// ReportBucket is one period in a bucketed sales report.
type ReportBucket struct {
	Period time.Time
	Total  float64
}

// SalesSummary backs the dashboard and the AI agent's report tool.
type SalesSummary struct {
	TotalProducts int64
	RevenueToday  float64
	LowStockCount int64
	RecentSales   []models.Sale
}

// ParseReportDate parses a YYYY-MM-DD query value. Absent or malformed
// values return nil so the caller simply skips that bound.
func ParseReportDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// PeriodColumnName labels the period column in CSV exports.
func PeriodColumnName(granularity string) string {
	switch granularity {
	case GranularityWeekly:
		return "Week"
	case GranularityMonthly:
		return "Month"
	default:
		return "Date"
	}
}

// TruncatePeriod snaps a timestamp to the start of its report bucket:
// midnight for daily, the preceding Monday for weekly, and the first of
// the month for monthly.
func TruncatePeriod(t time.Time, granularity string) time.Time {
	year, month, day := t.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, t.Location())

	switch granularity {
	case GranularityWeekly:
		weekday := int(dayStart.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday belongs to the week that started the previous Monday
		}
		return dayStart.AddDate(0, 0, -(weekday - 1))
	case GranularityMonthly:
		return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	default:
		return dayStart
	}
}

// SalesInRange applies the inclusive calendar-date bounds to a sales query.
// Both bounds compare the day only, ignoring time-of-day.
func SalesInRange(db *gorm.DB, start, end *time.Time) *gorm.DB {
	query := db.Model(&models.Sale{})
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
	}
	return query
}

// GetBucketedSales sums sale totals per period over an optional date range.
// The bucketing happens in Go rather than SQL so daily/weekly/monthly
// semantics stay identical between MySQL and the sqlite test databases.
// Buckets come back ordered ascending by period.
func GetBucketedSales(granularity string, start, end *time.Time) ([]ReportBucket, error) {
	var sales []models.Sale
	if err := SalesInRange(DB, start, end).Find(&sales).Error; err != nil {
		return nil, err
	}

	totals := make(map[time.Time]float64)
	for _, sale := range sales {
		period := TruncatePeriod(sale.CreatedAt, granularity)
		totals[period] += sale.TotalAmount
	}

	buckets := make([]ReportBucket, 0, len(totals))
	for period, total := range totals {
		buckets = append(buckets, ReportBucket{Period: period, Total: total})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Period.Before(buckets[j].Period)
	})
	return buckets, nil
}

// GetSalesSummary gathers the dashboard numbers: catalog size, today's
// revenue, products running low, and the five most recent sales.
func GetSalesSummary() (*SalesSummary, error) {
	var summary SalesSummary

	if err := DB.Model(&models.Product{}).Count(&summary.TotalProducts).Error; err != nil {
		return nil, err
	}

	today := TruncatePeriod(time.Now(), GranularityDaily)
	err := SalesInRange(DB, &today, &today).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&summary.RevenueToday).Error
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Product{}).
		Where("stock_quantity < ?", 10).
		Count(&summary.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	err = DB.Order("created_at desc").Limit(5).Find(&summary.RecentSales).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// SalesReportResult is the flat revenue/count pair the AI agent reports with.
type SalesReportResult struct {
	TotalRevenue float64
	TotalCount   int64
}

// GetSalesReport calculates total revenue and order count for a date range.
func GetSalesReport(start, end *time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL when no sales exist
	err := SalesInRange(DB, start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = SalesInRange(DB, start, end).Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
