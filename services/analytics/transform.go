package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"tumbledry-backend/lib/metricutil"
	"tumbledry-backend/lib/recordstore"

	"github.com/shopspring/decimal"
)

// column labels as the portal reports them. metrics are stored verbatim
// so renames upstream surface here first.
const (
	colMonth        = "Month"
	colRevenue      = "Revenue"
	colChemical     = "Chemical Billing"
	colPackaging    = "Packaging Billing"
	colChemicalPct  = "% Chemical Billing Vs Revenue"
	colPackagingPct = "% Packaging Billing Vs Revenue"
	colTatPct       = "% Delivered within TAT"
	colGrowth       = "Revenue Growth Vs Last Month %"
)

const monthLayout = "Jan, 2006"
const launchDateLayout = "02 Jan 2006"

type StoreRow struct {
	StoreCode  string  `json:"store_code"`
	StoreName  string  `json:"store_name"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Status     string  `json:"status"`
	LaunchDate string  `json:"launch_date"`
	AvgTat     float64 `json:"avg_tat"`
}

func storeRowFrom(rec recordstore.Record) StoreRow {
	return StoreRow{
		StoreCode:  rec.StoreCode,
		StoreName:  rec.StoreName,
		City:       orUnknown(rec.City),
		State:      orUnknown(rec.State),
		Status:     orUnknown(string(rec.Status)),
		LaunchDate: orUnknown(rec.LaunchDate),
		AvgTat:     averageTat(rec.YearlyData),
	}
}

func orUnknown(v string) string {
	if v == "" {
		return recordstore.Unknown
	}
	return v
}

// averageTat averages the delivered-within-TAT percentage over the
// months that reported one, rounded to a single decimal place.
func averageTat(metrics []recordstore.Metric) float64 {
	var sum decimal.Decimal
	count := 0
	for _, m := range metrics {
		d, ok := metricutil.TryParseNumber(m.Values[colTatPct])
		if !ok {
			continue
		}
		sum = sum.Add(d)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(int64(count))).Round(1).InexactFloat64()
}

func sortRows(rows []StoreRow, sortBy, order string) {
	if sortBy == "" {
		return
	}
	desc := order == "desc"

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rowLess(rows[j], rows[i], sortBy)
		}
		return rowLess(rows[i], rows[j], sortBy)
	})
}

func rowLess(a, b StoreRow, sortBy string) bool {
	if sortBy == "avg_tat" {
		return a.AvgTat < b.AvgTat
	}
	return strings.ToLower(rowField(a, sortBy)) < strings.ToLower(rowField(b, sortBy))
}

func rowField(r StoreRow, field string) string {
	switch field {
	case "store_code":
		return r.StoreCode
	case "store_name":
		return r.StoreName
	case "city":
		return r.City
	case "state":
		return r.State
	case "status":
		return r.Status
	case "launch_date":
		return r.LaunchDate
	default:
		return ""
	}
}

type HighestMonth struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type KPIs struct {
	StoreAge            string       `json:"store_age"`
	LifetimeRevenue     float64      `json:"lifetime_revenue"`
	AvgMonthlyRevenue   float64      `json:"avg_monthly_revenue"`
	EfficiencyScore     float64      `json:"efficiency_score"`
	HighestRevenueMonth HighestMonth `json:"highest_revenue_month"`
}

type Stats struct {
	StoreName    string    `json:"store_name"`
	Labels       []string  `json:"labels"`
	Revenue      []float64 `json:"revenue"`
	Chemical     []float64 `json:"chemical"`
	Packaging    []float64 `json:"packaging"`
	ChemicalPct  []float64 `json:"chemical_pct"`
	PackagingPct []float64 `json:"packaging_pct"`
	TatPct       []float64 `json:"tat_pct"`
	Growth       []float64 `json:"growth"`
	KPIs         KPIs      `json:"kpis"`
}

// buildStats flattens a record's monthly metrics into parallel chart
// arrays, oldest month first. Months with unparseable labels keep
// their data but sort to the front.
func buildStats(rec recordstore.Record, now time.Time) Stats {
	metrics := make([]recordstore.Metric, len(rec.YearlyData))
	copy(metrics, rec.YearlyData)
	sort.SliceStable(metrics, func(i, j int) bool {
		return monthTime(metrics[i].Month).Before(monthTime(metrics[j].Month))
	})

	stats := Stats{
		StoreName:    rec.StoreName,
		Labels:       make([]string, 0, len(metrics)),
		Revenue:      make([]float64, 0, len(metrics)),
		Chemical:     make([]float64, 0, len(metrics)),
		Packaging:    make([]float64, 0, len(metrics)),
		ChemicalPct:  make([]float64, 0, len(metrics)),
		PackagingPct: make([]float64, 0, len(metrics)),
		TatPct:       make([]float64, 0, len(metrics)),
		Growth:       make([]float64, 0, len(metrics)),
	}

	var revenue, chemical, packaging decimal.Decimal
	for _, m := range metrics {
		rev := metricutil.ParseNumber(m.Values[colRevenue])
		chem := metricutil.ParseNumber(m.Values[colChemical])
		pack := metricutil.ParseNumber(m.Values[colPackaging])

		stats.Labels = append(stats.Labels, m.Month)
		stats.Revenue = append(stats.Revenue, rev.InexactFloat64())
		stats.Chemical = append(stats.Chemical, chem.InexactFloat64())
		stats.Packaging = append(stats.Packaging, pack.InexactFloat64())
		stats.ChemicalPct = append(stats.ChemicalPct, metricutil.ParseNumber(m.Values[colChemicalPct]).InexactFloat64())
		stats.PackagingPct = append(stats.PackagingPct, metricutil.ParseNumber(m.Values[colPackagingPct]).InexactFloat64())
		stats.TatPct = append(stats.TatPct, metricutil.ParseNumber(m.Values[colTatPct]).InexactFloat64())
		stats.Growth = append(stats.Growth, metricutil.ParseNumber(m.Values[colGrowth]).InexactFloat64())

		revenue = revenue.Add(rev)
		chemical = chemical.Add(chem)
		packaging = packaging.Add(pack)
	}

	stats.KPIs = KPIs{
		StoreAge:            storeAge(rec.LaunchDate, now),
		LifetimeRevenue:     revenue.InexactFloat64(),
		HighestRevenueMonth: highestRevenueMonth(stats.Labels, stats.Revenue),
	}
	if len(stats.Revenue) > 0 {
		stats.KPIs.AvgMonthlyRevenue = revenue.Div(decimal.NewFromInt(int64(len(stats.Revenue)))).InexactFloat64()
	}
	if spend := chemical.Add(packaging); spend.IsPositive() {
		stats.KPIs.EfficiencyScore = revenue.Div(spend).InexactFloat64()
	}

	return stats
}

func monthTime(label string) time.Time {
	t, err := time.Parse(monthLayout, label)
	if err != nil {
		return time.Time{}
	}
	return t
}

// storeAge renders the elapsed time since launch as whole years and
// months. Dates the portal mangled pass through untouched.
func storeAge(launchDate string, now time.Time) string {
	if launchDate == "" {
		return "N/A"
	}
	launched, err := time.Parse(launchDateLayout, launchDate)
	if err != nil {
		return launchDate
	}

	days := int(now.Sub(launched).Hours() / 24)
	years := days / 365
	months := (days % 365) / 30
	if years > 0 {
		return fmt.Sprintf("%d Years, %d Months", years, months)
	}
	return fmt.Sprintf("%d Months", months)
}

func highestRevenueMonth(labels []string, revenue []float64) HighestMonth {
	if len(revenue) == 0 {
		return HighestMonth{Month: "-", Amount: 0}
	}
	best := 0
	for i, v := range revenue {
		if v > revenue[best] {
			best = i
		}
	}
	return HighestMonth{Month: labels[best], Amount: revenue[best]}
}
