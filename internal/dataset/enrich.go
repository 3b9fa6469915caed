package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ua "github.com/mileusna/useragent"
)

// Enrich normalizes every row in place and derives the fields the raw
// generation step does not carry: the transaction identifier, the
// device/os/browser triple parsed from the user-agent string, and the
// analysis columns the downstream models aggregate on (cohort, account
// age, engagement and price tiers, lifetime value).
func Enrich(t *Table) {
	lifetime := make(map[string]float64, len(t.userIDs))
	prices := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		lifetime[r.UserID] += r.Price
		prices = append(prices, r.Price)
	}
	tiers := newPriceTiers(prices)

	for i := range t.Rows {
		r := &t.Rows[i]

		r.FirstName = strings.TrimSpace(r.FirstName)
		r.LastName = strings.TrimSpace(r.LastName)
		r.Email = strings.TrimSpace(r.Email)
		r.Address = strings.TrimSpace(r.Address)
		r.City = strings.TrimSpace(r.City)
		r.State = strings.TrimSpace(r.State)
		r.Company = strings.TrimSpace(r.Company)
		r.JobTitle = strings.TrimSpace(r.JobTitle)
		r.ProductName = strings.TrimSpace(r.ProductName)
		r.PurchaseStatus = strings.ToLower(strings.TrimSpace(r.PurchaseStatus))
		r.UserAgent = strings.TrimSpace(r.UserAgent)

		r.TransactID = transactID(r)
		r.DeviceType, r.OS, r.Browser = parseUserAgent(r.UserAgent)

		r.CohortDate = r.AccountCreated.Format("2006-01")
		r.UserAgeDays = int64(r.LoginTime.Sub(r.AccountCreated) / (24 * time.Hour))
		r.EngagementLevel = engagementLevel(r.SessionDurationMinutes)
		r.PriceTier = tiers.label(r.Price)
		r.CustomerLifetimeValue = round2(lifetime[r.UserID])
	}
}

func transactID(r *Record) string {
	return fmt.Sprintf("txn_%s_%s", r.UserID, r.LoginTime.Format("20060102150405"))
}

// engagementLevel buckets the session length in minutes the way the
// analytical models cut it: (0,30], (30,60], (60,120], above.
func engagementLevel(minutes float64) string {
	switch {
	case minutes <= 30:
		return "Very Low"
	case minutes <= 60:
		return "Low"
	case minutes <= 120:
		return "Medium"
	default:
		return "High"
	}
}

// priceTiers assigns each price to a quartile of the whole run's price
// distribution. Fewer than four distinct prices collapses every row to
// the middle tier.
type priceTiers struct {
	cuts [3]float64
	flat bool
}

func newPriceTiers(prices []float64) priceTiers {
	distinct := make(map[float64]struct{}, len(prices))
	for _, p := range prices {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 4 {
		return priceTiers{flat: true}
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)
	return priceTiers{cuts: [3]float64{
		quantile(sorted, 0.25),
		quantile(sorted, 0.50),
		quantile(sorted, 0.75),
	}}
}

func (pt priceTiers) label(price float64) string {
	switch {
	case pt.flat:
		return "Standard"
	case price <= pt.cuts[0]:
		return "Budget"
	case price <= pt.cuts[1]:
		return "Standard"
	case price <= pt.cuts[2]:
		return "Premium"
	default:
		return "Luxury"
	}
}

// quantile interpolates linearly between the two nearest order
// statistics of an already sorted slice.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo
	if float64(lo) < pos {
		hi = lo + 1
	}
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// parseUserAgent maps a raw user-agent string onto the coarse device,
// operating system, and browser families used by the analytical models.
// Unrecognized devices are treated as desktops.
func parseUserAgent(raw string) (device, os, browser string) {
	agent := ua.Parse(raw)

	device = "Desktop"
	switch {
	case agent.Mobile:
		device = "Mobile"
	case agent.Tablet:
		device = "Tablet"
	}

	os = agent.OS
	if os == "" {
		os = "Unknown"
	}
	browser = agent.Name
	if browser == "" {
		browser = "Unknown"
	}
	return device, os, browser
}
