package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/atlas-data/atlas-pipeline/internal/dataset"
)

var csvHeader = []string{
	"user_id", "transact_id", "first_name", "last_name", "email",
	"date_of_birth", "address", "city", "state", "postal_code", "country",
	"company", "job_title", "ip_address", "is_active", "login_time",
	"logout_time", "account_created", "account_updated", "account_deleted",
	"session_duration_minutes", "product_id", "product_name",
	"product_category", "price", "purchase_status", "device_type", "os",
	"browser", "user_agent", "cohort_date", "user_age_days",
	"engagement_level", "price_tier", "customer_lifetime_value",
}

// WriteCSV emits the table rows as an analyst-friendly side format.
func WriteCSV(w io.Writer, rows []dataset.Record) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		deleted := ""
		if r.AccountDeleted != nil {
			deleted = r.AccountDeleted.Format(time.RFC3339)
		}
		record := []string{
			r.UserID,
			r.TransactID,
			r.FirstName,
			r.LastName,
			r.Email,
			r.DateOfBirth,
			r.Address,
			r.City,
			r.State,
			r.PostalCode,
			r.Country,
			r.Company,
			r.JobTitle,
			r.IPAddress,
			strconv.FormatBool(r.IsActive),
			r.LoginTime.Format(time.RFC3339),
			r.LogoutTime.Format(time.RFC3339),
			r.AccountCreated.Format(time.RFC3339),
			r.AccountUpdated.Format(time.RFC3339),
			deleted,
			formatFloat(r.SessionDurationMinutes),
			r.ProductID,
			r.ProductName,
			r.ProductCategory,
			formatFloat(r.Price),
			r.PurchaseStatus,
			r.DeviceType,
			r.OS,
			r.Browser,
			r.UserAgent,
			r.CohortDate,
			strconv.FormatInt(r.UserAgeDays, 10),
			r.EngagementLevel,
			r.PriceTier,
			formatFloat(r.CustomerLifetimeValue),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
