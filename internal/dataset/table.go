package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/atlas-data/atlas-pipeline/internal/generator"
)

// Record is one row of the assembled table: a session joined with its
// user and product dimensions, plus fields derived during enrichment.
// Tags drive columnar serialization and row-level validation.
type Record struct {
	UserID      string `parquet:"user_id" json:"user_id" validate:"required,uuid4"`
	TransactID  string `parquet:"transact_id" json:"transact_id" validate:"required"`
	FirstName   string `parquet:"first_name" json:"first_name" validate:"required"`
	LastName    string `parquet:"last_name" json:"last_name" validate:"required"`
	Email       string `parquet:"email" json:"email" validate:"required,email"`
	DateOfBirth string `parquet:"date_of_birth" json:"date_of_birth" validate:"required"`
	Address     string `parquet:"address" json:"address"`
	City        string `parquet:"city" json:"city"`
	State       string `parquet:"state" json:"state"`
	PostalCode  string `parquet:"postal_code" json:"postal_code"`
	Country     string `parquet:"country" json:"country"`
	Company     string `parquet:"company" json:"company"`
	JobTitle    string `parquet:"job_title" json:"job_title"`
	IPAddress   string `parquet:"ip_address" json:"ip_address" validate:"required,ip4_addr"`
	IsActive    bool   `parquet:"is_active" json:"is_active"`

	LoginTime      time.Time  `parquet:"login_time,timestamp" json:"login_time" validate:"required"`
	LogoutTime     time.Time  `parquet:"logout_time,timestamp" json:"logout_time" validate:"required"`
	AccountCreated time.Time  `parquet:"account_created,timestamp" json:"account_created" validate:"required"`
	AccountUpdated time.Time  `parquet:"account_updated,timestamp" json:"account_updated" validate:"required"`
	AccountDeleted *time.Time `parquet:"account_deleted,optional" json:"account_deleted,omitempty"`

	SessionDurationMinutes float64 `parquet:"session_duration_minutes" json:"session_duration_minutes" validate:"gte=0"`

	ProductID       string  `parquet:"product_id" json:"product_id" validate:"required,uuid4"`
	ProductName     string  `parquet:"product_name" json:"product_name" validate:"required"`
	ProductCategory string  `parquet:"product_category" json:"product_category"`
	Price           float64 `parquet:"price" json:"price" validate:"gt=0"`
	PurchaseStatus  string  `parquet:"purchase_status" json:"purchase_status" validate:"required,oneof=completed pending failed"`

	DeviceType string `parquet:"device_type" json:"device_type"`
	OS         string `parquet:"os" json:"os"`
	Browser    string `parquet:"browser" json:"browser"`
	UserAgent  string `parquet:"user_agent" json:"user_agent" validate:"required"`

	CohortDate            string  `parquet:"cohort_date" json:"cohort_date" validate:"required"`
	UserAgeDays           int64   `parquet:"user_age_days" json:"user_age_days" validate:"gte=0"`
	EngagementLevel       string  `parquet:"engagement_level" json:"engagement_level" validate:"required"`
	PriceTier             string  `parquet:"price_tier" json:"price_tier" validate:"required"`
	CustomerLifetimeValue float64 `parquet:"customer_lifetime_value" json:"customer_lifetime_value" validate:"gte=0"`
}

// Table is the single assembled dataset for one run, carrying the
// dimension key sets so foreign keys can be checked without a database.
type Table struct {
	Rows []Record

	userIDs    map[string]struct{}
	productIDs map[string]struct{}
}

// Summary aggregates the run statistics reported after validation.
type Summary struct {
	Rows         int
	ActiveUsers  int
	AveragePrice float64
}

// Assemble joins the generated sessions with their user and product
// dimensions into one table. A session referencing an entity that was
// not produced in the same batch aborts assembly.
func Assemble(batch generator.Batch) (*Table, error) {
	users := make(map[string]generator.User, len(batch.Users))
	for _, u := range batch.Users {
		users[u.ID] = u
	}
	products := make(map[string]generator.Product, len(batch.Products))
	for _, p := range batch.Products {
		products[p.ID] = p
	}

	table := &Table{
		Rows:       make([]Record, 0, len(batch.Sessions)),
		userIDs:    make(map[string]struct{}, len(users)),
		productIDs: make(map[string]struct{}, len(products)),
	}
	for id := range users {
		table.userIDs[id] = struct{}{}
	}
	for id := range products {
		table.productIDs[id] = struct{}{}
	}

	for i, s := range batch.Sessions {
		user, ok := users[s.UserID]
		if !ok {
			return nil, fmt.Errorf("%w: session %d user %s", ErrDanglingReference, i, s.UserID)
		}
		product, ok := products[s.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: session %d product %s", ErrDanglingReference, i, s.ProductID)
		}
		table.Rows = append(table.Rows, Record{
			UserID:                 user.ID,
			FirstName:              user.FirstName,
			LastName:               user.LastName,
			Email:                  user.Email,
			DateOfBirth:            user.DateOfBirth.Format("2006-01-02"),
			Address:                user.Address,
			City:                   user.City,
			State:                  user.State,
			PostalCode:             user.PostalCode,
			Country:                user.Country,
			Company:                user.Company,
			JobTitle:               user.JobTitle,
			IPAddress:              s.IPAddress,
			IsActive:               user.IsActive,
			LoginTime:              s.LoginTime,
			LogoutTime:             s.LogoutTime,
			AccountCreated:         user.AccountCreated,
			AccountUpdated:         user.AccountUpdated,
			AccountDeleted:         user.AccountDeleted,
			SessionDurationMinutes: round2(s.LogoutTime.Sub(s.LoginTime).Minutes()),
			ProductID:              product.ID,
			ProductName:            product.Name,
			ProductCategory:        product.Category,
			Price:                  product.Price,
			PurchaseStatus:         s.PurchaseStatus,
			UserAgent:              s.UserAgent,
		})
	}
	return table, nil
}

// Summarize computes the informational run statistics.
func (t *Table) Summarize() Summary {
	s := Summary{Rows: len(t.Rows)}
	var total float64
	for _, r := range t.Rows {
		if r.IsActive {
			s.ActiveUsers++
		}
		total += r.Price
	}
	if len(t.Rows) > 0 {
		s.AveragePrice = round2(total / float64(len(t.Rows)))
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
