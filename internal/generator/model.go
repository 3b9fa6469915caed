package generator

import "time"

// User is a dimension entity generated once per run and referenced by
// sessions. Users are immutable after generation.
type User struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	DateOfBirth time.Time
	Address     string
	City        string
	State       string
	PostalCode  string
	Country     string
	Company     string
	JobTitle    string
	IsActive    bool

	AccountCreated time.Time
	AccountUpdated time.Time
	// AccountDeleted is set only for inactive users, after AccountUpdated.
	AccountDeleted *time.Time
}

// Product is a dimension entity referenced by sessions.
type Product struct {
	ID       string
	Name     string
	Category string
	Price    float64
}

// Session is a fact record tying a user to a product purchase attempt.
// UserID and ProductID always resolve within the batch that produced them.
type Session struct {
	UserID         string
	ProductID      string
	IPAddress      string
	LoginTime      time.Time
	LogoutTime     time.Time
	PurchaseStatus string
	UserAgent      string
}

// Batch holds one run's generated entities.
type Batch struct {
	Users    []User
	Products []Product
	Sessions []Session
}
