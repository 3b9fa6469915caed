package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

var (
	// ErrBadRowCount indicates a non-positive requested row count.
	ErrBadRowCount = errors.New("generator: row count must be positive")
	// ErrBadWindow indicates an inverted or empty generation time window.
	ErrBadWindow = errors.New("generator: time window is inverted")
)

// productCatalog mirrors the fixed synthetic product line.
var productCatalog = []string{
	"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta",
	"Iota", "Kappa", "Lambda", "Mu", "Nu", "Xi", "Omicron", "Pi", "Rho",
	"Sigma", "Tau", "Upsilon", "Phi", "Chi", "Psi", "Omega",
}

var productCategories = []string{"software", "hardware", "subscription", "service"}

var purchaseStatuses = []string{"completed", "pending", "failed"}

// Config controls one generation run.
type Config struct {
	Rows        int
	Seed        uint64
	WindowStart time.Time
	WindowEnd   time.Time

	// Users and Products size the dimension pools. Zero means derive
	// from Rows so the 1-N session relationships stay realistic.
	Users    int
	Products int
}

// Generator produces one batch of internally consistent synthetic records.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// New validates the configuration and constructs a Generator. Invalid
// row counts or windows fail here, before any generation begins.
func New(cfg Config, logger *slog.Logger) (*Generator, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadRowCount, cfg.Rows)
	}
	if !cfg.WindowStart.Before(cfg.WindowEnd) {
		return nil, fmt.Errorf("%w: %s..%s", ErrBadWindow, cfg.WindowStart, cfg.WindowEnd)
	}
	if cfg.Users <= 0 {
		cfg.Users = cfg.Rows / 4
		if cfg.Users < 1 {
			cfg.Users = 1
		}
	}
	if cfg.Products <= 0 {
		cfg.Products = len(productCatalog)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, logger: logger}, nil
}

// Generate produces exactly cfg.Rows sessions drawing from freshly
// generated user and product pools. Identifiers and user emails are
// unique within the batch; all timestamps fall inside the window and
// are internally ordered. Deterministic under a fixed seed.
func (g *Generator) Generate(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	faker := gofakeit.New(g.cfg.Seed)
	ids := make(map[string]struct{}, g.cfg.Users+g.cfg.Products)

	users := make([]User, 0, g.cfg.Users)
	emails := make(map[string]int, g.cfg.Users)
	for i := 0; i < g.cfg.Users; i++ {
		users = append(users, g.newUser(faker, ids, emails))
	}

	products := make([]Product, 0, g.cfg.Products)
	for i := 0; i < g.cfg.Products; i++ {
		products = append(products, Product{
			ID:       uniqueID(faker, ids),
			Name:     productCatalog[i%len(productCatalog)],
			Category: faker.RandomString(productCategories),
			Price:    round2(faker.Price(100, 5000)),
		})
	}

	// Login times are kept unique per user at second granularity so the
	// derived transaction identifiers cannot collide downstream.
	logins := make(map[string]map[int64]struct{}, g.cfg.Users)

	sessions := make([]Session, 0, g.cfg.Rows)
	for i := 0; i < g.cfg.Rows; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Batch{}, err
			}
		}
		user := users[faker.Number(0, len(users)-1)]
		product := products[faker.Number(0, len(products)-1)]
		sessions = append(sessions, g.newSession(faker, user, product, logins))
	}

	g.logger.Info("generated batch",
		slog.Int("sessions", len(sessions)),
		slog.Int("users", len(users)),
		slog.Int("products", len(products)),
	)
	return Batch{Users: users, Products: products, Sessions: sessions}, nil
}

func (g *Generator) newUser(faker *gofakeit.Faker, ids map[string]struct{}, emails map[string]int) User {
	first := faker.FirstName()
	last := faker.LastName()

	isActive := faker.Number(1, 100) <= 80
	created := faker.DateRange(g.cfg.WindowStart, g.cfg.WindowEnd).Truncate(time.Second)
	updated := faker.DateRange(created, g.cfg.WindowEnd).Truncate(time.Second)
	var deleted *time.Time
	if !isActive {
		// A deleted account still keeps at least an hour of lifetime
		// (window permitting) so its sessions have room to land.
		floor := updated
		if lived := created.Add(time.Hour); floor.Before(lived) {
			floor = lived
		}
		if floor.After(g.cfg.WindowEnd) {
			floor = g.cfg.WindowEnd
		}
		d := faker.DateRange(floor, g.cfg.WindowEnd).Truncate(time.Second)
		deleted = &d
	}

	// Ages are anchored to the window end so a fixed seed reproduces
	// the exact same batch regardless of when the run happens.
	asOf := g.cfg.WindowEnd
	return User{
		ID:             uniqueID(faker, ids),
		FirstName:      first,
		LastName:       last,
		Email:          uniqueEmail(first, last, emails),
		DateOfBirth:    faker.DateRange(asOf.AddDate(-72, 0, 0), asOf.AddDate(-18, 0, 0)),
		Address:        faker.Street(),
		City:           faker.City(),
		State:          faker.State(),
		PostalCode:     faker.Zip(),
		Country:        faker.Country(),
		Company:        faker.Company(),
		JobTitle:       faker.JobTitle(),
		IsActive:       isActive,
		AccountCreated: created,
		AccountUpdated: updated,
		AccountDeleted: deleted,
	}
}

func (g *Generator) newSession(faker *gofakeit.Faker, user User, product Product, logins map[string]map[int64]struct{}) Session {
	end := g.cfg.WindowEnd
	if user.AccountDeleted != nil && user.AccountDeleted.Before(end) {
		end = *user.AccountDeleted
	}
	start := user.AccountCreated
	if end.Before(start) {
		end = start
	}

	taken := logins[user.ID]
	if taken == nil {
		taken = make(map[int64]struct{})
		logins[user.ID] = taken
	}
	// Second granularity keeps timestamps exact across columnar
	// round-trips and matches the transaction identifier format. The
	// collision walk wraps at the account boundary so logins stay
	// between creation and deletion (or window end).
	login := faker.DateRange(start, end).Truncate(time.Second)
	for left := end.Unix() - start.Unix(); left >= 0; left-- {
		if _, dup := taken[login.Unix()]; !dup {
			break
		}
		login = login.Add(time.Second)
		if login.After(end) {
			login = start
		}
	}
	// A lifetime with every second already booked spills past the
	// boundary.
	for {
		if _, dup := taken[login.Unix()]; !dup {
			break
		}
		login = login.Add(time.Second)
	}
	taken[login.Unix()] = struct{}{}

	logout := login.Add(time.Duration(faker.Float64Range(0.5, 4) * float64(time.Hour)).Truncate(time.Second))

	return Session{
		UserID:         user.ID,
		ProductID:      product.ID,
		IPAddress:      faker.IPv4Address(),
		LoginTime:      login,
		LogoutTime:     logout,
		PurchaseStatus: faker.RandomString(purchaseStatuses),
		UserAgent:      faker.UserAgent(),
	}
}

func uniqueID(faker *gofakeit.Faker, ids map[string]struct{}) string {
	for {
		id := faker.UUID()
		if _, dup := ids[id]; !dup {
			ids[id] = struct{}{}
			return id
		}
	}
}

func uniqueEmail(first, last string, emails map[string]int) string {
	base := fmt.Sprintf("%s_%s@example.com", first, last)
	n := emails[base]
	emails[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%s%d@example.com", first, last, n+1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
