package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gethuk-security/api-security-lab/internal/challenge"
)

// PasswordHasher lets the seed hash the sample passwords without the store
// depending on the credential package directly.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

type seedUser struct {
	username, email, password           string
	firstName, lastName, phone, address string
	ssn, cardLast4                      string
	isAdmin, isPremium                  int
	balance, salary                     float64
	creditScore                         int
	notes                               string
}

// seedUsers is the canonical roster. alice and bob drive the BOLA walkthroughs,
// admin is the only real administrator, and weakpass exists to be brute-forced.
var seedUsers = []seedUser{
	{"alice", "alice@example.com", "alice123", "Alice", "Johnson", "555-0101",
		"123 Main St, City, State 12345", "123-45-6789", "4242", 0, 0,
		100.00, 75000.00, 720, "Regular user account for testing"},
	{"bob", "bob@example.com", "bob123", "Bob", "Smith", "555-0102",
		"456 Oak Ave, City, State 12345", "987-65-4321", "5555", 0, 0,
		50.00, 65000.00, 680, "Regular user account"},
	{"charlie", "charlie@example.com", "charlie123", "Charlie", "Brown", "555-0103",
		"789 Pine Rd, City, State 12345", "456-78-9012", "3782", 0, 1,
		500.00, 95000.00, 780, "Premium user account"},
	{"admin", "admin@example.com", "admin123", "Admin", "User", "555-0100",
		"1 Admin Plaza, City, State 12345", "000-00-0000", "0000", 1, 1,
		1000.00, 120000.00, 850, "Administrator account with full privileges"},
	{"weakpass", "weakpass@example.com", "123456", "Weak", "Password", "555-0104",
		"999 Insecure Ln, City, State 12345", "111-11-1111", "1111", 0, 0,
		10.00, 45000.00, 600, "User with weak password for brute force testing"},
}

type seedProduct struct {
	name, description    string
	price                float64
	stock                int
	category, imageURL   string
}

var seedProducts = []seedProduct{
	{`Laptop Pro 15"`, "High-performance laptop", 1299.99, 50, "Electronics", "/images/laptop.jpg"},
	{"Wireless Mouse", "Ergonomic wireless mouse", 29.99, 200, "Electronics", "/images/mouse.jpg"},
	{"Mechanical Keyboard", "RGB mechanical keyboard", 89.99, 100, "Electronics", "/images/keyboard.jpg"},
	{"USB-C Hub", "7-in-1 USB-C hub", 49.99, 150, "Electronics", "/images/hub.jpg"},
	{`4K Monitor 27"`, "Ultra HD monitor", 399.99, 75, "Electronics", "/images/monitor.jpg"},
	{"Webcam HD", "1080p webcam", 79.99, 120, "Electronics", "/images/webcam.jpg"},
	{"Headphones Pro", "Noise-cancelling headphones", 249.99, 80, "Audio", "/images/headphones.jpg"},
	{"Desk Lamp LED", "Adjustable LED desk lamp", 39.99, 180, "Office", "/images/lamp.jpg"},
	{"Office Chair", "Ergonomic office chair", 299.99, 40, "Furniture", "/images/chair.jpg"},
	{"Standing Desk", "Adjustable standing desk", 499.99, 30, "Furniture", "/images/desk.jpg"},
}

type seedOrder struct {
	userID, productID, quantity int
	total                       float64
	status, address             string
}

var seedOrders = []seedOrder{
	{1, 1, 1, 1299.99, "delivered", "123 Main St, City, State 12345"},
	{1, 2, 2, 59.98, "shipped", "123 Main St, City, State 12345"},
	{2, 3, 1, 89.99, "pending", "456 Oak Ave, City, State 12345"},
	{3, 5, 1, 399.99, "delivered", "789 Pine Rd, City, State 12345"},
	{3, 7, 1, 249.99, "delivered", "789 Pine Rd, City, State 12345"},
}

// Seed populates the sample data. It is intended for a freshly created schema:
// the boot sequence only calls it on first run, so repeat inserts never happen
// in normal operation.
func (s *Store) Seed(ctx context.Context, hasher PasswordHasher, logger *slog.Logger) error {
	logger.Info("seeding database")

	for _, u := range seedUsers {
		hash, err := hasher.Hash(u.password)
		if err != nil {
			return fmt.Errorf("store: hashing seed password for %s: %w", u.username, err)
		}
		_, err = s.Execute(ctx,
			`INSERT INTO users (username, email, password_hash, first_name, last_name, phone, address,
			 ssn, credit_card_last4, is_admin, is_premium, account_balance, salary, credit_score, internal_notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.username, u.email, hash, u.firstName, u.lastName, u.phone, u.address,
			u.ssn, u.cardLast4, u.isAdmin, u.isPremium, u.balance, u.salary, u.creditScore, u.notes)
		if err != nil {
			return fmt.Errorf("store: seeding user %s: %w", u.username, err)
		}
	}
	logger.Info("seeded users", slog.Int("count", len(seedUsers)))

	for _, p := range seedProducts {
		_, err := s.Execute(ctx,
			`INSERT INTO products (name, description, price, stock, category, image_url)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.name, p.description, p.price, p.stock, p.category, p.imageURL)
		if err != nil {
			return fmt.Errorf("store: seeding product %s: %w", p.name, err)
		}
	}
	logger.Info("seeded products", slog.Int("count", len(seedProducts)))

	for i, o := range seedOrders {
		_, err := s.Execute(ctx,
			`INSERT INTO orders (user_id, product_id, quantity, total_amount, status, shipping_address)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			o.userID, o.productID, o.quantity, o.total, o.status, o.address)
		if err != nil {
			return fmt.Errorf("store: seeding order %d: %w", i+1, err)
		}
	}
	logger.Info("seeded orders", slog.Int("count", len(seedOrders)))

	events := []struct {
		name, description, date string
		total, available        int
		price                   float64
		maxPerUser              int
	}{
		{"Security Conference 2024", "Annual cybersecurity conference", "2024-06-15 09:00:00", 100, 100, 299.99, 4},
		{"Tech Summit", "Technology innovation summit", "2024-07-20 10:00:00", 50, 50, 199.99, 2},
	}
	for _, e := range events {
		_, err := s.Execute(ctx,
			`INSERT INTO events (name, description, date, total_tickets, available_tickets, price, max_per_user)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.name, e.description, e.date, e.total, e.available, e.price, e.maxPerUser)
		if err != nil {
			return fmt.Errorf("store: seeding event %s: %w", e.name, err)
		}
	}
	logger.Info("seeded events", slog.Int("count", len(events)))

	coupons := []struct {
		code    string
		percent int
	}{
		{"SAVE10", 10},
		{"SAVE20", 20},
		{"WELCOME50", 50},
	}
	for _, c := range coupons {
		_, err := s.Execute(ctx,
			`INSERT INTO coupons (code, discount_percent, max_uses, times_used, expires_at)
			 VALUES (?, ?, 1, 0, '2025-12-31 23:59:59')`,
			c.code, c.percent)
		if err != nil {
			return fmt.Errorf("store: seeding coupon %s: %w", c.code, err)
		}
	}
	logger.Info("seeded coupons", slog.Int("count", len(coupons)))

	for _, c := range challenge.All() {
		_, err := s.Execute(ctx,
			`INSERT INTO challenges (id, category, title, description, difficulty, flag, points, endpoint,
			 hint_1, hint_2, hint_3, solution)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Category, c.Title, c.Description, c.Difficulty, c.Flag, c.Points, c.Endpoint,
			c.Hint1, c.Hint2, c.Hint3, c.Solution)
		if err != nil {
			return fmt.Errorf("store: seeding challenge %s: %w", c.ID, err)
		}
	}
	logger.Info("seeded challenges", slog.Int("count", len(challenge.All())))

	return nil
}
