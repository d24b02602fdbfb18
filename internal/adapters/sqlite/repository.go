// Package sqlite persists buy-order and stop intents. Prices and volumes
// are stored as decimal strings to keep the exact numeric policy of the
// domain types through the round trip.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.BuyOrderRepository and ports.StopRepository
// interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/hedgeguard.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS buy_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		position_side TEXT NOT NULL,
		price TEXT NOT NULL,
		volume TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stops (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		position_side TEXT NOT NULL,
		trigger_price TEXT NOT NULL,
		volume TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_buy_orders_symbol_status ON buy_orders (symbol, status);
	CREATE INDEX IF NOT EXISTS idx_stops_symbol_status ON stops (symbol, status);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- BuyOrderRepository Implementation ---

// CreateBuyOrder saves a new buy order and returns its assigned ID.
func (r *Repository) CreateBuyOrder(ctx context.Context, order *domain.BuyOrder) (int64, error) {
	const query = `
	INSERT INTO buy_orders (symbol, position_side, price, volume, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	result, err := r.db.ExecContext(ctx, query,
		order.Symbol, string(order.PositionSide), order.Price.String(), order.Volume.String(),
		string(order.Status), createdAt, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert buy order for symbol %s: %w", order.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted buy order ID: %w", err)
	}
	return id, nil
}

// FindActiveBuyOrders retrieves active buy orders for a symbol, oldest first.
func (r *Repository) FindActiveBuyOrders(ctx context.Context, symbol string) ([]*domain.BuyOrder, error) {
	const query = `
	SELECT id, symbol, position_side, price, volume, status, created_at, updated_at
	FROM buy_orders WHERE symbol = ? AND status = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, string(domain.OrderStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query active buy orders for %s: %w", symbol, err)
	}
	defer rows.Close()

	var orders []*domain.BuyOrder
	for rows.Next() {
		order, err := scanBuyOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// FindBuyOrderByID retrieves a buy order by its ID. Returns nil, nil if not found.
func (r *Repository) FindBuyOrderByID(ctx context.Context, id int64) (*domain.BuyOrder, error) {
	const query = `
	SELECT id, symbol, position_side, price, volume, status, created_at, updated_at
	FROM buy_orders WHERE id = ?`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query buy order %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanBuyOrder(rows)
}

// UpdateBuyOrderStatus moves a buy order to a new lifecycle state.
func (r *Repository) UpdateBuyOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	const query = `UPDATE buy_orders SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update buy order %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of buy order %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("buy order %d: %w", id, ports.ErrNotFound)
	}
	return nil
}

// --- StopRepository Implementation ---

// CreateStop saves a new stop and returns its assigned ID.
func (r *Repository) CreateStop(ctx context.Context, stop *domain.Stop) (int64, error) {
	const query = `
	INSERT INTO stops (symbol, position_side, trigger_price, volume, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	createdAt := stop.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	result, err := r.db.ExecContext(ctx, query,
		stop.Symbol, string(stop.PositionSide), stop.TriggerPrice.String(), stop.Volume.String(),
		string(stop.Status), createdAt, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert stop for symbol %s: %w", stop.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted stop ID: %w", err)
	}
	return id, nil
}

// FindActiveStops retrieves active stops for a symbol, oldest first.
func (r *Repository) FindActiveStops(ctx context.Context, symbol string) ([]*domain.Stop, error) {
	const query = `
	SELECT id, symbol, position_side, trigger_price, volume, status, created_at, updated_at
	FROM stops WHERE symbol = ? AND status = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, string(domain.OrderStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query active stops for %s: %w", symbol, err)
	}
	defer rows.Close()

	var stops []*domain.Stop
	for rows.Next() {
		stop, err := scanStop(rows)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}

// FindStopByID retrieves a stop by its ID. Returns nil, nil if not found.
func (r *Repository) FindStopByID(ctx context.Context, id int64) (*domain.Stop, error) {
	const query = `
	SELECT id, symbol, position_side, trigger_price, volume, status, created_at, updated_at
	FROM stops WHERE id = ?`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query stop %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanStop(rows)
}

// UpdateStopStatus moves a stop to a new lifecycle state.
func (r *Repository) UpdateStopStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	const query = `UPDATE stops SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update stop %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of stop %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("stop %d: %w", id, ports.ErrNotFound)
	}
	return nil
}

// FixationCount returns the number of filled stops recorded for a symbol
// and side, the figure the PnL-fixation check budgets against.
// Implements checks.FixationSource.
func (r *Repository) FixationCount(ctx context.Context, symbol string, side domain.Side) (int, error) {
	const query = `SELECT COUNT(*) FROM stops WHERE symbol = ? AND position_side = ? AND status = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, symbol, string(side), string(domain.OrderStatusFilled)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count filled stops for %s %s: %w", symbol, side, err)
	}
	return count, nil
}

// --- Row scanning helpers ---

func scanBuyOrder(rows *sql.Rows) (*domain.BuyOrder, error) {
	var (
		order     domain.BuyOrder
		side      string
		priceStr  string
		volumeStr string
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := rows.Scan(&order.ID, &order.Symbol, &side, &priceStr, &volumeStr, &status, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan buy order row: %w", err)
	}

	price, err := domain.NewPriceFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored buy order price: %w", err)
	}
	volume, err := domain.NewCoinAmountFromString(volumeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored buy order volume: %w", err)
	}

	order.PositionSide = domain.Side(side)
	order.Price = price
	order.Volume = volume
	order.Status = domain.OrderStatus(status)
	order.CreatedAt = createdAt
	order.UpdatedAt = updatedAt
	return &order, nil
}

func scanStop(rows *sql.Rows) (*domain.Stop, error) {
	var (
		stop      domain.Stop
		side      string
		priceStr  string
		volumeStr string
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := rows.Scan(&stop.ID, &stop.Symbol, &side, &priceStr, &volumeStr, &status, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan stop row: %w", err)
	}

	price, err := domain.NewPriceFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored stop trigger price: %w", err)
	}
	volume, err := domain.NewCoinAmountFromString(volumeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored stop volume: %w", err)
	}

	stop.PositionSide = domain.Side(side)
	stop.TriggerPrice = price
	stop.Volume = volume
	stop.Status = domain.OrderStatus(status)
	stop.CreatedAt = createdAt
	stop.UpdatedAt = updatedAt
	return &stop, nil
}
