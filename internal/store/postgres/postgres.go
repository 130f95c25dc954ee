package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

func init() {
	store.Register(config.DriverPostgres, Open)
}

// Connect opens and verifies a Postgres connection with OTEL instrumentation.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	// Register the OTel-instrumented driver wrapping lib/pq.
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("registering otel driver: %w", err)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Open is the store.Driver for "postgres".
func Open(ctx context.Context, cfg config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(db, clk), nil
}

// New returns repositories backed by db. Migrate applies the embedded schema.
func New(db *sqlx.DB, clk clock.Clock) *store.Repositories {
	r := repositories(db, clk)
	r.InTx = func(ctx context.Context, fn store.TxFunc) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(ctx, repositories(tx, clk)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	}
	r.Migrate = func(ctx context.Context) error { return Migrate(ctx, db.DB) }
	r.Closer = db
	r.Ping = db.PingContext
	return r
}

// repositories binds every repo to q, which is either the pool or a transaction.
func repositories(q sqlx.ExtContext, clk clock.Clock) *store.Repositories {
	return &store.Repositories{
		Auctions:       NewAuctionRepo(q, clk),
		Lots:           NewLotRepo(q, clk),
		Clients:        NewClientRepo(q, clk),
		Bids:           &BidRepo{db: q},
		Favorites:      &FavoriteRepo{db: q, clk: clk},
		CommissionBids: &CommissionBidRepo{db: q, clk: clk},
	}
}

const uniqueViolation = "23505"

// wrapErr maps driver errors onto store sentinels and adds context.
func wrapErr(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	var pqErr *pq.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", msg, store.ErrNotFound)
	case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		return fmt.Errorf("%s: %w (%s)", msg, store.ErrDuplicate, pqErr.Constraint)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// expectOne turns a zero-row write into notFound.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// conditional distinguishes a missing row from a failed precondition after a
// guarded UPDATE matched nothing. table is always a package constant.
func conditional(ctx context.Context, q sqlx.QueryerContext, res sql.Result, table, id, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if !exists {
		return fmt.Errorf("%s %s: %w", op, id, store.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, id, store.ErrConflict)
}

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

// add appends a condition; each ? in cond consumes one argument.
func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func likeFold(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func rebind(q string) string { return sqlx.Rebind(sqlx.DOLLAR, q) }
