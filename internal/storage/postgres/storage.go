package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/domain/repository"
)

// dbPool is the subset of pgxpool.Pool used by the storage; declared as an
// interface so tests can substitute a pgxmock pool.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   dbPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type artworkRepository struct {
	storage *Storage
}

type artistRepository struct {
	storage *Storage
}

type settlementRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Artworks() repository.ArtworkRepository {
	return &artworkRepository{storage: s}
}

func (s *Storage) Artists() repository.ArtistRepository {
	return &artistRepository{storage: s}
}

func (s *Storage) Settlements() repository.SettlementRepository {
	return &settlementRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS artists (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            total_sales INTEGER NOT NULL DEFAULT 0,
            total_revenue NUMERIC(12,2) NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS artworks (
            id SERIAL PRIMARY KEY,
            artist_id BIGINT NOT NULL REFERENCES artists(id),
            title TEXT NOT NULL,
            price NUMERIC(12,2) NOT NULL,
            currency TEXT NOT NULL DEFAULT 'EUR',
            is_available BOOLEAN NOT NULL DEFAULT TRUE,
            status TEXT NOT NULL DEFAULT 'AVAILABLE',
            sold_count INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            user_id BIGINT NOT NULL REFERENCES users(id),
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            currency TEXT NOT NULL,
            subtotal NUMERIC(12,2) NOT NULL,
            shipping_cost NUMERIC(12,2) NOT NULL,
            tax NUMERIC(12,2) NOT NULL,
            total NUMERIC(12,2) NOT NULL,
            card_session_id TEXT UNIQUE,
            wallet_order_id TEXT UNIQUE,
            shipping_name TEXT NOT NULL DEFAULT '',
            shipping_street TEXT NOT NULL DEFAULT '',
            shipping_city TEXT NOT NULL DEFAULT '',
            shipping_zip TEXT NOT NULL DEFAULT '',
            shipping_country TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            artwork_id BIGINT NOT NULL REFERENCES artworks(id),
            quantity INTEGER NOT NULL DEFAULT 1,
            unit_price NUMERIC(12,2) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS sales (
            id SERIAL PRIMARY KEY,
            transaction_id TEXT UNIQUE NOT NULL,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            order_item_id BIGINT UNIQUE NOT NULL REFERENCES order_items(id),
            artwork_id BIGINT NOT NULL REFERENCES artworks(id),
            artist_id BIGINT NOT NULL REFERENCES artists(id),
            price NUMERIC(12,2) NOT NULL,
            gallery_commission NUMERIC(12,2) NOT NULL,
            artist_earning NUMERIC(12,2) NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_order ON sales(order_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, number, user_id, status, payment_status, currency,
       subtotal, shipping_cost, tax, total, card_session_id, wallet_order_id,
       shipping_name, shipping_street, shipping_city, shipping_zip, shipping_country,
       created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &o.PaymentStatus, &o.Currency,
		&o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total, &o.CardSessionID, &o.WalletOrderID,
		&o.ShippingName, &o.ShippingStreet, &o.ShippingCity, &o.ShippingZip, &o.ShippingCountry,
		&o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders
            (number, user_id, status, payment_status, currency, subtotal, shipping_cost, tax, total,
             shipping_name, shipping_street, shipping_city, shipping_zip, shipping_country)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
            RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, insertOrder,
			order.Number, order.UserID, order.Status, order.PaymentStatus, order.Currency,
			order.Subtotal, order.ShippingCost, order.Tax, order.Total,
			order.ShippingName, order.ShippingStreet, order.ShippingCity, order.ShippingZip, order.ShippingCountry,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		const insertItem = `INSERT INTO order_items (order_id, artwork_id, quantity, unit_price)
            VALUES ($1,$2,$3,$4) RETURNING id`
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			if err := tx.QueryRow(ctx, insertItem, order.ID, item.ArtworkID, item.Quantity, item.UnitPrice).Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE number=$1`, number)
}

func (r *orderRepository) GetByProviderRef(ctx context.Context, provider model.Provider, ref string) (*model.Order, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+column+`=$1`, ref)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	var order model.Order
	err := scanOrder(r.storage.pool.QueryRow(ctx, query, arg), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *model.Order) error {
	const query = `SELECT id, order_id, artwork_id, quantity, unit_price
                   FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ArtworkID, &item.Quantity, &item.UnitPrice); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// BindProviderSession sets the provider reference exactly once. The order
// row is locked so two concurrent initiations cannot both win.
func (r *orderRepository) BindProviderSession(ctx context.Context, orderID int64, provider model.Provider, ref string) error {
	column, err := providerColumn(provider)
	if err != nil {
		return err
	}

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const lockQuery = `SELECT card_session_id, wallet_order_id FROM orders WHERE id=$1 FOR UPDATE`
		var cardRef, walletRef *string
		if err := tx.QueryRow(ctx, lockQuery, orderID).Scan(&cardRef, &walletRef); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrOrderNotFound
			}
			return err
		}

		current, other := cardRef, walletRef
		if provider == model.ProviderWallet {
			current, other = walletRef, cardRef
		}

		if other != nil {
			return domainErrors.ErrSessionAlreadyBound
		}
		if current != nil {
			if *current == ref {
				return nil
			}
			return domainErrors.ErrSessionAlreadyBound
		}

		_, err := tx.Exec(ctx, `UPDATE orders SET `+column+`=$1, updated_at=NOW() WHERE id=$2`, ref, orderID)
		return err
	})
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, status, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) SelectStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE payment_status='PENDING'
                AND (card_session_id IS NOT NULL OR wallet_order_id IS NOT NULL)
                AND updated_at < $1
              ORDER BY updated_at
              LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func providerColumn(provider model.Provider) (string, error) {
	switch provider {
	case model.ProviderCard:
		return "card_session_id", nil
	case model.ProviderWallet:
		return "wallet_order_id", nil
	default:
		return "", fmt.Errorf("unknown provider %q", provider)
	}
}

// --- ArtworkRepository implementation ---

const artworkColumns = `id, artist_id, title, price, currency, is_available, status, sold_count, created_at`

func scanArtwork(row pgx.Row, a *model.Artwork) error {
	return row.Scan(&a.ID, &a.ArtistID, &a.Title, &a.Price, &a.Currency,
		&a.IsAvailable, &a.Status, &a.SoldCount, &a.CreatedAt)
}

func (r *artworkRepository) GetByID(ctx context.Context, id int64) (*model.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE id=$1`
	var a model.Artwork
	if err := scanArtwork(r.storage.pool.QueryRow(ctx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *artworkRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE id = ANY($1)`
	rows, err := r.storage.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Artwork
	for rows.Next() {
		var a model.Artwork
		if err := scanArtwork(rows, &a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// --- ArtistRepository implementation ---

func (r *artistRepository) GetStats(ctx context.Context, artistID int64) (*model.Artist, error) {
	const query = `SELECT id, name, total_sales, total_revenue FROM artists WHERE id=$1`
	var a model.Artist
	err := r.storage.pool.QueryRow(ctx, query, artistID).Scan(&a.ID, &a.Name, &a.TotalSales, &a.TotalRevenue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// --- SettlementRepository implementation ---

// lockPaymentStatus locks the order row and returns its current payment
// state. Every settlement transition re-checks state under this lock so
// concurrent deliveries for the same order serialize.
func lockPaymentStatus(ctx context.Context, tx pgx.Tx, orderID int64) (model.PaymentStatus, string, error) {
	const query = `SELECT payment_status, number FROM orders WHERE id=$1 FOR UPDATE`
	var status model.PaymentStatus
	var number string
	if err := tx.QueryRow(ctx, query, orderID).Scan(&status, &number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", domainErrors.ErrOrderNotFound
		}
		return "", "", err
	}
	return status, number, nil
}

func (r *settlementRepository) ApplySuccess(ctx context.Context, orderID int64, sales []model.Sale) (*model.SettlementResult, error) {
	var result *model.SettlementResult
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		status, number, err := lockPaymentStatus(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if status == model.PaymentStatusCompleted {
			result = &model.SettlementResult{OrderID: orderID, OrderNumber: number, PaymentStatus: status, AlreadySettled: true}
			return nil
		}
		if !status.CanTransitionTo(model.PaymentStatusCompleted) {
			return domainErrors.ErrInvalidTransition
		}

		const updateOrder = `UPDATE orders SET payment_status=$1, status=$2, updated_at=NOW() WHERE id=$3`
		if _, err := tx.Exec(ctx, updateOrder, model.PaymentStatusCompleted, model.OrderStatusProcessing, orderID); err != nil {
			return err
		}

		// artist_id comes from the artwork row so the sale snapshot stays
		// consistent even if the listing is later reassigned.
		const insertSale = `INSERT INTO sales
            (transaction_id, order_id, order_item_id, artwork_id, artist_id, price, gallery_commission, artist_earning, status)
            SELECT $1, $2, $3, $4, a.artist_id, $5, $6, $7, $8 FROM artworks a WHERE a.id=$4`
		const sellArtwork = `UPDATE artworks
            SET is_available=FALSE, status='SOLD', sold_count=sold_count+1 WHERE id=$1`
		const creditArtist = `UPDATE artists
            SET total_sales=total_sales+1, total_revenue=total_revenue+$2
            WHERE id=(SELECT artist_id FROM artworks WHERE id=$1)`

		txIDs := make([]string, 0, len(sales))
		for _, sale := range sales {
			if _, err := tx.Exec(ctx, insertSale,
				sale.TransactionID, orderID, sale.OrderItemID, sale.ArtworkID,
				sale.Price, sale.GalleryCommission, sale.ArtistEarning, model.SaleStatusCompleted); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23505" {
					return domainErrors.ErrSettlementConflict
				}
				return err
			}
			if _, err := tx.Exec(ctx, sellArtwork, sale.ArtworkID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, creditArtist, sale.ArtworkID, sale.ArtistEarning); err != nil {
				return err
			}
			txIDs = append(txIDs, sale.TransactionID)
		}

		result = &model.SettlementResult{
			OrderID:       orderID,
			OrderNumber:   number,
			PaymentStatus: model.PaymentStatusCompleted,
			SaleTxIDs:     txIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *settlementRepository) ApplyFailure(ctx context.Context, orderID int64) (*model.SettlementResult, error) {
	var result *model.SettlementResult
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		status, number, err := lockPaymentStatus(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if status == model.PaymentStatusFailed {
			result = &model.SettlementResult{OrderID: orderID, OrderNumber: number, PaymentStatus: status, AlreadySettled: true}
			return nil
		}
		if !status.CanTransitionTo(model.PaymentStatusFailed) {
			return domainErrors.ErrInvalidTransition
		}

		const query = `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2`
		if _, err := tx.Exec(ctx, query, model.PaymentStatusFailed, orderID); err != nil {
			return err
		}
		result = &model.SettlementResult{OrderID: orderID, OrderNumber: number, PaymentStatus: model.PaymentStatusFailed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *settlementRepository) ApplyRefund(ctx context.Context, orderID int64) (*model.SettlementResult, error) {
	var result *model.SettlementResult
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		status, number, err := lockPaymentStatus(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if status == model.PaymentStatusRefunded {
			result = &model.SettlementResult{OrderID: orderID, OrderNumber: number, PaymentStatus: status, AlreadySettled: true}
			return nil
		}
		if !status.CanTransitionTo(model.PaymentStatusRefunded) {
			return domainErrors.ErrInvalidTransition
		}

		const updateOrder = `UPDATE orders SET payment_status=$1, status=$2, updated_at=NOW() WHERE id=$3`
		if _, err := tx.Exec(ctx, updateOrder, model.PaymentStatusRefunded, model.OrderStatusCancelled, orderID); err != nil {
			return err
		}
		// Artwork availability is intentionally left untouched: a refunded
		// original stays SOLD until the gallery relists it.
		const refundSales = `UPDATE sales SET status=$1 WHERE order_id=$2`
		if _, err := tx.Exec(ctx, refundSales, model.SaleStatusRefunded, orderID); err != nil {
			return err
		}
		result = &model.SettlementResult{OrderID: orderID, OrderNumber: number, PaymentStatus: model.PaymentStatusRefunded}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *settlementRepository) ListSalesByOrder(ctx context.Context, orderID int64) ([]model.Sale, error) {
	const query = `SELECT id, transaction_id, order_id, order_item_id, artwork_id, artist_id,
                          price, gallery_commission, artist_earning, status, created_at
                   FROM sales WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Sale
	for rows.Next() {
		var s model.Sale
		if err := rows.Scan(&s.ID, &s.TransactionID, &s.OrderID, &s.OrderItemID, &s.ArtworkID, &s.ArtistID,
			&s.Price, &s.GalleryCommission, &s.ArtistEarning, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
