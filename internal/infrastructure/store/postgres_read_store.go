package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/lastara-storefront/internal/readmodel"
)

// ErrUnknownCollection is returned for collection names the store has no table for
var ErrUnknownCollection = errors.New("unknown read model collection")

// PostgresReadStore implements ReadStoreInterface using PostgreSQL
type PostgresReadStore struct {
	db *sql.DB
	mu sync.RWMutex // serialises Update's read-modify-write within this process
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

var tableNames = map[string]string{
	readmodel.CollectionProducts:      "read_products",
	readmodel.CollectionSlides:        "read_slides",
	readmodel.CollectionSubscriptions: "read_subscriptions",
	readmodel.CollectionOperators:     "read_operators",
	readmodel.CollectionSessions:      "operator_sessions",
}

// Set stores a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.setUnsafe(collection, data)
}

func (rs *PostgresReadStore) setUnsafe(collection string, data any) error {
	switch collection {
	case readmodel.CollectionProducts:
		return rs.setProduct(data.(*readmodel.ProductReadModel))
	case readmodel.CollectionSlides:
		return rs.setSlide(data.(*readmodel.SlideReadModel))
	case readmodel.CollectionSubscriptions:
		return rs.setSubscription(data.(*readmodel.SubscriptionReadModel))
	case readmodel.CollectionOperators:
		return rs.setOperator(data.(*readmodel.OperatorReadModel))
	case readmodel.CollectionSessions:
		return rs.setSession(data.(*readmodel.SessionReadModel))
	}
	return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.getUnsafe(collection, id)
}

func (rs *PostgresReadStore) getUnsafe(collection, id string) (any, bool, error) {
	var (
		item any
		err  error
	)
	switch collection {
	case readmodel.CollectionProducts:
		item, err = rs.getProduct(id)
	case readmodel.CollectionSlides:
		item, err = rs.getSlide(id)
	case readmodel.CollectionSubscriptions:
		item, err = scanSubscription(rs.db.QueryRow(`
			SELECT id, phone, source, created_at FROM read_subscriptions WHERE id = $1`, id))
	case readmodel.CollectionOperators:
		item, err = scanOperator(rs.db.QueryRow(operatorSelect+` WHERE id = $1`, id))
	case readmodel.CollectionSessions:
		item, err = rs.getSession(id)
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// GetAll retrieves all items in a collection, newest first where the collection has a creation time
func (rs *PostgresReadStore) GetAll(collection string) ([]any, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case readmodel.CollectionProducts:
		return rs.getAllProducts()
	case readmodel.CollectionSlides:
		return rs.getAllSlides()
	case readmodel.CollectionSubscriptions:
		return rs.getAllSubscriptions()
	case readmodel.CollectionOperators:
		return rs.getAllOperators()
	case readmodel.CollectionSessions:
		return rs.getAllSessions()
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	tableName, ok := tableNames[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if _, err := rs.db.Exec("DELETE FROM "+tableName+" WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	return nil
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, found, err := rs.getUnsafe(collection, id)
	if err != nil || !found {
		return false, err
	}
	if err := rs.setUnsafe(collection, updateFn(current)); err != nil {
		return false, err
	}
	return true, nil
}

// Product operations

const productSelect = `
	SELECT id, title, sku, description, category, purity, weight, price_per_gram, images, created_at, updated_at
	FROM read_products`

func (rs *PostgresReadStore) setProduct(p *readmodel.ProductReadModel) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	_, err = rs.db.Exec(`
		INSERT INTO read_products (id, title, sku, description, category, purity, weight, price_per_gram, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			sku = EXCLUDED.sku,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			purity = EXCLUDED.purity,
			weight = EXCLUDED.weight,
			price_per_gram = EXCLUDED.price_per_gram,
			images = EXCLUDED.images,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Title, p.SKU, p.Description, p.Category, p.Purity,
		nullFloat(p.Weight), nullFloat(p.PricePerGram), imagesJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set product: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*readmodel.ProductReadModel, error) {
	var p readmodel.ProductReadModel
	var weight, pricePerGram sql.NullFloat64
	var imagesJSON []byte
	if err := row.Scan(&p.ID, &p.Title, &p.SKU, &p.Description, &p.Category, &p.Purity,
		&weight, &pricePerGram, &imagesJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Weight = floatPtr(weight)
	p.PricePerGram = floatPtr(pricePerGram)
	if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
		return nil, fmt.Errorf("failed to decode product images: %w", err)
	}
	return &p, nil
}

func (rs *PostgresReadStore) getProduct(id string) (*readmodel.ProductReadModel, error) {
	return scanProduct(rs.db.QueryRow(productSelect+` WHERE id = $1`, id))
}

func (rs *PostgresReadStore) getAllProducts() ([]any, error) {
	rows, err := rs.db.Query(productSelect + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []any
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Slide operations

const slideSelect = `
	SELECT id, title, subtitle, button_text, button_link, image, created_at
	FROM read_slides`

func (rs *PostgresReadStore) setSlide(s *readmodel.SlideReadModel) error {
	imageJSON, err := json.Marshal(s.Image)
	if err != nil {
		return err
	}
	_, err = rs.db.Exec(`
		INSERT INTO read_slides (id, title, subtitle, button_text, button_link, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			button_text = EXCLUDED.button_text,
			button_link = EXCLUDED.button_link,
			image = EXCLUDED.image
	`, s.ID, s.Title, s.Subtitle, s.ButtonText, s.ButtonLink, imageJSON, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to set slide: %w", err)
	}
	return nil
}

func scanSlide(row rowScanner) (*readmodel.SlideReadModel, error) {
	var s readmodel.SlideReadModel
	var imageJSON []byte
	if err := row.Scan(&s.ID, &s.Title, &s.Subtitle, &s.ButtonText, &s.ButtonLink, &imageJSON, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(imageJSON, &s.Image); err != nil {
		return nil, fmt.Errorf("failed to decode slide image: %w", err)
	}
	return &s, nil
}

func (rs *PostgresReadStore) getSlide(id string) (*readmodel.SlideReadModel, error) {
	return scanSlide(rs.db.QueryRow(slideSelect+` WHERE id = $1`, id))
}

func (rs *PostgresReadStore) getAllSlides() ([]any, error) {
	rows, err := rs.db.Query(slideSelect + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}
	defer rows.Close()

	var slides []any
	for rows.Next() {
		s, err := scanSlide(rows)
		if err != nil {
			return nil, err
		}
		slides = append(slides, s)
	}
	return slides, rows.Err()
}

// Subscription operations

func (rs *PostgresReadStore) setSubscription(s *readmodel.SubscriptionReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_subscriptions (id, phone, source, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.Phone, s.Source, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	return nil
}

func scanSubscription(row rowScanner) (*readmodel.SubscriptionReadModel, error) {
	var s readmodel.SubscriptionReadModel
	if err := row.Scan(&s.ID, &s.Phone, &s.Source, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSubscriptionByPhone retrieves a subscription by phone number
func (rs *PostgresReadStore) GetSubscriptionByPhone(phone string) (*readmodel.SubscriptionReadModel, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	s, err := scanSubscription(rs.db.QueryRow(`
		SELECT id, phone, source, created_at FROM read_subscriptions WHERE phone = $1`, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (rs *PostgresReadStore) getAllSubscriptions() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, phone, source, created_at FROM read_subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []any
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Operator operations

const operatorSelect = `
	SELECT id, email, password_hash, name, role, is_active, last_login_at, created_at, updated_at
	FROM read_operators`

func (rs *PostgresReadStore) setOperator(o *readmodel.OperatorReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_operators (id, email, password_hash, name, role, is_active, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			last_login_at = EXCLUDED.last_login_at,
			updated_at = EXCLUDED.updated_at
	`, o.ID, o.Email, o.PasswordHash, o.Name, o.Role, o.IsActive, o.LastLoginAt, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set operator: %w", err)
	}
	return nil
}

func scanOperator(row rowScanner) (*readmodel.OperatorReadModel, error) {
	var o readmodel.OperatorReadModel
	var lastLogin sql.NullTime
	if err := row.Scan(&o.ID, &o.Email, &o.PasswordHash, &o.Name, &o.Role, &o.IsActive,
		&lastLogin, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		o.LastLoginAt = &lastLogin.Time
	}
	return &o, nil
}

// GetOperatorByEmail retrieves an operator by email
func (rs *PostgresReadStore) GetOperatorByEmail(email string) (*readmodel.OperatorReadModel, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	o, err := scanOperator(rs.db.QueryRow(operatorSelect+` WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (rs *PostgresReadStore) getAllOperators() ([]any, error) {
	rows, err := rs.db.Query(operatorSelect + ` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	defer rows.Close()

	var operators []any
	for rows.Next() {
		o, err := scanOperator(rows)
		if err != nil {
			return nil, err
		}
		operators = append(operators, o)
	}
	return operators, rows.Err()
}

// Session operations

func (rs *PostgresReadStore) setSession(s *readmodel.SessionReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO operator_sessions (id, operator_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			expires_at = EXCLUDED.expires_at
	`, s.ID, s.OperatorID, s.RefreshTokenHash, s.ExpiresAt, s.CreatedAt, s.IPAddress, s.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

const sessionSelect = `
	SELECT id, operator_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent
	FROM operator_sessions`

func scanSession(row rowScanner) (*readmodel.SessionReadModel, error) {
	var s readmodel.SessionReadModel
	if err := row.Scan(&s.ID, &s.OperatorID, &s.RefreshTokenHash, &s.ExpiresAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent); err != nil {
		return nil, err
	}
	return &s, nil
}

func (rs *PostgresReadStore) getSession(id string) (*readmodel.SessionReadModel, error) {
	return scanSession(rs.db.QueryRow(sessionSelect+` WHERE id = $1`, id))
}

func (rs *PostgresReadStore) getAllSessions() ([]any, error) {
	rows, err := rs.db.Query(sessionSelect + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []any
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSessionsByOperator deletes all sessions for an operator
func (rs *PostgresReadStore) DeleteSessionsByOperator(operatorID string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, err := rs.db.Exec(`DELETE FROM operator_sessions WHERE operator_id = $1`, operatorID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// DeleteExpiredSessions deletes sessions whose refresh token expired before the given time
func (rs *PostgresReadStore) DeleteExpiredSessions(before time.Time) (int64, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	res, err := rs.db.Exec(`DELETE FROM operator_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// Helper functions

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
