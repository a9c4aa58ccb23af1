package properties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository reads and updates the property catalogue (catalog.db)
type Repository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// propertyColumns joins each property with its optional region
const propertyColumns = `p.id, p.address, p.price, p.size_sqm, p.property_type, p.updated_at,
r.id, r.name, r.code, r.avg_price_per_sqm, r.avg_rent, r.updated_at`

const propertyFrom = ` FROM properties p LEFT JOIN regions r ON r.id = p.region_id`

// NewRepository creates a new property repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "property").Logger(),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*Property, error) {
	var (
		p               Property
		updatedAt       int64
		regionID        sql.NullInt64
		regionName      sql.NullString
		regionCode      sql.NullString
		regionAvgPrice  decimal.NullDecimal
		regionAvgRent   decimal.NullDecimal
		regionUpdatedAt sql.NullInt64
	)

	err := row.Scan(
		&p.ID, &p.Address, &p.Price, &p.SizeSqm, &p.PropertyType, &updatedAt,
		&regionID, &regionName, &regionCode, &regionAvgPrice, &regionAvgRent, &regionUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if regionID.Valid {
		region := &Region{
			ID:        regionID.Int64,
			Name:      regionName.String,
			Code:      regionCode.String,
			UpdatedAt: time.Unix(regionUpdatedAt.Int64, 0).UTC(),
		}
		if regionAvgPrice.Valid {
			v := regionAvgPrice.Decimal
			region.AvgPricePerSqm = &v
		}
		if regionAvgRent.Valid {
			v := regionAvgRent.Decimal
			region.AvgRent = &v
		}
		p.Region = region
	}

	return &p, nil
}

// GetByID returns a property with its region
func (r *Repository) GetByID(ctx context.Context, id int64) (*Property, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+propertyColumns+propertyFrom+" WHERE p.id = ?", id)

	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property %d: %w", id, err)
	}
	return p, nil
}

// GetByIDs returns properties in the order requested.
// A missing id fails the whole call with ErrNotFound.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*Property, error) {
	if len(ids) == 0 {
		return []*Property{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+propertyColumns+propertyFrom+" WHERE p.id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*Property, len(ids))
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate properties: %w", err)
	}

	out := make([]*Property, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdatePrice sets a new asking price
func (r *Repository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE properties SET price = ?, updated_at = ? WHERE id = ?",
		price.String(), r.now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update price of property %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	return nil
}

func nullableDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// CreateRegion inserts a region and sets its ID
func (r *Repository) CreateRegion(ctx context.Context, region *Region) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO regions (name, code, avg_price_per_sqm, avg_rent, updated_at) VALUES (?, ?, ?, ?, ?)`,
		region.Name, region.Code, nullableDecimal(region.AvgPricePerSqm), nullableDecimal(region.AvgRent), r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create region %s: %w", region.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get region id: %w", err)
	}
	region.ID = id
	return nil
}

// CreateProperty inserts a property and sets its ID. Only the region's ID is read.
func (r *Repository) CreateProperty(ctx context.Context, p *Property) error {
	var regionID interface{}
	if p.Region != nil {
		regionID = p.Region.ID
	}
	propertyType := p.PropertyType
	if propertyType == "" {
		propertyType = "apartment"
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO properties (address, price, size_sqm, property_type, region_id, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Address, p.Price.String(), p.SizeSqm.String(), propertyType, regionID, r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get property id: %w", err)
	}
	p.ID = id
	p.PropertyType = propertyType
	return nil
}

// Count returns the number of catalogued properties
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return n, nil
}
