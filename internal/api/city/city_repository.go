package city

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/city-info-api/internal/types"
)

var _ Repository = (*PostgresCityInfoRepository)(nil)

// Repository is the sole mediator between resource operations and the
// backing store. Absence is signalled with a nil result and a nil error,
// never with an error; errors always mean the store itself failed.
//
// Mutations (Add/Update/Delete) only stage a change. Nothing reaches the
// store until Save flushes the staged set atomically.
type Repository interface {
	GetCities(ctx context.Context) ([]types.City, error)
	GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*types.City, error)
	CityExists(ctx context.Context, cityID int) (bool, error)
	GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error)
	GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error)
	AddPointOfInterestForCity(ctx context.Context, cityID int, poi *types.PointOfInterest) error
	UpdatePointOfInterestForCity(ctx context.Context, poi *types.PointOfInterest) error
	DeletePointOfInterest(ctx context.Context, poi *types.PointOfInterest) error
	DeleteCity(ctx context.Context, cityID int) error
	Save(ctx context.Context) (bool, error)
}

type changeKind int

const (
	changeAddPOI changeKind = iota
	changeUpdatePOI
	changeDeletePOI
	changeDeleteCity
)

// pendingChange is one staged mutation. For changeAddPOI the store-assigned
// id is written back through poi after the flush succeeds.
type pendingChange struct {
	kind   changeKind
	cityID int
	poi    *types.PointOfInterest
}

// PGXPool is the slice of the pgxpool.Pool surface the repository needs.
// Holding the interface instead of the concrete pool lets tests substitute
// a pgxmock pool.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresCityInfoRepository struct {
	logger *slog.Logger
	pgpool PGXPool

	mu      sync.Mutex
	pending []pendingChange
}

func NewPostgresRepository(pgpool PGXPool, logger *slog.Logger) *PostgresCityInfoRepository {
	return &PostgresCityInfoRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresCityInfoRepository) GetCities(ctx context.Context) ([]types.City, error) {
	query := `
        SELECT id, name, description
        FROM cities
        ORDER BY name
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	cities := []types.City{}
	for rows.Next() {
		var c types.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read city rows: %w", err)
	}
	return cities, nil
}

func (r *PostgresCityInfoRepository) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*types.City, error) {
	query := `
        SELECT id, name, description
        FROM cities
        WHERE id = $1
    `
	var c types.City
	if err := r.pgpool.QueryRow(ctx, query, cityID).Scan(&c.ID, &c.Name, &c.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find city: %w", err)
	}

	if includePointsOfInterest {
		pois, err := r.GetPointsOfInterestForCity(ctx, cityID)
		if err != nil {
			return nil, err
		}
		c.PointsOfInterest = pois
	}
	return &c, nil
}

func (r *PostgresCityInfoRepository) CityExists(ctx context.Context, cityID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM cities WHERE id = $1)`
	if err := r.pgpool.QueryRow(ctx, query, cityID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check city existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresCityInfoRepository) GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error) {
	query := `
        SELECT id, city_id, name, description
        FROM points_of_interest
        WHERE city_id = $1
        ORDER BY id
    `
	rows, err := r.pgpool.Query(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query points of interest: %w", err)
	}
	defer rows.Close()

	pois := []types.PointOfInterest{}
	for rows.Next() {
		var p types.PointOfInterest
		if err := rows.Scan(&p.ID, &p.CityID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan point of interest row: %w", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read point of interest rows: %w", err)
	}
	return pois, nil
}

func (r *PostgresCityInfoRepository) GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	// Both the id and the owning city must match, so an id living under a
	// different city is indistinguishable from an absent one.
	query := `
        SELECT id, city_id, name, description
        FROM points_of_interest
        WHERE id = $1 AND city_id = $2
    `
	var p types.PointOfInterest
	if err := r.pgpool.QueryRow(ctx, query, poiID, cityID).Scan(&p.ID, &p.CityID, &p.Name, &p.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find point of interest: %w", err)
	}
	return &p, nil
}

func (r *PostgresCityInfoRepository) AddPointOfInterestForCity(ctx context.Context, cityID int, poi *types.PointOfInterest) error {
	poi.CityID = cityID
	r.stage(pendingChange{kind: changeAddPOI, cityID: cityID, poi: poi})
	return nil
}

func (r *PostgresCityInfoRepository) UpdatePointOfInterestForCity(ctx context.Context, poi *types.PointOfInterest) error {
	r.stage(pendingChange{kind: changeUpdatePOI, cityID: poi.CityID, poi: poi})
	return nil
}

func (r *PostgresCityInfoRepository) DeletePointOfInterest(ctx context.Context, poi *types.PointOfInterest) error {
	r.stage(pendingChange{kind: changeDeletePOI, cityID: poi.CityID, poi: poi})
	return nil
}

func (r *PostgresCityInfoRepository) DeleteCity(ctx context.Context, cityID int) error {
	r.stage(pendingChange{kind: changeDeleteCity, cityID: cityID})
	return nil
}

func (r *PostgresCityInfoRepository) stage(c pendingChange) {
	r.mu.Lock()
	r.pending = append(r.pending, c)
	r.mu.Unlock()
}

// Save flushes all staged changes in a single transaction and reports
// whether any row actually changed. A false result with a nil error is a
// no-op commit, not a failure.
func (r *PostgresCityInfoRepository) Save(ctx context.Context) (bool, error) {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return false, nil
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	changed := int64(0)
	for _, c := range pending {
		switch c.kind {
		case changeAddPOI:
			query := `
                INSERT INTO points_of_interest (city_id, name, description)
                VALUES ($1, $2, $3) RETURNING id
            `
			if err := tx.QueryRow(ctx, query, c.cityID, c.poi.Name, c.poi.Description).Scan(&c.poi.ID); err != nil {
				return false, fmt.Errorf("failed to insert point of interest: %w", err)
			}
			changed++
		case changeUpdatePOI:
			query := `
                UPDATE points_of_interest
                SET name = $1, description = $2
                WHERE id = $3 AND city_id = $4
            `
			tag, err := tx.Exec(ctx, query, c.poi.Name, c.poi.Description, c.poi.ID, c.poi.CityID)
			if err != nil {
				return false, fmt.Errorf("failed to update point of interest: %w", err)
			}
			changed += tag.RowsAffected()
		case changeDeletePOI:
			query := `DELETE FROM points_of_interest WHERE id = $1 AND city_id = $2`
			tag, err := tx.Exec(ctx, query, c.poi.ID, c.poi.CityID)
			if err != nil {
				return false, fmt.Errorf("failed to delete point of interest: %w", err)
			}
			changed += tag.RowsAffected()
		case changeDeleteCity:
			// Children go first so the flush never leaves an orphan, even
			// without the schema-level cascade.
			tag, err := tx.Exec(ctx, `DELETE FROM points_of_interest WHERE city_id = $1`, c.cityID)
			if err != nil {
				return false, fmt.Errorf("failed to delete points of interest for city: %w", err)
			}
			changed += tag.RowsAffected()
			tag, err = tx.Exec(ctx, `DELETE FROM cities WHERE id = $1`, c.cityID)
			if err != nil {
				return false, fmt.Errorf("failed to delete city: %w", err)
			}
			changed += tag.RowsAffected()
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Flushed staged changes", slog.Int("staged", len(pending)), slog.Int64("rows_changed", changed))
	return changed > 0, nil
}
