package catalog

import (
	"context"
	"database/sql"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"

	"github.com/lib/pq"
)

const placeColumns = `id, name, description, address, region, themes,
		       estimated_cost, estimated_duration_minutes, contact`

type PlaceRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPlaceRepository(db *sql.DB, log logger.Logger) *PlaceRepository {
	return &PlaceRepository{db: db, logger: log.With(map[string]interface{}{"component": "catalog", "table": "places"})}
}

// FindPlacesByIDs returns the places that exist among ids, in id order.
// Callers that need a specific order reorder the result themselves.
func (r *PlaceRepository) FindPlacesByIDs(ctx context.Context, ids []int64) ([]models.PlaceRecord, error) {
	if len(ids) == 0 {
		return []models.PlaceRecord{}, nil
	}
	places, err := findPlacesByIDs(ctx, r.db, ids)
	if err != nil {
		return nil, apperrors.NewPlaceLookupFailedError(err)
	}
	return places, nil
}

func findPlacesByIDs(ctx context.Context, q queryer, ids []int64) ([]models.PlaceRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanPlaces(rows)
}

func (r *PlaceRepository) CountByThemeAndRegion(ctx context.Context, theme models.Theme, region string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM places
		WHERE $1 = ANY(themes) AND region = $2`, string(theme), region).Scan(&n)
	if err != nil {
		return 0, apperrors.NewPlaceLookupFailedError(err)
	}
	return n, nil
}

func (r *PlaceRepository) FindAll(ctx context.Context) ([]models.PlaceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewPlaceLookupFailedError(err)
	}
	places, err := scanPlaces(rows)
	if err != nil {
		return nil, apperrors.NewPlaceLookupFailedError(err)
	}
	r.logger.Debug("places loaded", map[string]interface{}{"count": len(places)})
	return places, nil
}

func scanPlaces(rows *sql.Rows) ([]models.PlaceRecord, error) {
	defer rows.Close()
	places := []models.PlaceRecord{}
	for rows.Next() {
		var p models.PlaceRecord
		var themes []string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Address, &p.Region, pq.Array(&themes),
			&p.EstimatedCost, &p.EstimatedDurationMinutes, &p.Contact); err != nil {
			return nil, err
		}
		p.Themes = themes
		places = append(places, p)
	}
	return places, rows.Err()
}

// OrderPlaces arranges places to follow ids, dropping ids with no record.
func OrderPlaces(places []models.PlaceRecord, ids []int64) []models.PlaceRecord {
	byID := make(map[int64]models.PlaceRecord, len(places))
	for _, p := range places {
		byID[p.ID] = p
	}
	out := make([]models.PlaceRecord, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
