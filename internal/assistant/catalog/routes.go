package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"
)

// PlacesPerDay is the stop density used when a route's day count is derived
// from its places.
const PlacesPerDay = 4

const routeColumns = `id, title, description, theme, region, day_count,
		       total_cost, total_duration_minutes, popularity`

type RouteRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRouteRepository(db *sql.DB, log logger.Logger) *RouteRepository {
	return &RouteRepository{db: db, logger: log.With(map[string]interface{}{"component": "catalog", "table": "routes"})}
}

// CreateRouteFromPlaceIDs stores a route visiting placeIDs in order. Title,
// description and totals are derived from the places; the route and its
// stops are written in one transaction.
func (r *RouteRepository) CreateRouteFromPlaceIDs(ctx context.Context, placeIDs []int64) (models.CreatedRoute, error) {
	if len(placeIDs) == 0 {
		return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(fmt.Errorf("route needs at least one place"))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	found, err := findPlacesByIDs(ctx, tx, placeIDs)
	if err != nil {
		return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(fmt.Errorf("load places: %w", err))
	}
	places := OrderPlaces(found, placeIDs)
	if len(places) != len(placeIDs) {
		return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(
			fmt.Errorf("%w: %d of %d places exist", ErrUnknownPlace, len(places), len(placeIDs)))
	}

	draft := draftRoute(places)
	var routeID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO routes (title, description, theme, region, day_count, total_cost, total_duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		draft.title, draft.description, draft.theme, draft.region, draft.dayCount, draft.totalCost, draft.totalDuration,
	).Scan(&routeID)
	if err != nil {
		return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(fmt.Errorf("insert route: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO route_places (route_id, place_id, position) VALUES ($1, $2, $3)`)
	if err != nil {
		return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(err)
	}
	defer stmt.Close()
	for i, id := range placeIDs {
		if _, err := stmt.ExecContext(ctx, routeID, id, i+1); err != nil {
			return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(fmt.Errorf("insert stop %d: %w", i+1, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return models.CreatedRoute{}, apperrors.NewRouteCreateFailedError(err)
	}

	r.logger.Info("route created", map[string]interface{}{
		"routeId": routeID,
		"places":  len(placeIDs),
		"theme":   draft.theme,
		"region":  draft.region,
	})
	return models.CreatedRoute{
		RouteID:              routeID,
		TitleKo:              draft.title,
		DescriptionKo:        draft.description,
		TotalCost:            draft.totalCost,
		TotalDurationMinutes: draft.totalDuration,
	}, nil
}

type routeDraft struct {
	title, description, theme, region string
	dayCount, totalCost, totalDuration int
}

func draftRoute(places []models.PlaceRecord) routeDraft {
	d := routeDraft{region: places[0].Region}
	themeCount := map[string]int{}
	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.Name
		d.totalCost += p.EstimatedCost
		d.totalDuration += p.EstimatedDurationMinutes
		for _, t := range p.Themes {
			themeCount[t]++
		}
	}
	// most frequent theme, first seen wins ties
	best := 0
	for _, p := range places {
		for _, t := range p.Themes {
			if themeCount[t] > best {
				best = themeCount[t]
				d.theme = t
			}
		}
	}
	d.dayCount = (len(places) + PlacesPerDay - 1) / PlacesPerDay

	if len(places) == 1 {
		d.title = fmt.Sprintf("%s %s 코스", d.region, places[0].Name)
	} else {
		d.title = fmt.Sprintf("%s %s 외 %d곳 %d일 코스", d.region, places[0].Name, len(places)-1, d.dayCount)
	}
	d.description = strings.Join(names, " → ")
	return d
}

func (r *RouteRepository) FindByThemeAndRegion(ctx context.Context, theme models.Theme, region string, limit int) ([]models.RouteSummary, error) {
	return r.find(ctx, `WHERE theme = $1 AND region = $2`, limit, string(theme), region)
}

func (r *RouteRepository) FindByTheme(ctx context.Context, theme models.Theme, limit int) ([]models.RouteSummary, error) {
	return r.find(ctx, `WHERE theme = $1`, limit, string(theme))
}

func (r *RouteRepository) FindByRegion(ctx context.Context, region string, limit int) ([]models.RouteSummary, error) {
	return r.find(ctx, `WHERE region = $1`, limit, region)
}

func (r *RouteRepository) FindPopular(ctx context.Context, limit int) ([]models.RouteSummary, error) {
	return r.find(ctx, ``, limit)
}

func (r *RouteRepository) find(ctx context.Context, where string, limit int, args ...interface{}) ([]models.RouteSummary, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM routes
		%s
		ORDER BY popularity DESC, id DESC
		LIMIT $%d`, routeColumns, where, len(args)+1)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, apperrors.NewRouteSearchFailedError(err)
	}
	defer rows.Close()

	routes := []models.RouteSummary{}
	for rows.Next() {
		var s models.RouteSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Theme, &s.Region, &s.DayCount,
			&s.TotalCost, &s.TotalDurationMinutes, &s.Popularity); err != nil {
			return nil, apperrors.NewRouteSearchFailedError(err)
		}
		routes = append(routes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRouteSearchFailedError(err)
	}
	return routes, nil
}
