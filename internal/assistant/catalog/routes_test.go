package catalog

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteRepository_CreateRouteFromPlaceIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM places WHERE id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(placeRowColumns).
			AddRow(int64(3), "경복궁", "", "", "서울", "{HISTORY,CULTURE}", 3000, 120, "").
			AddRow(int64(5), "북촌한옥마을", "", "", "서울", "{CULTURE}", 0, 60, "").
			AddRow(int64(9), "광장시장", "", "", "서울", "{FOOD}", 15000, 90, ""))
	mock.ExpectQuery(`INSERT INTO routes .+ RETURNING id`).
		WithArgs("서울 북촌한옥마을 외 2곳 1일 코스", "북촌한옥마을 → 경복궁 → 광장시장", "CULTURE", "서울", 1, 18000, 270).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))
	prep := mock.ExpectPrepare(`INSERT INTO route_places`)
	prep.ExpectExec().WithArgs(int64(41), int64(5), 1).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(41), int64(3), 2).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(41), int64(9), 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewRouteRepository(db, logger.NewTestLogger(t))
	route, err := repo.CreateRouteFromPlaceIDs(context.Background(), []int64{5, 3, 9})
	require.NoError(t, err)
	assert.Equal(t, int64(41), route.RouteID)
	assert.Equal(t, 18000, route.TotalCost)
	assert.Equal(t, 270, route.TotalDurationMinutes)
	assert.Equal(t, "북촌한옥마을 → 경복궁 → 광장시장", route.DescriptionKo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepository_CreateRollsBackOnUnknownPlace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM places WHERE id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(placeRowColumns).
			AddRow(int64(3), "경복궁", "", "", "서울", "{HISTORY}", 3000, 120, ""))
	mock.ExpectRollback()

	_, err = NewRouteRepository(db, logger.NewNoOpLogger()).CreateRouteFromPlaceIDs(context.Background(), []int64{3, 404})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlace)
	assert.Equal(t, apperrors.ErrCodeRouteCreateFailed, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepository_CreateRollsBackOnStopFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM places`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(placeRowColumns).
			AddRow(int64(3), "경복궁", "", "", "서울", "{HISTORY}", 3000, 120, ""))
	mock.ExpectQuery(`INSERT INTO routes`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectPrepare(`INSERT INTO route_places`).
		ExpectExec().WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	_, err = NewRouteRepository(db, logger.NewNoOpLogger()).CreateRouteFromPlaceIDs(context.Background(), []int64{3})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepository_Finders(t *testing.T) {
	cols := []string{"id", "title", "description", "theme", "region", "day_count", "total_cost", "total_duration_minutes", "popularity"}
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(cols).AddRow(int64(1), "서울 K-POP 투어", "", "KPOP", "서울", 2, 50000, 480, 31)
	}

	tests := []struct {
		name  string
		query string
		args  []driver.Value
		call  func(r *RouteRepository) ([]models.RouteSummary, error)
	}{
		{
			name:  "theme and region",
			query: `FROM routes WHERE theme = \$1 AND region = \$2 ORDER BY popularity DESC, id DESC LIMIT \$3`,
			args:  []driver.Value{"KPOP", "서울", 5},
			call: func(r *RouteRepository) ([]models.RouteSummary, error) {
				return r.FindByThemeAndRegion(context.Background(), models.ThemeKPop, "서울", 5)
			},
		},
		{
			name:  "theme",
			query: `FROM routes WHERE theme = \$1 ORDER BY popularity DESC, id DESC LIMIT \$2`,
			args:  []driver.Value{"KPOP", 5},
			call: func(r *RouteRepository) ([]models.RouteSummary, error) {
				return r.FindByTheme(context.Background(), models.ThemeKPop, 5)
			},
		},
		{
			name:  "region",
			query: `FROM routes WHERE region = \$1 ORDER BY popularity DESC, id DESC LIMIT \$2`,
			args:  []driver.Value{"서울", 5},
			call: func(r *RouteRepository) ([]models.RouteSummary, error) {
				return r.FindByRegion(context.Background(), "서울", 5)
			},
		},
		{
			name:  "popular",
			query: `FROM routes ORDER BY popularity DESC, id DESC LIMIT \$1`,
			args:  []driver.Value{5},
			call: func(r *RouteRepository) ([]models.RouteSummary, error) {
				return r.FindPopular(context.Background(), 5)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(tt.query).WithArgs(tt.args...).WillReturnRows(row())

			routes, err := tt.call(NewRouteRepository(db, logger.NewNoOpLogger()))
			require.NoError(t, err)
			require.Len(t, routes, 1)
			assert.Equal(t, 31, routes[0].Popularity)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
