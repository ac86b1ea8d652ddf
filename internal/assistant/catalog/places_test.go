package catalog

import (
	"context"
	"errors"
	"testing"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeRowColumns = []string{"id", "name", "description", "address", "region", "themes",
	"estimated_cost", "estimated_duration_minutes", "contact"}

func TestPlaceRepository_FindPlacesByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM places WHERE id = ANY\(\$1\) ORDER BY id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(placeRowColumns).
			AddRow(int64(2), "광장시장", "먹거리 시장", "종로구", "서울", "{FOOD}", 15000, 90, "").
			AddRow(int64(7), "하이브 인사이트", "K-POP 전시", "용산구", "서울", "{KPOP,CULTURE}", 22000, 120, "02-000-0000"))

	repo := NewPlaceRepository(db, logger.NewTestLogger(t))
	places, err := repo.FindPlacesByIDs(context.Background(), []int64{7, 2})
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, []string{"KPOP", "CULTURE"}, places[1].Themes)
	assert.Equal(t, 22000, places[1].EstimatedCost)

	ordered := OrderPlaces(places, []int64{7, 99, 2})
	require.Len(t, ordered, 2)
	assert.Equal(t, int64(7), ordered[0].ID)
	assert.Equal(t, int64(2), ordered[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRepository_FindPlacesByIDsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	places, err := NewPlaceRepository(db, logger.NewNoOpLogger()).FindPlacesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, places)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRepository_CountByThemeAndRegion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM places WHERE \$1 = ANY\(themes\) AND region = \$2`).
		WithArgs("KPOP", "서울").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := NewPlaceRepository(db, logger.NewNoOpLogger()).CountByThemeAndRegion(context.Background(), models.ThemeKPop, "서울")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRepository_FindAllError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM places ORDER BY id`).WillReturnError(errors.New("relation \"places\" does not exist"))

	_, err = NewPlaceRepository(db, logger.NewNoOpLogger()).FindAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePlaceLookupFailed, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
