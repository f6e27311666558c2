package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryColumns = []string{"id", "category_name", "category_slug", "description", "short_description", "size_sqm",
	"max_occupancy", "max_adults", "max_children", "base_price", "weekend_price", "total_rooms"}

func TestRoomRepository_ListCategories(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM room_categories c WHERE c.is_active = TRUE")).
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(1, "Ocean Suite", "ocean-suite", "Large suite", "Suite", 60, 4, 2, 2, 420.0, 480.0, 3).
			AddRow(2, "Garden Room", "garden-room", "Quiet room", "Room", nil, 2, 2, 0, 180.0, nil, 5))
	mock.ExpectQuery(regexp.QuoteMeta("FROM room_category_amenities rca")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "id", "amenity_name", "amenity_icon", "category"}).
			AddRow(1, 10, "Private pool", "pool", "comfort").
			AddRow(2, 11, "Wi-Fi", nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM room_images")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "id", "image_url", "image_type", "title", "sort_order"}).
			AddRow(1, 100, "/img/ocean.jpg", "hero", "Ocean", 0))

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "ocean-suite", categories[0].Slug)
	assert.Equal(t, 3, categories[0].TotalRooms)
	assert.Len(t, categories[0].Amenities, 1)
	assert.Len(t, categories[0].Images, 1)
	assert.Nil(t, categories[1].SizeSqm)
	assert.Equal(t, "Wi-Fi", categories[1].Amenities[0].Name)
	assert.NotNil(t, categories[1].Images)
	assert.Empty(t, categories[1].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_GetCategoryBySlug_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.category_slug = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(categoryColumns))

	_, err = repo.GetCategoryBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_CheckAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRoomRepository(db)

	in := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 3)
	mock.ExpectQuery(regexp.QuoteMeta("FROM check_room_availability($1, $2, $3)")).
		WithArgs(1, in, out).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "floor", "view_type"}).
			AddRow(21, "101", 1, "ocean").
			AddRow(22, "102", nil, nil))

	rooms, err := repo.CheckAvailability(context.Background(), 1, in, out)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "101", rooms[0].RoomNumber)
	assert.Nil(t, rooms[1].Floor)
	assert.NoError(t, mock.ExpectationsWereMet())
}
