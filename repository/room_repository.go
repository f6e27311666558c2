package repository

import (
	"context"
	"database/sql"
	"errors"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// IRoomRepository reads the room catalog.
type IRoomRepository interface {
	ListCategories(ctx context.Context) ([]model.RoomCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.RoomCategory, error)
	GetCategoryByID(ctx context.Context, id int) (*model.RoomCategory, error)
	CheckAvailability(ctx context.Context, categoryID int, checkIn, checkOut time.Time) ([]model.AvailableRoom, error)
}

type RoomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{DB: db}
}

const categorySelect = `
	SELECT c.id, c.category_name, c.category_slug, c.description, c.short_description, c.size_sqm,
		c.max_occupancy, c.max_adults, c.max_children, c.base_price, c.weekend_price,
		(SELECT COUNT(*) FROM rooms r WHERE r.category_id = c.id AND r.is_active = TRUE)
	FROM room_categories c`

func scanCategory(row interface{ Scan(...interface{}) error }) (model.RoomCategory, error) {
	var c model.RoomCategory
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ShortDescription, &c.SizeSqm,
		&c.MaxOccupancy, &c.MaxAdults, &c.MaxChildren, &c.BasePrice, &c.WeekendPrice, &c.TotalRooms)
	return c, err
}

// ListCategories returns the active categories in display order with their
// amenities and images attached.
func (r *RoomRepository) ListCategories(ctx context.Context) ([]model.RoomCategory, error) {
	log := logger.Log
	log.Info("Executing query to list room categories")

	rows, err := r.DB.QueryContext(ctx, categorySelect+` WHERE c.is_active = TRUE ORDER BY c.sort_order, c.id`)
	if err != nil {
		log.WithError(err).Error("Failed to execute list room categories query")
		return nil, err
	}
	defer rows.Close()

	categories := []model.RoomCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan room category row")
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachDetails(ctx, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategoryBySlug returns sql.ErrNoRows for unknown or inactive slugs.
func (r *RoomRepository) GetCategoryBySlug(ctx context.Context, slug string) (*model.RoomCategory, error) {
	log := logger.Log.WithField("slug", slug)
	log.Info("Executing query to get room category by slug")

	c, err := scanCategory(r.DB.QueryRowContext(ctx, categorySelect+` WHERE c.category_slug = $1 AND c.is_active = TRUE`, slug))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.WithError(err).Error("Failed to execute get room category query")
		}
		return nil, err
	}

	list := []model.RoomCategory{c}
	if err := r.attachDetails(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// GetCategoryByID returns the bare category row without amenities or images.
func (r *RoomRepository) GetCategoryByID(ctx context.Context, id int) (*model.RoomCategory, error) {
	c, err := scanCategory(r.DB.QueryRowContext(ctx, categorySelect+` WHERE c.id = $1 AND c.is_active = TRUE`, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithError(err).WithField("category_id", id).Error("Failed to execute get room category by ID query")
		}
		return nil, err
	}
	return &c, nil
}

func (r *RoomRepository) attachDetails(ctx context.Context, categories []model.RoomCategory) error {
	if len(categories) == 0 {
		return nil
	}

	ids := make([]int64, len(categories))
	index := make(map[int]int, len(categories))
	for i := range categories {
		ids[i] = int64(categories[i].ID)
		index[categories[i].ID] = i
		categories[i].Amenities = []model.Amenity{}
		categories[i].Images = []model.RoomImage{}
	}

	amenityRows, err := r.DB.QueryContext(ctx, `
		SELECT rca.category_id, a.id, a.amenity_name, a.amenity_icon, a.category
		FROM room_category_amenities rca
		JOIN room_amenities a ON a.id = rca.amenity_id
		WHERE rca.category_id = ANY($1)
		ORDER BY a.sort_order, a.id`, pq.Array(ids))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute room amenities query")
		return err
	}
	defer amenityRows.Close()
	for amenityRows.Next() {
		var categoryID int
		var a model.Amenity
		if err := amenityRows.Scan(&categoryID, &a.ID, &a.Name, &a.Icon, &a.Category); err != nil {
			return err
		}
		if i, ok := index[categoryID]; ok {
			categories[i].Amenities = append(categories[i].Amenities, a)
		}
	}
	if err := amenityRows.Err(); err != nil {
		return err
	}

	imageRows, err := r.DB.QueryContext(ctx, `
		SELECT category_id, id, image_url, image_type, title, sort_order
		FROM room_images
		WHERE category_id = ANY($1)
		ORDER BY sort_order, id`, pq.Array(ids))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute room images query")
		return err
	}
	defer imageRows.Close()
	for imageRows.Next() {
		var categoryID int
		var img model.RoomImage
		if err := imageRows.Scan(&categoryID, &img.ID, &img.URL, &img.Type, &img.Title, &img.SortOrder); err != nil {
			return err
		}
		if i, ok := index[categoryID]; ok {
			categories[i].Images = append(categories[i].Images, img)
		}
	}
	return imageRows.Err()
}

// CheckAvailability lists the rooms of a category free for the whole stay.
func (r *RoomRepository) CheckAvailability(ctx context.Context, categoryID int, checkIn, checkOut time.Time) ([]model.AvailableRoom, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"category_id": categoryID,
		"check_in":    checkIn.Format("2006-01-02"),
		"check_out":   checkOut.Format("2006-01-02"),
	})
	log.Info("Executing availability check")

	rows, err := r.DB.QueryContext(ctx, `SELECT id, room_number, floor, view_type FROM check_room_availability($1, $2, $3)`,
		categoryID, checkIn, checkOut)
	if err != nil {
		log.WithError(err).Error("Failed to execute availability query")
		return nil, err
	}
	defer rows.Close()

	rooms := []model.AvailableRoom{}
	for rows.Next() {
		var room model.AvailableRoom
		if err := rows.Scan(&room.ID, &room.RoomNumber, &room.Floor, &room.ViewType); err != nil {
			log.WithError(err).Error("Failed to scan available room row")
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
