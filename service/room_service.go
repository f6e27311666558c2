package service

import (
	"context"
	"database/sql"
	"errors"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"modesta-resort-api/repository"
	"time"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type RoomService struct {
	repo  repository.IRoomRepository
	cache ICacheClient
}

func NewRoomService(repo repository.IRoomRepository, cache ICacheClient) *RoomService {
	return &RoomService{repo: repo, cache: cache}
}

// ListCategories uses a cache-aside strategy keyed on the whole catalog.
func (s *RoomService) ListCategories(ctx context.Context) ([]model.RoomCategory, error) {
	var cached []model.RoomCategory
	if cacheGet(ctx, s.cache, categoriesCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, categoriesCacheKey, categories, categoryCacheTTL)
	return categories, nil
}

func (s *RoomService) GetCategory(ctx context.Context, slug string) (*model.RoomCategory, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// CheckAvailability validates the stay and lists the free rooms of the category.
// userID is zero for anonymous callers.
func (s *RoomService) CheckAvailability(ctx context.Context, userID int, req model.AvailabilityRequest) (*model.Availability, error) {
	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return nil, ErrInvalidStayDates
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return nil, ErrInvalidStayDates
	}
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidStayDates
	}

	category, err := s.repo.GetCategoryByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomCategoryNotFound
		}
		return nil, err
	}
	if req.Guests > 0 && category.MaxOccupancy > 0 && req.Guests > category.MaxOccupancy {
		return nil, ErrTooManyGuests
	}

	rooms, err := s.repo.CheckAvailability(ctx, req.CategoryID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":     userID,
		"category_id": req.CategoryID,
		"available":   len(rooms),
	}).Info("Availability checked")

	return &model.Availability{Available: len(rooms) > 0, Count: len(rooms), Rooms: rooms}, nil
}
