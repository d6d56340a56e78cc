package service

import (
	"context"
	"errors"

	bikeserrors "rentabike/internal/bikes/errors"
	"rentabike/internal/bikes/repository"
	"rentabike/internal/bikes/validator"
	"rentabike/pkg/cache"
	"rentabike/pkg/clock"
	"rentabike/pkg/config"
	apperrors "rentabike/pkg/errors"
	"rentabike/pkg/model"
	"rentabike/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

const availableCacheKey = "bikes:available"

type BikeService interface {
	// ListAvailable is the public catalog, served from cache when warm.
	ListAvailable(ctx context.Context) (*model.BikeList, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Bike, int64, error)
	GetByID(ctx context.Context, id string) (*model.Bike, error)
	Create(ctx context.Context, req *model.BikeRequest) (*model.Bike, error)
	Update(ctx context.Context, id string, update *model.BikeUpdate) (*model.Bike, error)
	Delete(ctx context.Context, id string) error
}

type bikeService struct {
	repo      repository.BikeRepository
	cache     cache.Cache
	validator *validator.BikeValidator
	clock     clock.Clock
	cfg       *config.Config
}

func NewBikeService(repo repository.BikeRepository, c cache.Cache, validator *validator.BikeValidator, clk clock.Clock, cfg *config.Config) BikeService {
	if c == nil {
		c = cache.Noop{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &bikeService{
		repo:      repo,
		cache:     c,
		validator: validator,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *bikeService) ListAvailable(ctx context.Context) (*model.BikeList, error) {
	var cached model.BikeList
	found, err := s.cache.Get(ctx, availableCacheKey, &cached)
	if err != nil {
		s.cfg.Log.Warn("Catalog cache read failed", "key", availableCacheKey, "error", err)
	}
	if found {
		return &cached, nil
	}

	bikes, err := s.repo.FindAll(ctx, model.BikeFilter{AvailableOnly: true}, 0, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list available bikes", "error", err)
		return nil, apperrors.Infrastructure("Failed to fetch bikes", err)
	}

	list := &model.BikeList{
		Bikes:     bikes,
		Count:     len(bikes),
		Timestamp: s.clock.Now().UTC(),
	}
	if err := s.cache.Set(ctx, availableCacheKey, list, s.cfg.CatalogCacheTTL); err != nil {
		s.cfg.Log.Warn("Catalog cache write failed", "key", availableCacheKey, "error", err)
	}
	return list, nil
}

func (s *bikeService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Bike, int64, error) {
	bikes, err := s.repo.FindAll(ctx, model.BikeFilter{}, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bikes", "error", err)
		return nil, 0, apperrors.Infrastructure("Failed to fetch bikes", err)
	}

	total, err := s.repo.Count(ctx, model.BikeFilter{})
	if err != nil {
		s.cfg.Log.Error("Failed to count bikes", "error", err)
		return nil, 0, apperrors.Infrastructure("Failed to count bikes", err)
	}
	return bikes, total, nil
}

func (s *bikeService) GetByID(ctx context.Context, id string) (*model.Bike, error) {
	bike, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to fetch bike")
	}
	return bike, nil
}

func (s *bikeService) Create(ctx context.Context, req *model.BikeRequest) (*model.Bike, error) {
	sanitizeRequest(req)

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Bike validation failed", "error", err)
		return nil, toValidationError(err)
	}

	bike := &model.Bike{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		PricePerDay: *req.PricePerDay,
		ImageURL:    req.ImageURL,
		Available:   true,
		Features:    req.Features,
	}
	if req.PricePerHour != nil {
		bike.PricePerHour = *req.PricePerHour
	}
	if req.Available != nil {
		bike.Available = *req.Available
	}
	if err := s.repo.Create(ctx, bike); err != nil {
		s.cfg.Log.Error("Failed to create bike", "name", bike.Name, "error", err)
		return nil, apperrors.Infrastructure("Failed to create bike", err)
	}

	s.cfg.Log.Info("Bike created", "bike_id", bike.ID, "name", bike.Name)
	s.invalidate(ctx)
	return bike, nil
}

func (s *bikeService) Update(ctx context.Context, id string, update *model.BikeUpdate) (*model.Bike, error) {
	sanitizeUpdate(update)

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Bike update validation failed", "bike_id", id, "error", err)
		return nil, toValidationError(err)
	}

	set := updateFields(update)
	if len(set) == 0 {
		return nil, apperrors.InvalidInput("No fields to update")
	}

	bike, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update bike")
	}

	s.cfg.Log.Info("Bike updated", "bike_id", id)
	s.invalidate(ctx)
	return bike, nil
}

func (s *bikeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete bike")
	}

	s.cfg.Log.Info("Bike deleted", "bike_id", id)
	s.invalidate(ctx)
	return nil
}

func (s *bikeService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, availableCacheKey); err != nil {
		s.cfg.Log.Warn("Catalog cache invalidation failed", "key", availableCacheKey, "error", err)
	}
}

func (s *bikeService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, bikeserrors.ErrNotFound) || errors.Is(err, bikeserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Bike", id)
	}
	s.cfg.Log.Error(message, "bike_id", id, "error", err)
	return apperrors.Infrastructure(message, err)
}

func sanitizeRequest(req *model.BikeRequest) {
	req.Name = sanitizer.SanitizeName(req.Name)
	req.Type = sanitizer.NormalizeBikeType(req.Type)
	req.Description = sanitizer.SanitizeFreeText(req.Description)
	req.ImageURL = sanitizer.NormalizeURL(req.ImageURL)
	req.Features = sanitizer.NormalizeFeatures(req.Features)
}

func sanitizeUpdate(u *model.BikeUpdate) {
	if u.Name != nil {
		*u.Name = sanitizer.SanitizeName(*u.Name)
	}
	if u.Type != nil {
		*u.Type = sanitizer.NormalizeBikeType(*u.Type)
	}
	if u.Description != nil {
		*u.Description = sanitizer.SanitizeFreeText(*u.Description)
	}
	if u.ImageURL != nil {
		*u.ImageURL = sanitizer.NormalizeURL(*u.ImageURL)
	}
	if u.Features != nil {
		features := sanitizer.NormalizeFeatures(*u.Features)
		u.Features = &features
	}
}

func updateFields(u *model.BikeUpdate) bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.PricePerHour != nil {
		set["price_per_hour"] = *u.PricePerHour
	}
	if u.PricePerDay != nil {
		set["price_per_day"] = *u.PricePerDay
	}
	if u.ImageURL != nil {
		set["image_url"] = *u.ImageURL
	}
	if u.Available != nil {
		set["available"] = *u.Available
	}
	if u.Features != nil {
		set["features"] = *u.Features
	}
	return set
}

func toValidationError(err error) error {
	var missing *validator.MissingFieldsError
	if errors.As(err, &missing) {
		return apperrors.Validation("Missing required fields", map[string]any{
			"missing_fields": missing.Fields,
		})
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.Validation("Invalid bike data", map[string]any{
			"fields": fieldErrs,
		})
	}
	return apperrors.Internal("Failed to validate bike", err)
}
