package city

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/city-info-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for city operations.
type Service interface {
	GetCities(ctx context.Context) ([]types.City, error)
	GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*types.City, error)
	DeleteCity(ctx context.Context, cityID int) error
}

type ServiceImpl struct {
	logger     *slog.Logger
	repository Repository
}

func NewServiceImpl(repository Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repository: repository,
	}
}

func (s *ServiceImpl) GetCities(ctx context.Context) ([]types.City, error) {
	cities, err := s.repository.GetCities(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list cities", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

func (s *ServiceImpl) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "GetCity", trace.WithAttributes(
		attribute.Int("city.id", cityID),
		attribute.Bool("city.include_points_of_interest", includePointsOfInterest),
	))
	defer span.End()

	city, err := s.repository.GetCity(ctx, cityID, includePointsOfInterest)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to get city", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "City retrieved")
	return city, nil
}

// DeleteCity removes a city together with every point of interest it owns,
// so the store never holds an orphan child.
func (s *ServiceImpl) DeleteCity(ctx context.Context, cityID int) error {
	ctx, span := otel.Tracer("CityService").Start(ctx, "DeleteCity", trace.WithAttributes(
		attribute.Int("city.id", cityID),
	))
	defer span.End()

	exists, err := s.repository.CityExists(ctx, cityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to check city existence", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to check city existence: %w", err)
	}
	if !exists {
		return types.ErrNotFound
	}

	if err := s.repository.DeleteCity(ctx, cityID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to stage city deletion: %w", err)
	}
	if _, err := s.repository.Save(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to commit city deletion", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to delete city: %w", err)
	}

	s.logger.InfoContext(ctx, "City deleted", slog.Int("cityID", cityID))
	span.SetStatus(codes.Ok, "City deleted")
	return nil
}
