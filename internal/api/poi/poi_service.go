package poi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/city-info-api/app/mail"
	"github.com/FACorreiaa/city-info-api/app/observability/metrics"
	"github.com/FACorreiaa/city-info-api/internal/api/city"
	"github.com/FACorreiaa/city-info-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for point of interest
// operations. Every mutating call runs the same short-circuiting pipeline:
// city exists, target exists, input valid, stage through the repository,
// commit. Absence comes back as types.ErrNotFound, bad input as
// *types.ValidationError or *types.PatchError; anything else is a store
// failure.
type Service interface {
	GetPointsOfInterest(ctx context.Context, cityID int) ([]types.PointOfInterest, error)
	GetPointOfInterest(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error)
	CreatePointOfInterest(ctx context.Context, cityID int, input types.PointOfInterestForCreation) (*types.PointOfInterest, error)
	UpdatePointOfInterest(ctx context.Context, cityID, poiID int, input types.PointOfInterestForUpdate) error
	PatchPointOfInterest(ctx context.Context, cityID, poiID int, ops []types.PatchOperation) error
	DeletePointOfInterest(ctx context.Context, cityID, poiID int) error
}

type ServiceImpl struct {
	logger     *slog.Logger
	repository city.Repository
	notifier   mail.Notifier
}

func NewServiceImpl(repository city.Repository, notifier mail.Notifier, logger *slog.Logger) *ServiceImpl {
	metrics.InitAppMetrics()
	return &ServiceImpl{
		logger:     logger,
		repository: repository,
		notifier:   notifier,
	}
}

// commit flushes the staged change set and records the mutation metrics.
func (s *ServiceImpl) commit(ctx context.Context, operation string) error {
	start := time.Now()
	if _, err := s.repository.Save(ctx); err != nil {
		return err
	}
	m := metrics.Get()
	m.StoreSaveDurationSeconds.Record(ctx, time.Since(start).Seconds())
	m.POIMutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	return nil
}

func (s *ServiceImpl) GetPointsOfInterest(ctx context.Context, cityID int) ([]types.PointOfInterest, error) {
	exists, err := s.repository.CityExists(ctx, cityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to check city existence", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check city existence: %w", err)
	}
	if !exists {
		return nil, types.ErrNotFound
	}

	pois, err := s.repository.GetPointsOfInterestForCity(ctx, cityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list points of interest", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list points of interest: %w", err)
	}
	return pois, nil
}

func (s *ServiceImpl) GetPointOfInterest(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	poi, err := s.resolveTarget(ctx, cityID, poiID)
	if err != nil {
		return nil, err
	}
	return poi, nil
}

func (s *ServiceImpl) CreatePointOfInterest(ctx context.Context, cityID int, input types.PointOfInterestForCreation) (*types.PointOfInterest, error) {
	ctx, span := otel.Tracer("POIService").Start(ctx, "CreatePointOfInterest", trace.WithAttributes(
		attribute.Int("city.id", cityID),
	))
	defer span.End()

	exists, err := s.repository.CityExists(ctx, cityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to check city existence", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to check city existence: %w", err)
	}
	if !exists {
		return nil, types.ErrNotFound
	}

	if violations := ValidatePointOfInterest(input.Name, input.Description); len(violations) > 0 {
		return nil, &types.ValidationError{Violations: violations}
	}

	poi := &types.PointOfInterest{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repository.AddPointOfInterestForCity(ctx, cityID, poi); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to stage point of interest: %w", err)
	}
	if err := s.commit(ctx, "create"); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to commit new point of interest", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create point of interest: %w", err)
	}

	s.logger.InfoContext(ctx, "Point of interest created",
		slog.Int("cityID", cityID), slog.Int("poiID", poi.ID))
	span.SetAttributes(attribute.Int("poi.id", poi.ID))
	span.SetStatus(codes.Ok, "Point of interest created")
	return poi, nil
}

func (s *ServiceImpl) UpdatePointOfInterest(ctx context.Context, cityID, poiID int, input types.PointOfInterestForUpdate) error {
	ctx, span := otel.Tracer("POIService").Start(ctx, "UpdatePointOfInterest", trace.WithAttributes(
		attribute.Int("city.id", cityID),
		attribute.Int("poi.id", poiID),
	))
	defer span.End()

	poi, err := s.resolveTarget(ctx, cityID, poiID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if violations := ValidatePointOfInterest(input.Name, input.Description); len(violations) > 0 {
		return &types.ValidationError{Violations: violations}
	}

	poi.Name = input.Name
	poi.Description = input.Description
	if err := s.repository.UpdatePointOfInterestForCity(ctx, poi); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to stage point of interest update: %w", err)
	}
	if err := s.commit(ctx, "update"); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to commit point of interest update", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to update point of interest: %w", err)
	}

	span.SetStatus(codes.Ok, "Point of interest updated")
	return nil
}

func (s *ServiceImpl) PatchPointOfInterest(ctx context.Context, cityID, poiID int, ops []types.PatchOperation) error {
	ctx, span := otel.Tracer("POIService").Start(ctx, "PatchPointOfInterest", trace.WithAttributes(
		attribute.Int("city.id", cityID),
		attribute.Int("poi.id", poiID),
		attribute.Int("patch.operations", len(ops)),
	))
	defer span.End()

	poi, err := s.resolveTarget(ctx, cityID, poiID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	snapshot := types.PointOfInterestForUpdate{
		Name:        poi.Name,
		Description: poi.Description,
	}
	merged, err := ApplyPatch(snapshot, ops)
	if err != nil {
		return err
	}

	// A patch whose operations are individually fine can still merge into
	// an invalid combined state, so the merged snapshot goes through the
	// same rules as a full replacement.
	if violations := ValidatePointOfInterest(merged.Name, merged.Description); len(violations) > 0 {
		return &types.ValidationError{Violations: violations}
	}

	poi.Name = merged.Name
	poi.Description = merged.Description
	if err := s.repository.UpdatePointOfInterestForCity(ctx, poi); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to stage point of interest patch: %w", err)
	}
	if err := s.commit(ctx, "patch"); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to commit point of interest patch", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to patch point of interest: %w", err)
	}

	span.SetStatus(codes.Ok, "Point of interest patched")
	return nil
}

func (s *ServiceImpl) DeletePointOfInterest(ctx context.Context, cityID, poiID int) error {
	ctx, span := otel.Tracer("POIService").Start(ctx, "DeletePointOfInterest", trace.WithAttributes(
		attribute.Int("city.id", cityID),
		attribute.Int("poi.id", poiID),
	))
	defer span.End()

	poi, err := s.resolveTarget(ctx, cityID, poiID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.repository.DeletePointOfInterest(ctx, poi); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to stage point of interest deletion: %w", err)
	}
	if err := s.commit(ctx, "delete"); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to commit point of interest deletion", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to delete point of interest: %w", err)
	}

	// Best-effort side effect; the delete is already committed and a
	// notifier problem must not undo it.
	s.notifier.Send("Point of interest deleted",
		fmt.Sprintf("Point of interest %s with id %d was deleted.", poi.Name, poi.ID))
	metrics.Get().DeleteNotificationsTotal.Add(ctx, 1)

	s.logger.InfoContext(ctx, "Point of interest deleted",
		slog.Int("cityID", cityID), slog.Int("poiID", poiID))
	span.SetStatus(codes.Ok, "Point of interest deleted")
	return nil
}

// resolveTarget runs the shared city-then-target existence checks and
// returns the current record.
func (s *ServiceImpl) resolveTarget(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	exists, err := s.repository.CityExists(ctx, cityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to check city existence", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check city existence: %w", err)
	}
	if !exists {
		return nil, types.ErrNotFound
	}

	poi, err := s.repository.GetPointOfInterestForCity(ctx, cityID, poiID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to get point of interest", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get point of interest: %w", err)
	}
	if poi == nil {
		return nil, types.ErrNotFound
	}
	return poi, nil
}
