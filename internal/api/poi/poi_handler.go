package poi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/city-info-api/internal/api"
	"github.com/FACorreiaa/city-info-api/internal/types"
)

type POIHandler struct {
	poiService Service
	logger     *slog.Logger
}

func NewPOIHandler(poiService Service, logger *slog.Logger) *POIHandler {
	return &POIHandler{
		poiService: poiService,
		logger:     logger,
	}
}

// GetPointsOfInterest lists a city's points of interest in insertion order.
func (h *POIHandler) GetPointsOfInterest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetPointsOfInterest", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}/pointsofinterest"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPointsOfInterest"))

	cityID, ok := h.pathID(w, r, l, "cityId")
	if !ok {
		return
	}

	pois, err := h.poiService.GetPointsOfInterest(ctx, cityID)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, pois)
}

// GetPointOfInterest returns a single point of interest belonging to the city.
func (h *POIHandler) GetPointOfInterest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetPointOfInterest", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}/pointsofinterest/{poiId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPointOfInterest"))

	cityID, ok := h.pathID(w, r, l, "cityId")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, l, "poiId")
	if !ok {
		return
	}

	poi, err := h.poiService.GetPointOfInterest(ctx, cityID, poiID)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, poi)
}

// CreatePointOfInterest creates a new point of interest under the city and
// answers 201 with a Location header referencing the new resource.
func (h *POIHandler) CreatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "CreatePointOfInterest", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}/pointsofinterest"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreatePointOfInterest"))

	cityID, ok := h.pathID(w, r, l, "cityId")
	if !ok {
		return
	}

	var input types.PointOfInterestForCreation
	if err := api.DecodeJSONBody(w, r, &input); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	poi, err := h.poiService.CreatePointOfInterest(ctx, cityID, input)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/cities/%d/pointsofinterest/%d", cityID, poi.ID))
	api.WriteJSONResponse(w, r, http.StatusCreated, poi)
}

// UpdatePointOfInterest replaces every mutable field of the target.
func (h *POIHandler) UpdatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "UpdatePointOfInterest", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}/pointsofinterest/{poiId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdatePointOfInterest"))

	cityID, ok := h.pathID(w, r, l, "cityId")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, l, "poiId")
	if !ok {
		return
	}

	var input types.PointOfInterestForUpdate
	if err := api.DecodeJSONBody(w, r, &input); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.poiService.UpdatePointOfInterest(ctx, cityID, poiID, input); err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// PatchPointOfInterest applies an ordered batch of field replacements and
// re-validates the merged result before committing.
func (h *POIHandler) PatchPointOfInterest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "PatchPointOfInterest", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}/pointsofinterest/{poiId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "PatchPointOfInterest"))

	cityID, ok := h.pathID(w, r, l, "cityId")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, l, "poiId")
	if !ok {
		return
	}

	var ops []types.PatchOperation
	if err := api.DecodeJSONBody(w, r, &ops); err != nil {
		l.ErrorContext(ctx, "Failed to decode patch document", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.poiService.PatchPointOfInterest(ctx, cityID, poiID, ops); err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// DeletePointOfInterest removes the target and triggers the deletion
// notification.
func (h *POIHandler) DeletePointOfInterest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "DeletePointOfInterest", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}/pointsofinterest/{poiId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeletePointOfInterest"))

	cityID, ok := h.pathID(w, r, l, "cityId")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, l, "poiId")
	if !ok {
		return
	}

	if err := h.poiService.DeletePointOfInterest(ctx, cityID, poiID); err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *POIHandler) pathID(w http.ResponseWriter, r *http.Request, l *slog.Logger, param string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil {
		l.ErrorContext(r.Context(), "Invalid ID format", slog.String("param", param), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param))
		return 0, false
	}
	return id, true
}

// writeServiceError maps the service error taxonomy onto response codes:
// absence to 404, validation and patch problems to 400 and everything else,
// a store failure, to a generic 500 that leaks nothing about the store.
func (h *POIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	var validationErr *types.ValidationError
	var patchErr *types.PatchError

	switch {
	case errors.Is(err, types.ErrNotFound):
		l.InfoContext(r.Context(), "Resource not found", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, "Resource not found")
	case errors.As(err, &validationErr):
		l.InfoContext(r.Context(), "Validation failed", slog.Any("error", err))
		api.ValidationErrorResponse(w, r, validationErr.Violations)
	case errors.As(err, &patchErr):
		l.InfoContext(r.Context(), "Malformed patch document", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, patchErr.Error())
	default:
		l.ErrorContext(r.Context(), "Store failure", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
