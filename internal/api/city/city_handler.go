package city

import (
	"errors"
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

type CityHandler struct {
	cityService Service
	logger      *slog.Logger
}

func NewCityHandler(cityService Service, logger *slog.Logger) *CityHandler {
	return &CityHandler{
		cityService: cityService,
		logger:      logger,
	}
}

// GetCities returns all cities ordered by name, without their points of interest.
func (h *CityHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetCities", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetCities"))
	l.DebugContext(ctx, "Get Cities handler invoked")

	cities, err := h.cityService.GetCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list cities", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list cities")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, cities)
}

// GetCity returns a single city; pass includePointsOfInterest=true to embed
// its children.
func (h *CityHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetCity", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetCity"))

	cityID, err := strconv.Atoi(chi.URLParam(r, "cityId"))
	if err != nil {
		l.ErrorContext(ctx, "Invalid city ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid city ID format")
		return
	}
	includePointsOfInterest, _ := strconv.ParseBool(r.URL.Query().Get("includePointsOfInterest"))

	city, err := h.cityService.GetCity(ctx, cityID, includePointsOfInterest)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.InfoContext(ctx, "City not found", slog.Int("cityID", cityID))
			api.ErrorResponse(w, r, http.StatusNotFound, "City not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get city", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get city")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, city)
}

// DeleteCity removes a city and all of its points of interest.
func (h *CityHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "DeleteCity", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cities/{cityId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteCity"))

	cityID, err := strconv.Atoi(chi.URLParam(r, "cityId"))
	if err != nil {
		l.ErrorContext(ctx, "Invalid city ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid city ID format")
		return
	}

	if err := h.cityService.DeleteCity(ctx, cityID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.InfoContext(ctx, "City not found", slog.Int("cityID", cityID))
			api.ErrorResponse(w, r, http.StatusNotFound, "City not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete city", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete city")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
