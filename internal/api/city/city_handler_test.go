package city

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/city-info-api/internal/types"
)

// MockCityService is a mock implementation of Service
type MockCityService struct {
	mock.Mock
}

func (m *MockCityService) GetCities(ctx context.Context) ([]types.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.City), args.Error(1)
}

func (m *MockCityService) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*types.City, error) {
	args := m.Called(ctx, cityID, includePointsOfInterest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.City), args.Error(1)
}

func (m *MockCityService) DeleteCity(ctx context.Context, cityID int) error {
	args := m.Called(ctx, cityID)
	return args.Error(0)
}

func setupCityHandlerTest() (*chi.Mux, *MockCityService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockCityService)
	handler := NewCityHandler(mockService, logger)

	r := chi.NewRouter()
	r.Route("/api/cities", func(r chi.Router) {
		r.Get("/", handler.GetCities)
		r.Route("/{cityId}", func(r chi.Router) {
			r.Get("/", handler.GetCity)
			r.Delete("/", handler.DeleteCity)
		})
	})
	return r, mockService
}

func TestCityHandler_GetCities(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()
		mockService.On("GetCities", mock.Anything).Return([]types.City{
			{ID: 2, Name: "Antwerp"},
			{ID: 1, Name: "New York City"},
			{ID: 3, Name: "Paris"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var cities []types.City
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cities))
		require.Len(t, cities, 3)
		assert.Equal(t, "Antwerp", cities[0].Name)
		mockService.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()
		mockService.On("GetCities", mock.Anything).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "db down")
	})
}

func TestCityHandler_GetCity(t *testing.T) {
	t.Run("without points of interest by default", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()
		mockService.On("GetCity", mock.Anything, 1, false).
			Return(&types.City{ID: 1, Name: "New York City"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var city types.City
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &city))
		assert.Equal(t, "New York City", city.Name)
		assert.NotContains(t, rr.Body.String(), "pointsOfInterest")
		mockService.AssertExpectations(t)
	})

	t.Run("includePointsOfInterest flag reaches the service", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()
		mockService.On("GetCity", mock.Anything, 1, true).
			Return(&types.City{ID: 1, Name: "New York City", PointsOfInterest: []types.PointOfInterest{
				{ID: 1, CityID: 1, Name: "Central Park"},
			}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/1?includePointsOfInterest=true", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var city types.City
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &city))
		require.Len(t, city.PointsOfInterest, 1)
		mockService.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()
		mockService.On("GetCity", mock.Anything, 99, false).Return(nil, types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/99", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetCity", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCityHandler_DeleteCity(t *testing.T) {
	t.Run("no content on success", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()
		mockService.On("DeleteCity", mock.Anything, 2).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/cities/2", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, mockService := setupCityHandlerTest()
		mockService.On("DeleteCity", mock.Anything, 99).Return(types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/cities/99", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
