package poi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/city-info-api/internal/types"
)

// MockPOIService is a mock implementation of Service
type MockPOIService struct {
	mock.Mock
}

func (m *MockPOIService) GetPointsOfInterest(ctx context.Context, cityID int) ([]types.PointOfInterest, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PointOfInterest), args.Error(1)
}

func (m *MockPOIService) GetPointOfInterest(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	args := m.Called(ctx, cityID, poiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PointOfInterest), args.Error(1)
}

func (m *MockPOIService) CreatePointOfInterest(ctx context.Context, cityID int, input types.PointOfInterestForCreation) (*types.PointOfInterest, error) {
	args := m.Called(ctx, cityID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PointOfInterest), args.Error(1)
}

func (m *MockPOIService) UpdatePointOfInterest(ctx context.Context, cityID, poiID int, input types.PointOfInterestForUpdate) error {
	args := m.Called(ctx, cityID, poiID, input)
	return args.Error(0)
}

func (m *MockPOIService) PatchPointOfInterest(ctx context.Context, cityID, poiID int, ops []types.PatchOperation) error {
	args := m.Called(ctx, cityID, poiID, ops)
	return args.Error(0)
}

func (m *MockPOIService) DeletePointOfInterest(ctx context.Context, cityID, poiID int) error {
	args := m.Called(ctx, cityID, poiID)
	return args.Error(0)
}

// Helper to mount the handler on the routes it serves in production.
func setupPOIHandlerTest() (*chi.Mux, *MockPOIService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockPOIService)
	handler := NewPOIHandler(mockService, logger)

	r := chi.NewRouter()
	r.Route("/api/cities/{cityId}/pointsofinterest", func(r chi.Router) {
		r.Get("/", handler.GetPointsOfInterest)
		r.Post("/", handler.CreatePointOfInterest)
		r.Route("/{poiId}", func(r chi.Router) {
			r.Get("/", handler.GetPointOfInterest)
			r.Put("/", handler.UpdatePointOfInterest)
			r.Patch("/", handler.PatchPointOfInterest)
			r.Delete("/", handler.DeletePointOfInterest)
		})
	})
	return r, mockService
}

func TestPOIHandler_GetPointsOfInterest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("GetPointsOfInterest", mock.Anything, 1).Return([]types.PointOfInterest{
			{ID: 1, CityID: 1, Name: "Central Park"},
			{ID: 2, CityID: 1, Name: "Empire State Building"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/1/pointsofinterest", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var pois []types.PointOfInterest
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pois))
		require.Len(t, pois, 2)
		assert.Equal(t, "Central Park", pois[0].Name)
		mockService.AssertExpectations(t)
	})

	t.Run("city not found", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("GetPointsOfInterest", mock.Anything, 99).Return(nil, types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/99/pointsofinterest", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non-numeric city id", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/abc/pointsofinterest", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetPointsOfInterest", mock.Anything, mock.Anything)
	})

	t.Run("store failure is opaque", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("GetPointsOfInterest", mock.Anything, 1).
			Return(nil, errors.New("pq: connection refused")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/1/pointsofinterest", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}

func TestPOIHandler_GetPointOfInterest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("GetPointOfInterest", mock.Anything, 1, 1).
			Return(&types.PointOfInterest{ID: 1, CityID: 1, Name: "Central Park"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/1/pointsofinterest/1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var poi types.PointOfInterest
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &poi))
		assert.Equal(t, 1, poi.ID)
		assert.Equal(t, "Central Park", poi.Name)
	})

	t.Run("not found", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("GetPointOfInterest", mock.Anything, 1, 42).Return(nil, types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/cities/1/pointsofinterest/42", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPOIHandler_CreatePointOfInterest(t *testing.T) {
	t.Run("created with location header", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		input := types.PointOfInterestForCreation{Name: "Rockefeller Center", Description: strPtr("Famous for its Christmas tree.")}
		mockService.On("CreatePointOfInterest", mock.Anything, 1, input).
			Return(&types.PointOfInterest{ID: 7, CityID: 1, Name: input.Name, Description: input.Description}, nil).Once()

		body := `{"name":"Rockefeller Center","description":"Famous for its Christmas tree."}`
		req := httptest.NewRequest(http.MethodPost, "/api/cities/1/pointsofinterest", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "/api/cities/1/pointsofinterest/7", rr.Header().Get("Location"))
		var poi types.PointOfInterest
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &poi))
		assert.Equal(t, 7, poi.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("validation failure lists every violation", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("CreatePointOfInterest", mock.Anything, 1, mock.Anything).
			Return(nil, &types.ValidationError{Violations: []types.FieldViolation{
				{Field: "name", Message: "You should provide the name value"},
				{Field: "description", Message: "The description must not exceed 200 characters"},
			}}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/cities/1/pointsofinterest",
			strings.NewReader(`{"name":""}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var resp struct {
			Violations []types.FieldViolation `json:"violations"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Violations, 2)
	})

	t.Run("malformed body", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()

		req := httptest.NewRequest(http.MethodPost, "/api/cities/1/pointsofinterest",
			strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreatePointOfInterest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("city not found", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("CreatePointOfInterest", mock.Anything, 99, mock.Anything).
			Return(nil, types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/cities/99/pointsofinterest",
			strings.NewReader(`{"name":"Somewhere"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPOIHandler_UpdatePointOfInterest(t *testing.T) {
	t.Run("no content on success", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		input := types.PointOfInterestForUpdate{Name: "Updated Park", Description: strPtr("Updated description.")}
		mockService.On("UpdatePointOfInterest", mock.Anything, 1, 1, input).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/cities/1/pointsofinterest/1",
			strings.NewReader(`{"name":"Updated Park","description":"Updated description."}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("omitted description clears it", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		input := types.PointOfInterestForUpdate{Name: "Updated Park", Description: nil}
		mockService.On("UpdatePointOfInterest", mock.Anything, 1, 1, input).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/cities/1/pointsofinterest/1",
			strings.NewReader(`{"name":"Updated Park"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("target not found", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("UpdatePointOfInterest", mock.Anything, 1, 42, mock.Anything).
			Return(types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/cities/1/pointsofinterest/42",
			strings.NewReader(`{"name":"X"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPOIHandler_PatchPointOfInterest(t *testing.T) {
	t.Run("no content on success", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		ops := []types.PatchOperation{{Op: "replace", Path: "/description", Value: strPtr("An urban oasis.")}}
		mockService.On("PatchPointOfInterest", mock.Anything, 1, 1, ops).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/api/cities/1/pointsofinterest/1",
			strings.NewReader(`[{"op":"replace","path":"/description","value":"An urban oasis."}]`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("malformed patch document", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("PatchPointOfInterest", mock.Anything, 1, 1, mock.Anything).
			Return(&types.PatchError{Reason: "path /id is read-only"}).Once()

		req := httptest.NewRequest(http.MethodPatch, "/api/cities/1/pointsofinterest/1",
			strings.NewReader(`[{"op":"replace","path":"/id","value":"9"}]`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("merged state invalid", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("PatchPointOfInterest", mock.Anything, 1, 1, mock.Anything).
			Return(&types.ValidationError{Violations: []types.FieldViolation{
				{Field: "description", Message: "The description should be different from the name"},
			}}).Once()

		req := httptest.NewRequest(http.MethodPatch, "/api/cities/1/pointsofinterest/1",
			strings.NewReader(`[{"op":"replace","path":"/description","value":"Central Park"}]`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "different from the name")
	})
}

func TestPOIHandler_DeletePointOfInterest(t *testing.T) {
	t.Run("no content on success", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("DeletePointOfInterest", mock.Anything, 1, 1).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/cities/1/pointsofinterest/1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, mockService := setupPOIHandlerTest()
		mockService.On("DeletePointOfInterest", mock.Anything, 1, 42).Return(types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/cities/1/pointsofinterest/42", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
