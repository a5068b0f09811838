package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/city-info-api/internal/api/city"
	"github.com/FACorreiaa/city-info-api/internal/api/poi"
)

// Config contains the handlers needed for the router setup.
type Config struct {
	CityHandler *city.CityHandler
	POIHandler  *poi.POIHandler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cities", func(r chi.Router) {
			r.Get("/", cfg.CityHandler.GetCities)

			r.Route("/{cityId}", func(r chi.Router) {
				r.Get("/", cfg.CityHandler.GetCity)
				r.Delete("/", cfg.CityHandler.DeleteCity)

				r.Route("/pointsofinterest", func(r chi.Router) {
					r.Get("/", cfg.POIHandler.GetPointsOfInterest)
					r.Post("/", cfg.POIHandler.CreatePointOfInterest)

					r.Route("/{poiId}", func(r chi.Router) {
						r.Get("/", cfg.POIHandler.GetPointOfInterest)
						r.Put("/", cfg.POIHandler.UpdatePointOfInterest)
						r.Patch("/", cfg.POIHandler.PatchPointOfInterest)
						r.Delete("/", cfg.POIHandler.DeletePointOfInterest)
					})
				})
			})
		})
	})

	return r
}
