package container

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/city-info-api/app/db"
	"github.com/FACorreiaa/city-info-api/app/mail"
	"github.com/FACorreiaa/city-info-api/config"
	"github.com/FACorreiaa/city-info-api/internal/api/city"
	"github.com/FACorreiaa/city-info-api/internal/api/poi"
)

// Container holds all application dependencies.
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool // nil when the memory store is selected
	Repository  city.Repository
	Notifier    mail.Notifier
	CityHandler *city.CityHandler
	POIHandler  *poi.POIHandler
}

// NewContainer initializes and returns a new dependency container. The
// backing store is selected here, at wiring time; nothing below this layer
// branches on the store kind.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	switch cfg.Repositories.Kind {
	case "", "memory":
		logger.Info("Using in-memory city info repository")
		c.Repository = city.NewMemoryRepository(logger)
	case "postgres":
		dbConfig, err := database.NewDatabaseConfig(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			return nil, err
		}
		pool, err := database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		c.Repository = city.NewPostgresRepository(pool, logger)
	default:
		return nil, fmt.Errorf("unknown repository kind %q", cfg.Repositories.Kind)
	}

	c.Notifier = mail.NewLocalMailService(cfg.Mail.FromAddress, cfg.Mail.ToAddress, logger)

	cityService := city.NewServiceImpl(c.Repository, logger)
	poiService := poi.NewServiceImpl(c.Repository, c.Notifier, logger)

	c.CityHandler = city.NewCityHandler(cityService, logger)
	c.POIHandler = poi.NewPOIHandler(poiService, logger)

	return c, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
