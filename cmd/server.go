package cmd

import (
	"log"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"gorm.io/gorm"

	"apiprovider.GO/api"
	"apiprovider.GO/config"
	"apiprovider.GO/core/auth"
	"apiprovider.GO/core/cache"
	"apiprovider.GO/restapi"
)

// NewServer builds the echo application, migrates the registered models and mounts
// every registered resource. Resource modules run before the application is
// initialized, so their requests are queued and replayed by Init.
func NewServer(db *gorm.DB, store cache.Store) (*restapi.App, *restapi.APIProvider, error) {
	config.LoadAppConfig()

	e := echo.New()
	e.HideBanner = true
	if config.AppConfig.Debug {
		e.Debug = true
		e.Logger.SetLevel(gommonlog.DEBUG)
	}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})
	if mw := auth.Middleware(); mw != nil {
		e.Use(mw)
	}

	if models := api.Models(); len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, nil, err
		}
	}

	provider, err := restapi.New(restapi.DefaultName, nil, restapi.InitConfig{})
	if err != nil {
		return nil, nil, err
	}
	if err := api.ApplyModules(provider); err != nil {
		return nil, nil, err
	}
	log.Printf("Queued %d resource APIs", provider.Pending(nil))

	app := restapi.NewApp(e)
	err = provider.Init(app, restapi.InitConfig{
		DB:        db,
		Cache:     store,
		URLPrefix: config.AppConfig.APIPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	api.ApplyRoutes(e, db)
	return app, provider, nil
}
