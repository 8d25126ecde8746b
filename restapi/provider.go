package restapi

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"apiprovider.GO/core/cache"
	"apiprovider.GO/view"
)

// DefaultName is the extension name used when New is given none.
const DefaultName = "restapi"

// ViewFactory builds the handler serving one resource.
type ViewFactory func(cfg view.Config) (echo.HandlerFunc, error)

// InitConfig is the shared configuration bound to an application by Init.
type InitConfig struct {
	// ViewFactory defaults to view.Factory.
	ViewFactory ViewFactory
	Preprocess  view.Hooks
	Postprocess view.Hooks
	DB          *gorm.DB
	Cache       cache.Store
	// URLPrefix is used by requests that name none. Defaults to DefaultURLPrefix.
	URLPrefix string
}

// APIProvider creates REST route groups for data models and mounts them on bound
// applications. Requests made before their application is bound are queued and
// replayed by Init.
//
// Registration is meant to run during bootstrap and is not safe for concurrent use.
type APIProvider struct {
	Name string

	app         *App
	fixedApp    bool
	viewFactory ViewFactory
	pending     *PendingQueue
}

// New returns a provider. A non-nil app becomes the provider's fixed application
// and is initialized with cfg immediately. A new provider has nothing queued, so
// that Init can only fail on binding, which leaves app untouched.
func New(name string, app *App, cfg InitConfig) (*APIProvider, error) {
	if name == "" {
		name = DefaultName
	}
	p := &APIProvider{
		Name:        name,
		viewFactory: view.Factory,
		pending:     NewPendingQueue(),
	}
	if app != nil {
		p.fixedApp = true
		if err := p.Init(app, cfg); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// App returns the default application, if any.
func (p *APIProvider) App() *App { return p.app }

// Pending returns the number of requests queued for app (nil for unbound requests).
func (p *APIProvider) Pending(app *App) int { return p.pending.Len(app) }

// Init binds the provider to app and mounts every request queued for app, then
// every request queued with no application. It stops at the first request that
// fails: groups mounted before it stay, the rest of the drained requests are
// discarded and app stays bound.
func (p *APIProvider) Init(app *App, cfg InitConfig) error {
	if app == nil {
		return fmt.Errorf("%w: application is required", ErrInvalidArgument)
	}
	rec, err := Bind(app, p.Name, cfg.DB, cfg.Cache, cfg.Preprocess, cfg.Postprocess)
	if err != nil {
		return err
	}
	if cfg.URLPrefix != "" {
		rec.URLPrefix = cfg.URLPrefix
	}
	if p.app == nil {
		p.app = app
	}
	if cfg.ViewFactory != nil {
		p.viewFactory = cfg.ViewFactory
	}

	for _, req := range p.pending.Drain(app) {
		if err := p.mount(app, req); err != nil {
			return err
		}
	}
	return nil
}

// CreateAPI exposes req on app. With a nil app the default application is used.
// The request is queued instead when its application is not bound yet, or when
// there is no application at all.
func (p *APIProvider) CreateAPI(app *App, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	if app != nil {
		if p.fixedApp {
			return fmt.Errorf("%w: cannot provide an application in the provider constructor and in CreateAPI; must choose exactly one", ErrInvalidArgument)
		}
		if !IsBound(app, p.Name) {
			p.pending.Enqueue(app, req)
			app.Echo.Logger.Debugf("restapi: queued %q until application is initialized", req.CollectionName)
			return nil
		}
		return p.mount(app, req)
	}
	if p.app == nil {
		p.pending.Enqueue(nil, req)
		return nil
	}
	return p.mount(p.app, req)
}

func (p *APIProvider) mount(app *App, req Request) error {
	bp, err := p.CreateAPIBlueprint(app, req)
	if err != nil {
		return err
	}
	return app.Mount(bp)
}

// CreateAPIBlueprint builds the route group for req on app without mounting it.
func (p *APIProvider) CreateAPIBlueprint(app *App, req Request) (*Blueprint, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if app == nil {
		app = p.app
	}
	if app == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, p.Name)
	}
	rec, err := Lookup(app, p.Name)
	if err != nil {
		return nil, err
	}
	req = req.withDefaults(rec.URLPrefix)

	noInstance, instance := PartitionMethods(req.Methods)
	name, err := NextBlueprintName(app.BlueprintNames(), APIName(req.CollectionName))
	if err != nil {
		return nil, err
	}

	cfg := view.Config{
		Model:             req.Model,
		CollectionName:    req.CollectionName,
		ExcludeColumns:    req.ExcludeColumns,
		IncludeColumns:    req.IncludeColumns,
		IncludeMethods:    req.IncludeMethods,
		ResultsPerPage:    req.ResultsPerPage,
		MaxResultsPerPage: req.MaxResultsPerPage,
		Preprocess:        view.MergeHooks(rec.Preprocess, req.Preprocess),
		Postprocess:       view.MergeHooks(rec.Postprocess, req.Postprocess),
		PrimaryKey:        req.PrimaryKey,
		DB:                rec.DB,
		Cache:             rec.Cache,
		CacheKeyPrefix:    name,
	}
	handler, err := p.viewFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, req.CollectionName, err)
	}

	return &Blueprint{
		Name:               name,
		URLPrefix:          req.URLPrefix,
		CollectionEndpoint: collectionEndpoint(req.CollectionName),
		InstanceEndpoint:   instanceEndpoint(req.CollectionName),
		NoInstanceMethods:  noInstance,
		InstanceMethods:    instance,
		Handler:            handler,
		View:               cfg,
	}, nil
}
