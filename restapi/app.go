package restapi

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"apiprovider.GO/core/registry"
)

// App is an echo application together with its extension table and the set of
// route groups mounted on it.
type App struct {
	Echo       *echo.Echo
	Extensions *registry.Registry

	blueprints map[string]*Blueprint
	order      []string
}

// NewApp wraps e. A nil e gets a fresh echo instance.
func NewApp(e *echo.Echo) *App {
	if e == nil {
		e = echo.New()
	}
	return &App{
		Echo:       e,
		Extensions: registry.New(),
		blueprints: make(map[string]*Blueprint),
	}
}

// BlueprintNames returns mounted blueprint names in mount order.
func (a *App) BlueprintNames() []string {
	return append([]string(nil), a.order...)
}

// Blueprint returns the mounted blueprint with the given name.
func (a *App) Blueprint(name string) (*Blueprint, bool) {
	bp, ok := a.blueprints[name]
	return bp, ok
}

// Mount registers bp's routes on the echo application: the collection endpoint for
// the no-instance methods and the instance endpoint for the instance methods, named
// <mount>_nim and <mount>_im.
func (a *App) Mount(bp *Blueprint) error {
	if _, ok := a.blueprints[bp.Name]; ok {
		return fmt.Errorf("%w: blueprint %q already mounted", ErrInvalidArgument, bp.Name)
	}
	g := a.Echo.Group(bp.URLPrefix)
	for _, m := range bp.NoInstanceMethods {
		g.Add(m, bp.CollectionEndpoint, bp.Handler).Name = bp.NoInstanceRouteName()
	}
	for _, m := range bp.InstanceMethods {
		g.Add(m, bp.InstanceEndpoint, bp.Handler).Name = bp.InstanceRouteName()
	}
	a.blueprints[bp.Name] = bp
	a.order = append(a.order, bp.Name)
	a.Echo.Logger.Infof("restapi: mounted %s at %s%s %v, %s%s %v", bp.Name,
		bp.URLPrefix, bp.CollectionEndpoint, bp.NoInstanceMethods,
		bp.URLPrefix, bp.InstanceEndpoint, bp.InstanceMethods)
	return nil
}
