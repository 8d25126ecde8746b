package api

import (
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"apiprovider.GO/core/registry"
	"apiprovider.GO/restapi"
)

var mu sync.Mutex

// --- REST resource modules ---

// ModuleFunc declares resources on a provider, usually through CreateAPI.
type ModuleFunc func(p *restapi.APIProvider) error

type module struct {
	fn    ModuleFunc
	model interface{}
}

func getModules() []module {
	if v, ok := registry.GlobalRegistry.Get(registry.KeyRegistryAPI); ok && v != nil {
		return v.([]module)
	}
	return nil
}

func register(m module) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryAPI) {
		panic("api/registry: API modules locked (register only during init)")
	}
	registry.GlobalRegistry.Set(registry.KeyRegistryAPI, append(getModules(), m))
}

// RegisterModule registers a resource module. Call from init() in API packages.
func RegisterModule(fn ModuleFunc) {
	register(module{fn: fn})
}

// RegisterResource registers model under the options accepted by
// restapi.DecodeRequest. Panics on unknown or malformed options.
func RegisterResource(model interface{}, opts map[string]interface{}) {
	all := map[string]interface{}{"model": model}
	for k, v := range opts {
		all[k] = v
	}
	req, err := restapi.DecodeRequest(all)
	if err != nil {
		panic(fmt.Sprintf("api/registry: resource %v: %v", opts["collection_name"], err))
	}
	register(module{
		model: model,
		fn: func(p *restapi.APIProvider) error {
			return p.CreateAPI(nil, req)
		},
	})
}

// Models returns the models of every resource registered with RegisterResource,
// in registration order.
func Models() []interface{} {
	var out []interface{}
	for _, m := range getModules() {
		if m.model != nil {
			out = append(out, m.model)
		}
	}
	return out
}

// ApplyModules runs all registered modules against p. Locks the registry.
func ApplyModules(p *restapi.APIProvider) error {
	defer registry.GlobalRegistry.Lock(registry.KeyRegistryAPI)
	for _, m := range getModules() {
		if err := m.fn(p); err != nil {
			return err
		}
	}
	return nil
}

// --- Root-level routes (public: health, custom, etc.) ---

// RouteFunc registers routes on the root Echo instance.
type RouteFunc func(e *echo.Echo, db *gorm.DB)

func getRoutes() []RouteFunc {
	if v, ok := registry.GlobalRegistry.Get(registry.KeyRegistryRoutes); ok && v != nil {
		return v.([]RouteFunc)
	}
	return nil
}

// RegisterRoute registers a root-level route module. Call from init().
func RegisterRoute(fn RouteFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryRoutes) {
		panic("api/registry: routes locked (register only during init)")
	}
	registry.GlobalRegistry.Set(registry.KeyRegistryRoutes, append(getRoutes(), fn))
}

// RegisterGET is shorthand for registering a simple GET route on root.
func RegisterGET(path string, handler echo.HandlerFunc) {
	RegisterRoute(func(e *echo.Echo, _ *gorm.DB) {
		e.GET(path, handler)
	})
}

// ApplyRoutes calls all registered root-level routes. Locks the registry.
func ApplyRoutes(e *echo.Echo, db *gorm.DB) {
	for _, fn := range getRoutes() {
		fn(e, db)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryRoutes)
}
