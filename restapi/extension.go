package restapi

import (
	"fmt"

	"gorm.io/gorm"

	"apiprovider.GO/core/cache"
	"apiprovider.GO/core/registry"
	"apiprovider.GO/view"
)

// ExtensionRecord is the state an extension keeps on one application: the backing
// store and the hooks applied to every resource it registers there.
type ExtensionRecord struct {
	Name        string
	URLPrefix   string
	DB          *gorm.DB
	Cache       cache.Store
	Preprocess  view.Hooks
	Postprocess view.Hooks
}

// AddPreprocess appends hooks to the global preprocessors for event.
func (r *ExtensionRecord) AddPreprocess(event string, hooks ...view.Hook) {
	r.Preprocess[event] = append(r.Preprocess[event], hooks...)
}

// AddPostprocess appends hooks to the global postprocessors for event.
func (r *ExtensionRecord) AddPostprocess(event string, hooks ...view.Hook) {
	r.Postprocess[event] = append(r.Postprocess[event], hooks...)
}

// Bind creates the record for name on app. Binding is one-shot per application.
func Bind(app *App, name string, db *gorm.DB, store cache.Store, pre, post view.Hooks) (*ExtensionRecord, error) {
	rec := &ExtensionRecord{
		Name:        name,
		URLPrefix:   DefaultURLPrefix,
		DB:          db,
		Cache:       store,
		Preprocess:  view.MergeHooks(pre, nil),
		Postprocess: view.MergeHooks(post, nil),
	}
	if !app.Extensions.SetIfAbsent(registry.ExtensionKey(name), rec) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateExtension, name)
	}
	return rec, nil
}

// Lookup returns the record for name on app.
func Lookup(app *App, name string) (*ExtensionRecord, error) {
	v, ok := app.Extensions.Get(registry.ExtensionKey(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, name)
	}
	rec, ok := v.(*ExtensionRecord)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrNotBound, name, v)
	}
	return rec, nil
}

// IsBound reports whether name has a record on app.
func IsBound(app *App, name string) bool {
	_, err := Lookup(app, name)
	return err == nil
}
