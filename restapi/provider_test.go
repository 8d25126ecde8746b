package restapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"apiprovider.GO/core/cache"
	"apiprovider.GO/model/entity"
	"apiprovider.GO/view"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "restapi.db")), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Widget{}, &entity.Gadget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// spyFactory records every view config it is asked to build.
type spyFactory struct {
	configs []view.Config
}

func (s *spyFactory) build(cfg view.Config) (echo.HandlerFunc, error) {
	s.configs = append(s.configs, cfg)
	return func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, nil
}

func routeNames(e *echo.Echo) map[string]string {
	out := map[string]string{}
	for _, r := range e.Routes() {
		out[r.Method+" "+r.Path] = r.Name
	}
	return out
}

func do(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var b []byte
	if body != nil {
		b, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v (status %d)", err, rec.Code)
	}
	return out
}

func TestCreateAPI_BeforeInit(t *testing.T) {
	p, err := New("", nil, InitConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = p.CreateAPI(nil, Request{
		CollectionName: "widgets",
		Model:          &entity.Widget{},
		Methods:        []string{"GET", "POST"},
	})
	if err != nil {
		t.Fatalf("CreateAPI: %v", err)
	}
	if p.Pending(nil) != 1 {
		t.Fatalf("Pending(nil) = %d, want 1", p.Pending(nil))
	}

	app := NewApp(nil)
	if err := p.Init(app, InitConfig{DB: testDB(t)}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.Pending(nil) != 0 {
		t.Errorf("Pending(nil) after Init = %d, want 0", p.Pending(nil))
	}
	if names := app.BlueprintNames(); len(names) != 1 || names[0] != "widgetsapi0" {
		t.Fatalf("BlueprintNames = %v, want [widgetsapi0]", names)
	}

	routes := routeNames(app.Echo)
	if got := routes["POST /api/widgets"]; got != "widgetsapi0_nim" {
		t.Errorf("POST /api/widgets name = %q, want widgetsapi0_nim", got)
	}
	if got := routes["GET /api/widgets/:instid"]; got != "widgetsapi0_im" {
		t.Errorf("GET /api/widgets/:instid name = %q, want widgetsapi0_im", got)
	}
	if _, ok := routes["GET /api/widgets"]; ok {
		t.Error("collection endpoint should not accept GET")
	}
	if _, ok := routes["POST /api/widgets/:instid"]; ok {
		t.Error("instance endpoint should not accept POST")
	}

	rec := do(app.Echo, http.MethodPost, "/api/widgets", map[string]interface{}{"name": "sprocket", "sku": "w-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	rec = do(app.Echo, http.MethodGet, "/api/widgets/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["name"] != "sprocket" {
		t.Errorf("name = %v, want sprocket", got["name"])
	}
	if rec := do(app.Echo, http.MethodDelete, "/api/widgets/1", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}
}

func TestCreateAPI_RepeatedNames(t *testing.T) {
	spy := &spyFactory{}
	p, _ := New("", nil, InitConfig{})
	app := NewApp(nil)
	if err := p.Init(app, InitConfig{ViewFactory: spy.build}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := p.CreateAPI(app, Request{CollectionName: "widgets", Model: &entity.Widget{}}); err != nil {
			t.Fatalf("CreateAPI %d: %v", i, err)
		}
	}
	names := app.BlueprintNames()
	if len(names) != 2 || names[0] != "widgetsapi0" || names[1] != "widgetsapi1" {
		t.Errorf("BlueprintNames = %v, want [widgetsapi0 widgetsapi1]", names)
	}
}

func TestCreateAPI_DeferredOrdering(t *testing.T) {
	spy := &spyFactory{}
	p, _ := New("", nil, InitConfig{})
	app := NewApp(nil)
	if err := p.CreateAPI(app, Request{CollectionName: "first"}); err != nil {
		t.Fatalf("CreateAPI first: %v", err)
	}
	if err := p.CreateAPI(nil, Request{CollectionName: "second"}); err != nil {
		t.Fatalf("CreateAPI second: %v", err)
	}
	if p.Pending(app) != 1 || p.Pending(nil) != 1 {
		t.Fatalf("Pending = %d/%d, want 1/1", p.Pending(app), p.Pending(nil))
	}
	if err := p.Init(app, InitConfig{ViewFactory: spy.build}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	names := app.BlueprintNames()
	if len(names) != 2 || names[0] != "firstapi0" || names[1] != "secondapi0" {
		t.Errorf("mount order = %v, want [firstapi0 secondapi0]", names)
	}
	if p.App() != app {
		t.Error("Init should make app the default application")
	}
}

func TestCreateAPI_DefaultApplication(t *testing.T) {
	spy := &spyFactory{}
	app := NewApp(nil)
	p, err := New("restapi", app, InitConfig{ViewFactory: spy.build})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.CreateAPI(nil, Request{CollectionName: "widgets"}); err != nil {
		t.Fatalf("CreateAPI: %v", err)
	}
	if names := app.BlueprintNames(); len(names) != 1 {
		t.Errorf("BlueprintNames = %v, want one", names)
	}

	err = p.CreateAPI(app, Request{CollectionName: "widgets"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("CreateAPI with app and constructor app: err = %v, want ErrInvalidArgument", err)
	}
}

func TestCreateAPI_InvalidRequest(t *testing.T) {
	spy := &spyFactory{}
	p, _ := New("", nil, InitConfig{})
	app := NewApp(nil)
	p.Init(app, InitConfig{ViewFactory: spy.build})

	tests := []struct {
		name string
		req  Request
	}{
		{"missing collection", Request{Model: &entity.Widget{}}},
		{"both column filters", Request{CollectionName: "widgets", IncludeColumns: []string{"id"}, ExcludeColumns: []string{"name"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.CreateAPI(app, tt.req); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
			// unbound and queued paths validate too
			if err := p.CreateAPI(NewApp(nil), tt.req); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("unbound app: err = %v, want ErrInvalidArgument", err)
			}
		})
	}
	if len(spy.configs) != 0 {
		t.Errorf("view factory called %d times, want 0", len(spy.configs))
	}
	if names := app.BlueprintNames(); len(names) != 0 {
		t.Errorf("BlueprintNames = %v, want none", names)
	}
	if len(app.Echo.Routes()) != 0 {
		t.Errorf("routes = %d, want 0", len(app.Echo.Routes()))
	}
}

func TestCreateAPIBlueprint_NotBound(t *testing.T) {
	p, _ := New("", nil, InitConfig{})
	_, err := p.CreateAPIBlueprint(NewApp(nil), Request{CollectionName: "widgets"})
	if !errors.Is(err, ErrNotBound) {
		t.Errorf("err = %v, want ErrNotBound", err)
	}
}

func TestCreateAPIBlueprint_Descriptor(t *testing.T) {
	var calls []string
	hook := func(tag string) view.Hook {
		return func(echo.Context, *view.Payload) error {
			calls = append(calls, tag)
			return nil
		}
	}
	spy := &spyFactory{}
	app := NewApp(nil)
	p, _ := New("", app, InitConfig{
		ViewFactory: spy.build,
		Preprocess:  view.Hooks{view.EventGetSingle: {hook("global")}},
	})

	bp, err := p.CreateAPIBlueprint(nil, Request{
		CollectionName: "gadgets",
		Model:          &entity.Gadget{},
		Methods:        []string{"get", "post", "delete", "head"},
		URLPrefix:      "/v2",
		ExcludeColumns: []string{"id"},
		Preprocess: view.Hooks{
			view.EventGetSingle: {hook("local")},
			view.EventPost:      {hook("post")},
		},
		PrimaryKey: "code",
	})
	if err != nil {
		t.Fatalf("CreateAPIBlueprint: %v", err)
	}
	if bp.Name != "gadgetsapi0" || bp.URLPrefix != "/v2" {
		t.Errorf("Name, URLPrefix = %q, %q; want gadgetsapi0, /v2", bp.Name, bp.URLPrefix)
	}
	if bp.CollectionEndpoint != "/gadgets" || bp.InstanceEndpoint != "/gadgets/:instid" {
		t.Errorf("endpoints = %q, %q", bp.CollectionEndpoint, bp.InstanceEndpoint)
	}
	if len(bp.NoInstanceMethods) != 1 || bp.NoInstanceMethods[0] != "POST" {
		t.Errorf("NoInstanceMethods = %v, want [POST]", bp.NoInstanceMethods)
	}
	if len(bp.InstanceMethods) != 2 || bp.InstanceMethods[0] != "GET" || bp.InstanceMethods[1] != "DELETE" {
		t.Errorf("InstanceMethods = %v, want [GET DELETE]", bp.InstanceMethods)
	}
	if len(app.BlueprintNames()) != 0 {
		t.Error("CreateAPIBlueprint must not mount")
	}

	if len(spy.configs) != 1 {
		t.Fatalf("view factory called %d times, want 1", len(spy.configs))
	}
	cfg := spy.configs[0]
	if cfg.PrimaryKey != "code" || cfg.ResultsPerPage != 10 || cfg.MaxResultsPerPage != 100 || cfg.CacheKeyPrefix != "gadgetsapi0" {
		t.Errorf("view config = %+v", cfg)
	}
	for _, h := range cfg.Preprocess[view.EventGetSingle] {
		h(nil, &view.Payload{})
	}
	if len(calls) != 2 || calls[0] != "global" || calls[1] != "local" {
		t.Errorf("merged GET_SINGLE hooks ran %v, want [global local]", calls)
	}
	if n := len(cfg.Preprocess[view.EventPost]); n != 1 {
		t.Errorf("merged POST hooks = %d, want 1", n)
	}
}

func TestInit_StopsAtFailedRequest(t *testing.T) {
	spy := &spyFactory{}
	failing := func(cfg view.Config) (echo.HandlerFunc, error) {
		if cfg.CollectionName == "gadgets" {
			return nil, errors.New("no gadgets today")
		}
		return spy.build(cfg)
	}
	p, _ := New("", nil, InitConfig{})
	for _, name := range []string{"widgets", "gadgets", "sprockets"} {
		if err := p.CreateAPI(nil, Request{CollectionName: name, Model: &entity.Widget{}}); err != nil {
			t.Fatalf("CreateAPI(%s): %v", name, err)
		}
	}

	app := NewApp(nil)
	err := p.Init(app, InitConfig{ViewFactory: failing})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Init err = %v, want ErrInvalidArgument", err)
	}
	if got := app.BlueprintNames(); len(got) != 1 || got[0] != "widgetsapi0" {
		t.Errorf("mounted = %v, want [widgetsapi0]", got)
	}
	if p.Pending(nil) != 0 {
		t.Errorf("Pending(nil) = %d, want 0", p.Pending(nil))
	}
	if !IsBound(app, p.Name) {
		t.Error("app not bound after failed Init")
	}
	if err := p.CreateAPI(nil, Request{CollectionName: "sprockets", Model: &entity.Widget{}}); err != nil {
		t.Fatalf("CreateAPI after failed Init: %v", err)
	}
	if _, ok := app.Blueprint("sprocketsapi0"); !ok {
		t.Error("sprocketsapi0 not mounted on retry")
	}
}

func TestCreateAPI_SharedCachePerGroup(t *testing.T) {
	db := testDB(t)
	db.Create(&entity.Widget{SKU: "SECRET", Name: "n", Price: 9})
	app := NewApp(nil)
	p, err := New("", app, InitConfig{DB: db, Cache: cache.NewCache()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.CreateAPI(nil, Request{CollectionName: "widgets", Model: &entity.Widget{}}); err != nil {
		t.Fatalf("CreateAPI: %v", err)
	}
	if err := p.CreateAPI(nil, Request{CollectionName: "widgets", Model: &entity.Widget{}, URLPrefix: "/api/v2",
		IncludeColumns: []string{"id", "name"}}); err != nil {
		t.Fatalf("CreateAPI v2: %v", err)
	}

	if got := decode(t, do(app.Echo, http.MethodGet, "/api/widgets/1", nil)); got["sku"] != "SECRET" {
		t.Fatalf("GET /api/widgets/1 = %v", got)
	}
	got := decode(t, do(app.Echo, http.MethodGet, "/api/v2/widgets/1", nil))
	if _, ok := got["sku"]; ok || got["name"] != "n" {
		t.Errorf("GET /api/v2/widgets/1 = %v, want only id and name", got)
	}
}

func TestInit_Duplicate(t *testing.T) {
	p, _ := New("", nil, InitConfig{})
	app := NewApp(nil)
	if err := p.Init(app, InitConfig{}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Init(app, InitConfig{}); !errors.Is(err, ErrDuplicateExtension) {
		t.Errorf("second Init err = %v, want ErrDuplicateExtension", err)
	}
	other, _ := New("other", nil, InitConfig{})
	if err := other.Init(app, InitConfig{}); err != nil {
		t.Errorf("Init of differently named provider: %v", err)
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(map[string]interface{}{
		"collection_name":  "widgets",
		"model":            &entity.Widget{},
		"methods":          []string{"GET", "PATCH"},
		"results_per_page": "25",
	})
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if req.CollectionName != "widgets" || req.ResultsPerPage != 25 || len(req.Methods) != 2 {
		t.Errorf("DecodeRequest = %+v", req)
	}
	if _, ok := req.Model.(*entity.Widget); !ok {
		t.Errorf("Model = %T, want *entity.Widget", req.Model)
	}

	_, err = DecodeRequest(map[string]interface{}{"collection_name": "widgets", "colour": "red"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown option err = %v, want ErrInvalidArgument", err)
	}
}
