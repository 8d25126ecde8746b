package view

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"apiprovider.GO/core/cache"
)

// InstanceParam is the path parameter holding the instance identifier.
const InstanceParam = "instid"

// ModelView serves GET/POST/PATCH/PUT/DELETE for one gorm model.
type ModelView struct {
	cfg        Config
	typ        reflect.Type
	primaryKey string
	keys       []*schema.Field
}

// New validates cfg and builds a view for its model.
func New(cfg Config) (*ModelView, error) {
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	typ, err := modelType(cfg.Model)
	if err != nil {
		return nil, err
	}
	sch, err := parseSchema(cfg.DB, reflect.New(typ).Interface())
	if err != nil {
		return nil, err
	}
	pk := cfg.PrimaryKey
	if pk == "" {
		pk = sch.PrioritizedPrimaryField.DBName
	}
	keys, err := keyFields(sch, pk)
	if err != nil {
		return nil, err
	}
	return &ModelView{cfg: cfg, typ: typ, primaryKey: pk, keys: keys}, nil
}

// Factory builds a ModelView and returns its handler.
func Factory(cfg Config) (echo.HandlerFunc, error) {
	v, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return v.Handle, nil
}

// Config returns the finalized configuration.
func (v *ModelView) Config() Config { return v.cfg }

// PrimaryKey returns the column used for instance lookups.
func (v *ModelView) PrimaryKey() string { return v.primaryKey }

// Handle dispatches on the request method.
func (v *ModelView) Handle(c echo.Context) error {
	id := c.Param(InstanceParam)
	switch c.Request().Method {
	case http.MethodGet:
		if id == "" {
			return v.getMany(c)
		}
		return v.getSingle(c, id)
	case http.MethodPost:
		return v.post(c)
	case http.MethodPatch:
		return v.update(c, id, EventPatchSingle)
	case http.MethodPut:
		return v.update(c, id, EventPutSingle)
	case http.MethodDelete:
		return v.delete(c, id)
	}
	return echo.ErrMethodNotAllowed
}

func (v *ModelView) getSingle(c echo.Context, id string) error {
	p := &Payload{InstanceID: id}
	if err := runHooks(c, v.cfg.Preprocess[EventGetSingle], p); err != nil {
		return err
	}
	ctx := c.Request().Context()
	key := cache.Key(v.cfg.CacheKeyPrefix, p.InstanceID)

	var result map[string]interface{}
	hit := false
	if v.cfg.Cache != nil {
		if b, ok := v.cfg.Cache.Get(ctx, key); ok {
			hit = json.Unmarshal(b, &result) == nil && result != nil
		}
	}
	if hit {
		p.Result = result
	} else {
		obj, err := v.find(c, p.InstanceID)
		if err != nil {
			return err
		}
		if result, err = v.serialize(obj); err != nil {
			return err
		}
		if v.cfg.Cache != nil {
			if b, err := json.Marshal(result); err == nil {
				v.cfg.Cache.Set(ctx, key, b, v.cfg.CacheTTL, []string{v.cfg.CollectionName})
			}
		}
		p.Result = result
	}
	if err := runHooks(c, v.cfg.Postprocess[EventGetSingle], p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Result)
}

func (v *ModelView) getMany(c echo.Context) error {
	p := &Payload{}
	if err := runHooks(c, v.cfg.Preprocess[EventGetMany], p); err != nil {
		return err
	}
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(c, "results_per_page", v.cfg.ResultsPerPage)
	if perPage <= 0 {
		perPage = v.cfg.ResultsPerPage
	}
	if perPage > v.cfg.MaxResultsPerPage {
		perPage = v.cfg.MaxResultsPerPage
	}
	if maxPage := math.MaxInt32 / perPage; page > maxPage {
		page = maxPage
	}

	db := v.cfg.DB.WithContext(c.Request().Context())
	var total int64
	if err := db.Model(reflect.New(v.typ).Interface()).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	rows := reflect.New(reflect.SliceOf(v.typ))
	err := db.Order(clause.OrderByColumn{Column: clause.Column{Name: v.primaryKey}}).
		Limit(perPage).Offset((page - 1) * perPage).
		Find(rows.Interface()).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	objects := make([]map[string]interface{}, 0, rows.Elem().Len())
	for i := 0; i < rows.Elem().Len(); i++ {
		m, err := v.serialize(rows.Elem().Index(i).Addr().Interface())
		if err != nil {
			return err
		}
		objects = append(objects, m)
	}
	p.Result = map[string]interface{}{
		"objects":     objects,
		"num_results": total,
		"page":        page,
		"total_pages": int(math.Ceil(float64(total) / float64(perPage))),
	}
	if err := runHooks(c, v.cfg.Postprocess[EventGetMany], p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Result)
}

func (v *ModelView) post(c echo.Context) error {
	data, err := readData(c)
	if err != nil {
		return err
	}
	p := &Payload{Data: data}
	if err := runHooks(c, v.cfg.Preprocess[EventPost], p); err != nil {
		return err
	}
	obj := reflect.New(v.typ).Interface()
	if err := decodeInto(p.Data, obj); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := v.cfg.DB.WithContext(c.Request().Context()).Create(obj).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.invalidate(c)

	if p.Result, err = v.serialize(obj); err != nil {
		return err
	}
	if err := runHooks(c, v.cfg.Postprocess[EventPost], p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p.Result)
}

func (v *ModelView) update(c echo.Context, id, event string) error {
	data, err := readData(c)
	if err != nil {
		return err
	}
	p := &Payload{InstanceID: id, Data: data}
	if err := runHooks(c, v.cfg.Preprocess[event], p); err != nil {
		return err
	}
	obj, err := v.find(c, p.InstanceID)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	rv := reflect.ValueOf(obj)
	keys := make([]interface{}, len(v.keys))
	for i, f := range v.keys {
		keys[i], _ = f.ValueOf(ctx, rv)
	}
	if err := decodeInto(p.Data, obj); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// the body never moves the row
	for i, f := range v.keys {
		if err := f.Set(ctx, rv, keys[i]); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	if err := v.cfg.DB.WithContext(ctx).Save(obj).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.invalidate(c)

	if p.Result, err = v.serialize(obj); err != nil {
		return err
	}
	if err := runHooks(c, v.cfg.Postprocess[event], p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Result)
}

func (v *ModelView) delete(c echo.Context, id string) error {
	p := &Payload{InstanceID: id}
	if err := runHooks(c, v.cfg.Preprocess[EventDeleteSingle], p); err != nil {
		return err
	}
	obj, err := v.find(c, p.InstanceID)
	if err != nil {
		return err
	}
	if err := v.cfg.DB.WithContext(c.Request().Context()).Delete(obj).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	v.invalidate(c)

	if err := runHooks(c, v.cfg.Postprocess[EventDeleteSingle], p); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (v *ModelView) find(c echo.Context, id string) (interface{}, error) {
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "instance id is required")
	}
	obj := reflect.New(v.typ).Interface()
	err := v.cfg.DB.WithContext(c.Request().Context()).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: v.primaryKey}, Value: id}).
		First(obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "no instance with id "+id)
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return obj, nil
}

func (v *ModelView) invalidate(c echo.Context) {
	if v.cfg.Cache == nil {
		return
	}
	if err := v.cfg.Cache.DeleteByTag(c.Request().Context(), v.cfg.CollectionName); err != nil {
		c.Logger().Warnf("view: invalidate %s cache: %v", v.cfg.CollectionName, err)
	}
}

func readData(c echo.Context) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	err := json.NewDecoder(c.Request().Body).Decode(&data)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unable to decode data: "+err.Error())
	}
	return data, nil
}

func decodeInto(data map[string]interface{}, obj interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, obj)
}

func queryInt(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
