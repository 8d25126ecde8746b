package view

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"apiprovider.GO/core/cache"
)

const (
	DefaultResultsPerPage    = 10
	DefaultMaxResultsPerPage = 100
	DefaultCacheTTL          = 5 * time.Minute
)

// Config enumerates every option a ModelView accepts.
type Config struct {
	Model          interface{}
	CollectionName string

	ExcludeColumns []string
	IncludeColumns []string
	IncludeMethods []string

	ResultsPerPage    int
	MaxResultsPerPage int

	Preprocess  Hooks
	Postprocess Hooks

	// PrimaryKey overrides the column used to look up instances.
	PrimaryKey string

	DB       *gorm.DB
	Cache    cache.Store
	CacheTTL time.Duration
	// CacheKeyPrefix separates cached responses of views that share a Cache and a
	// collection but serialize differently. Defaults to CollectionName.
	CacheKeyPrefix string
}

func (c *Config) finalize() error {
	if c.Model == nil {
		return errors.New("view: model is required")
	}
	if c.DB == nil {
		return errors.New("view: db is required")
	}
	if c.ExcludeColumns != nil && c.IncludeColumns != nil {
		return errors.New("view: cannot set both include and exclude columns")
	}
	if c.ResultsPerPage <= 0 {
		c.ResultsPerPage = DefaultResultsPerPage
	}
	if c.MaxResultsPerPage <= 0 {
		c.MaxResultsPerPage = DefaultMaxResultsPerPage
	}
	if c.ResultsPerPage > c.MaxResultsPerPage {
		return fmt.Errorf("view: results per page %d exceeds max %d", c.ResultsPerPage, c.MaxResultsPerPage)
	}
	if c.Cache != nil && c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CacheKeyPrefix == "" {
		c.CacheKeyPrefix = c.CollectionName
	}
	if c.Preprocess == nil {
		c.Preprocess = Hooks{}
	}
	if c.Postprocess == nil {
		c.Postprocess = Hooks{}
	}
	return nil
}

func modelType(model interface{}) (reflect.Type, error) {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("view: model must be a struct, got %s", t.Kind())
	}
	return t, nil
}

func parseSchema(db *gorm.DB, model interface{}) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("view: parse model: %w", err)
	}
	if stmt.Schema.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("view: model %s has no primary key", stmt.Schema.Name)
	}
	return stmt.Schema, nil
}

// keyFields are the fields a request body may not change: the model's primary
// fields and the lookup column.
func keyFields(sch *schema.Schema, lookup string) ([]*schema.Field, error) {
	field := sch.LookUpField(lookup)
	if field == nil {
		return nil, fmt.Errorf("view: model %s has no column %q", sch.Name, lookup)
	}
	fields := append([]*schema.Field{}, sch.PrimaryFields...)
	for _, f := range fields {
		if f == field {
			return fields, nil
		}
	}
	return append(fields, field), nil
}
