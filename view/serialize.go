package view

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"
)

// serialize renders obj under its JSON field names, applies the column filter and
// appends the values of IncludeMethods.
func (v *ModelView) serialize(obj interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	switch {
	case v.cfg.IncludeColumns != nil:
		keep := make(map[string]struct{}, len(v.cfg.IncludeColumns))
		for _, col := range v.cfg.IncludeColumns {
			keep[col] = struct{}{}
		}
		for k := range out {
			if _, ok := keep[k]; !ok {
				delete(out, k)
			}
		}
	case v.cfg.ExcludeColumns != nil:
		for _, col := range v.cfg.ExcludeColumns {
			delete(out, col)
		}
	}

	rv := reflect.ValueOf(obj)
	for _, name := range v.cfg.IncludeMethods {
		m := rv.MethodByName(name)
		if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() == 0 {
			continue
		}
		out[name] = m.Call(nil)[0].Interface()
	}
	return out, nil
}
