package view

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Request events hooks can be attached to.
const (
	EventGetSingle    = "GET_SINGLE"
	EventGetMany      = "GET_MANY"
	EventPost         = "POST"
	EventPatchSingle  = "PATCH_SINGLE"
	EventPutSingle    = "PUT_SINGLE"
	EventDeleteSingle = "DELETE_SINGLE"
)

// Payload is what a hook sees and may modify. Preprocessors get InstanceID and Data,
// postprocessors additionally get Result.
type Payload struct {
	InstanceID string
	Data       map[string]interface{}
	Result     interface{}
}

// Hook runs before or after the view touches the store. Returning an error aborts
// the request; an *echo.HTTPError keeps its status, anything else becomes a 400.
type Hook func(c echo.Context, p *Payload) error

// Hooks maps an event to its ordered hook list.
type Hooks map[string][]Hook

// MergeHooks returns a new Hooks holding, per event, the hooks of global followed by
// those of local. Neither argument is modified.
func MergeHooks(global, local Hooks) Hooks {
	merged := make(Hooks, len(global)+len(local))
	for event, hooks := range global {
		merged[event] = append([]Hook(nil), hooks...)
	}
	for event, hooks := range local {
		merged[event] = append(merged[event], hooks...)
	}
	return merged
}

func runHooks(c echo.Context, hooks []Hook, p *Payload) error {
	for _, hook := range hooks {
		if err := hook(c, p); err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return he
			}
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return nil
}
