package restapi

import (
	"github.com/labstack/echo/v4"

	"apiprovider.GO/view"
)

// Route name suffixes for the two endpoint shapes.
const (
	NoInstanceSuffix = "_nim"
	InstanceSuffix   = "_im"
)

// Blueprint describes one route group: where it mounts, which methods each endpoint
// accepts and the handler serving both.
type Blueprint struct {
	Name               string
	URLPrefix          string
	CollectionEndpoint string
	InstanceEndpoint   string
	NoInstanceMethods  []string
	InstanceMethods    []string
	Handler            echo.HandlerFunc
	View               view.Config
}

func (bp *Blueprint) NoInstanceRouteName() string { return bp.Name + NoInstanceSuffix }
func (bp *Blueprint) InstanceRouteName() string   { return bp.Name + InstanceSuffix }

func collectionEndpoint(collection string) string {
	return "/" + collection
}

func instanceEndpoint(collection string) string {
	return collectionEndpoint(collection) + "/:" + view.InstanceParam
}
