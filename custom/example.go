package custom

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"apiprovider.GO/api"
	"apiprovider.GO/cmd"
	"apiprovider.GO/model/entity"
	"apiprovider.GO/restapi"
	"apiprovider.GO/view"
)

func init() {
	// REST resources
	api.RegisterResource(&entity.Widget{}, map[string]interface{}{
		"collection_name": "widgets",
		"methods":         []string{"GET", "POST", "PATCH", "PUT", "DELETE"},
		"include_methods": []string{"DisplayName"},
	})
	api.RegisterResource(&entity.Gadget{}, map[string]interface{}{
		"collection_name": "gadgets",
		"methods":         []string{"GET", "POST"},
		"exclude_columns": []string{"id"},
		"primary_key":     "code",
	})
	api.RegisterModule(func(p *restapi.APIProvider) error {
		return p.CreateAPI(nil, restapi.Request{
			CollectionName: "widgets",
			Model:          &entity.Widget{},
			URLPrefix:      "/api/v2",
			IncludeColumns: []string{"id", "sku", "name"},
			Postprocess: view.Hooks{
				view.EventGetSingle: {func(c echo.Context, p *view.Payload) error {
					c.Response().Header().Set("X-API-Version", "2")
					return nil
				}},
			},
		})
	})

	// HTTP route
	api.RegisterGET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:hello",
		Short: "Custom command example",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), "Hello from custom command")
		},
	})
}
