package restapi

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"apiprovider.GO/view"
)

// DefaultURLPrefix is where route groups mount when a request names no prefix.
const DefaultURLPrefix = "/api"

// Request asks for one resource to be exposed.
type Request struct {
	CollectionName string      `mapstructure:"collection_name"`
	Model          interface{} `mapstructure:"model"`
	Methods        []string    `mapstructure:"methods"`
	URLPrefix      string      `mapstructure:"url_prefix"`

	ExcludeColumns []string `mapstructure:"exclude_columns"`
	IncludeColumns []string `mapstructure:"include_columns"`
	IncludeMethods []string `mapstructure:"include_methods"`

	ResultsPerPage    int `mapstructure:"results_per_page"`
	MaxResultsPerPage int `mapstructure:"max_results_per_page"`

	Preprocess  view.Hooks `mapstructure:"preprocess"`
	Postprocess view.Hooks `mapstructure:"postprocess"`

	PrimaryKey string `mapstructure:"primary_key"`
}

func (r Request) validate() error {
	if r.CollectionName == "" {
		return fmt.Errorf("%w: collection name is not valid", ErrInvalidArgument)
	}
	if r.ExcludeColumns != nil && r.IncludeColumns != nil {
		return fmt.Errorf("%w: cannot simultaneously specify both include columns and exclude columns", ErrInvalidArgument)
	}
	return nil
}

// withDefaults fills the options a caller left zero.
func (r Request) withDefaults(urlPrefix string) Request {
	if r.Methods == nil {
		r.Methods = ReadOnlyMethods
	}
	if r.URLPrefix == "" {
		r.URLPrefix = urlPrefix
	}
	if r.ResultsPerPage == 0 {
		r.ResultsPerPage = view.DefaultResultsPerPage
	}
	if r.MaxResultsPerPage == 0 {
		r.MaxResultsPerPage = view.DefaultMaxResultsPerPage
	}
	return r
}

// DecodeRequest builds a Request from an option map keyed by the mapstructure tags
// above. Unknown keys are rejected.
func DecodeRequest(opts map[string]interface{}) (Request, error) {
	var req Request
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Request{}, err
	}
	if err := dec.Decode(opts); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return req, nil
}
