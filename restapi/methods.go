package restapi

import (
	"net/http"
	"strings"
)

// ReadOnlyMethods is the method set used when a request names none.
var ReadOnlyMethods = []string{http.MethodGet}

var (
	noInstanceMethods = []string{http.MethodPost}
	instanceMethods   = []string{http.MethodGet, http.MethodPatch, http.MethodPut, http.MethodDelete}
)

// NormalizeMethods upper-cases and de-duplicates methods, keeping first occurrence order.
func NormalizeMethods(methods []string) []string {
	seen := make(map[string]struct{}, len(methods))
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// PartitionMethods splits methods into those served on the collection endpoint
// (POST) and those served on the instance endpoint (GET, PATCH, PUT, DELETE).
// Any other verb is dropped. Results follow the canonical order above.
func PartitionMethods(methods []string) (noInstance, instance []string) {
	set := make(map[string]struct{}, len(methods))
	for _, m := range NormalizeMethods(methods) {
		set[m] = struct{}{}
	}
	return intersect(noInstanceMethods, set), intersect(instanceMethods, set)
}

func intersect(ordered []string, set map[string]struct{}) []string {
	out := []string{}
	for _, m := range ordered {
		if _, ok := set[m]; ok {
			out = append(out, m)
		}
	}
	return out
}
