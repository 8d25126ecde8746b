package restapi

import (
	"fmt"
	"strconv"
	"strings"
)

const apiNameSuffix = "api"

// APIName is the base mount name for a collection.
func APIName(collection string) string {
	return collection + apiNameSuffix
}

// NextBlueprintName returns base followed by one more than the largest numeric
// suffix among existing names that start with base, or base+"0" if none do.
func NextBlueprintName(existing []string, base string) (string, error) {
	next := 0
	for _, name := range existing {
		if !strings.HasPrefix(name, base) {
			continue
		}
		suffix := strings.TrimPrefix(name, base)
		n, err := strconv.Atoi(suffix)
		if err != nil || !isDigits(suffix) {
			return "", fmt.Errorf("%w: %q has prefix %q without a numeric suffix", ErrInvalidMountName, name, base)
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return base + strconv.Itoa(next), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
