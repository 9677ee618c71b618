package handlers

import (
	"strconv"

	"github.com/imranKhanTsx/indian-cences/census"
)

func parseBoolDefault(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// parseIntParam parses an optional integer query parameter, falling
// back to def when absent and failing validation on garbage.
func parseIntParam(name, s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, census.Validationf("%s must be an integer", name)
	}
	return v, nil
}
