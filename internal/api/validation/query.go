package validation

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/skybi/pokedex/internal/api/schema"
)

var (
	errParameterMissing = func(kind, name string) *schema.Error {
		return &schema.Error{
			Type:    "validation." + kind + ".parameter.missing",
			Message: fmt.Sprintf("The %s parameter '%s' is required but was not present in the request.", kind, name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errParameterInvalidType = func(kind, name, value, expectedType string) *schema.Error {
		return &schema.Error{
			Type:    "validation." + kind + ".parameter.invalidType",
			Message: fmt.Sprintf("The %s parameter '%s' ('%s') could not be assigned to the required type (%s).", kind, name, value, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"value":         value,
				"expected_type": expectedType,
			},
		}
	}
	errParameterNumberOutOfRange = func(kind, name string, value, min, max int64) *schema.Error {
		return &schema.Error{
			Type:    "validation." + kind + ".parameter.number.outOfRange",
			Message: fmt.Sprintf("The %s parameter '%s' is out of the required range (%s).", kind, name, describeRange(value, min, max)),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
)

// QueryNumber extracts and validates an integer value out of the query parameters of the given request
func QueryNumber(request *http.Request, key string, required bool, def, min, max int64) (int64, *schema.Error) {
	return parseNumber("query", key, request.URL.Query().Get(key), required, def, min, max)
}

// URLNumber extracts and validates an integer value out of the URL parameters (path segments) of the given request
func URLNumber(request *http.Request, key string, min, max int64) (int64, *schema.Error) {
	return parseNumber("url", key, chi.URLParam(request, key), true, 0, min, max)
}

func parseNumber(kind, key, value string, required bool, def, min, max int64) (int64, *schema.Error) {
	if value == "" {
		if required {
			return 0, errParameterMissing(kind, key)
		}
		return def, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errParameterInvalidType(kind, key, value, "number")
	}

	if parsed < min || parsed > max {
		return 0, errParameterNumberOutOfRange(kind, key, parsed, min, max)
	}

	return parsed, nil
}

func describeRange(value, min, max int64) string {
	if value < min {
		return fmt.Sprintf("%d [given] < %d [min]", value, min)
	}
	return fmt.Sprintf("%d [given] > %d [max]", value, max)
}
