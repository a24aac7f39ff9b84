package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/skybi/pokedex/internal/api/schema"
)

const maxBodySize = 64 << 10

var (
	errRequestBodyInvalidJSON = func(err string) *schema.Error {
		return &schema.Error{
			Type:    "validation.requestBody.invalidJSON",
			Message: "Request body is not a valid JSON input.",
			Details: map[string]any{
				"error": err,
			},
		}
	}
	errRequestBodyParameterInvalidType = func(name, expectedType string) *schema.Error {
		return &schema.Error{
			Type:    "validation.requestBody.parameter.invalidType",
			Message: fmt.Sprintf("The request body parameter '%s' could not be assigned to the required type (%s).", name, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"expected_type": expectedType,
			},
		}
	}
	errRequestBodyParameterMissing = func(name string) *schema.Error {
		return &schema.Error{
			Type:    "validation.requestBody.parameter.missing",
			Message: fmt.Sprintf("The request body parameter '%s' is required but was not present in the request.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errRequestBodyParameterNumberOutOfRange = func(name string, value, min, max int64) *schema.Error {
		return &schema.Error{
			Type:    "validation.requestBody.parameter.number.outOfRange",
			Message: fmt.Sprintf("The request body parameter '%s' is out of the required range (%s).", name, describeRange(value, min, max)),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
)

// UnmarshalBody parses and decodes a flat JSON request body and validates it against the struct tags of T.
// Supported tags are 'required:"true"' (the field has to be a pointer) and 'min'/'max' for integer fields.
// Validation errors are returned as the second value; the error value is reserved for internal errors.
func UnmarshalBody[T any](request *http.Request) (*T, []*schema.Error, error) {
	body, err := io.ReadAll(io.LimitReader(request.Body, maxBodySize))
	if err != nil {
		return nil, nil, err
	}

	target := new(T)
	if err := json.Unmarshal(body, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, []*schema.Error{errRequestBodyParameterInvalidType(typeErr.Field, typeErr.Type.String())}, nil
		}
		return nil, []*schema.Error{errRequestBodyInvalidJSON(err.Error())}, nil
	}

	errs, err := validateStruct(target)
	if err != nil {
		return nil, nil, err
	}
	return target, errs, nil
}

func validateStruct(val any) ([]*schema.Error, error) {
	ref := reflect.Indirect(reflect.ValueOf(val))
	if ref.Kind() != reflect.Struct {
		return nil, errors.New("illegal call to validateStruct with non-struct parameter")
	}
	typ := ref.Type()

	var errs []*schema.Error
	for i := range typ.NumField() {
		fieldDef := typ.Field(i)
		fieldName := getFieldName(fieldDef)
		field := ref.Field(i)

		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				if strings.EqualFold(fieldDef.Tag.Get("required"), "true") {
					errs = append(errs, errRequestBodyParameterMissing(fieldName))
				}
				continue
			}
			field = field.Elem()
		}

		if !field.CanInt() {
			continue
		}
		min := parseBound(fieldDef.Tag.Get("min"), math.MinInt64)
		max := parseBound(fieldDef.Tag.Get("max"), math.MaxInt64)
		if value := field.Int(); value < min || value > max {
			errs = append(errs, errRequestBodyParameterNumberOutOfRange(fieldName, value, min, max))
		}
	}
	return errs, nil
}

func parseBound(raw string, def int64) int64 {
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getFieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	return name
}
