package compatibility

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"collabquest/internal/models"
)

// InputShapeError reports skill collection elements that could not be turned
// into tokens. Normalize still returns every usable token alongside it.
type InputShapeError struct {
	Index int
	Kind  string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("skill element %d is a nested %s", e.Index, e.Kind)
}

// Normalize turns a raw skill collection into lower-cased, trimmed, non-empty
// tokens in input order. Accepted shapes are nil, models.SkillSet, slices,
// arrays, maps (keys are the skills) and a single string. Anything else yields
// no tokens. Falsy elements are dropped.
func Normalize(raw interface{}) ([]string, error) {
	elems, err := elements(raw)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(elems))
	var shapeErr error
	for i, e := range elems {
		tok, kind := token(e)
		if kind != "" {
			if shapeErr == nil {
				shapeErr = &InputShapeError{Index: i, Kind: kind}
			}
			continue
		}
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens, shapeErr
}

// elements flattens the top level of raw into a slice without interpreting
// the elements themselves.
func elements(raw interface{}) ([]interface{}, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case models.SkillSet:
		decoded, err := v.Value()
		if err != nil {
			return nil, err
		}
		return elements(decoded)
	case *models.SkillSet:
		if v == nil {
			return nil, nil
		}
		return elements(*v)
	case []interface{}:
		return v, nil
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case string:
		return []interface{}{v}, nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		keys := rv.MapKeys()
		out := make([]interface{}, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		// Go maps are unordered; sort for a stable token order.
		sort.Slice(out, func(i, j int) bool {
			return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
		})
		return out, nil
	}
	return nil, nil
}

// token converts one element. A non-empty kind means the element is a
// non-empty collection and cannot be a skill.
func token(e interface{}) (tok string, kind string) {
	var s string
	switch v := e.(type) {
	case nil:
		return "", ""
	case string:
		s = v
	case bool:
		if !v {
			return "", ""
		}
		s = "true"
	case float64:
		if v == 0 {
			return "", ""
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", ""
		}
		s = v.String()
	default:
		rv := reflect.ValueOf(e)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			if rv.Len() == 0 {
				return "", ""
			}
			return "", rv.Kind().String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32:
			if rv.IsZero() {
				return "", ""
			}
		}
		s = fmt.Sprint(e)
	}
	return strings.TrimSpace(strings.ToLower(s)), ""
}
