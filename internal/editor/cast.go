package editor

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/parseltongue/internal/match"
)

// ErrCast is returned when a spoken value cannot be converted to the
// requested type.
var ErrCast = errors.New("editor: cannot cast value")

// VarType is the declared type of a variable.
type VarType string

const (
	TypeNone       VarType = "none"
	TypeNumber     VarType = "number"
	TypeDecimal    VarType = "decimal"
	TypeText       VarType = "text"
	TypeList       VarType = "list"
	TypeDictionary VarType = "dictionary"
)

// typeChoices is offered when asking for a variable type. Labels are the
// type names.
var typeChoices = match.MustChoiceSet(
	match.Choice{Label: string(TypeNone), Keywords: []string{"none", "nothing", "empty", "null"}},
	match.Choice{Label: string(TypeNumber), Keywords: []string{"number", "integer", "int", "whole"}},
	match.Choice{Label: string(TypeDecimal), Keywords: []string{"decimal", "float", "fraction"}},
	match.Choice{Label: string(TypeText), Keywords: []string{"text", "string", "word"}},
	match.Choice{Label: string(TypeList), Keywords: []string{"list", "array", "multiple"}},
	match.Choice{Label: string(TypeDictionary), Keywords: []string{"dictionary", "dict", "mapping"}},
)

// Cast converts raw to a Python literal of type t.
//
//	none        None
//	number      integer, digits or a number word ("three")
//	decimal     float, always rendered with a fractional part
//	text        double-quoted string
//	list        whitespace-separated words as a list of strings
//	dictionary  YAML flow mapping such as "a: 1, b: two"
func Cast(t VarType, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	fail := func(cause error) (string, error) {
		if cause != nil {
			return "", fmt.Errorf("%w: %q to %s: %w", ErrCast, raw, t, cause)
		}
		return "", fmt.Errorf("%w: %q to %s", ErrCast, raw, t)
	}

	switch t {
	case TypeNone:
		return "None", nil
	case TypeNumber:
		if n, err := strconv.Atoi(raw); err == nil {
			return strconv.Itoa(n), nil
		}
		if n, ok := match.ParseNumber(raw); ok {
			return strconv.Itoa(n), nil
		}
		return fail(nil)
	case TypeDecimal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fail(err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return fail(nil)
		}
		return pyFloat(f), nil
	case TypeText:
		return strconv.Quote(raw), nil
	case TypeList:
		return pyLiteral(stringsToAny(strings.Fields(raw)))
	case TypeDictionary:
		if raw == "" {
			return fail(nil)
		}
		doc := raw
		if !strings.HasPrefix(doc, "{") {
			doc = "{" + doc + "}"
		}
		var m map[string]any
		if err := yaml.Unmarshal([]byte(doc), &m); err != nil {
			return fail(err)
		}
		return pyLiteral(m)
	default:
		return "", fmt.Errorf("editor: unknown type %q", t)
	}
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// pyLiteral renders decoded YAML values as Python literals. Map keys are
// sorted so output is stable.
func pyLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "None", nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return "", fmt.Errorf("%w: non-finite number", ErrCast)
		}
		return pyFloat(x), nil
	case string:
		return strconv.Quote(x), nil
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			s, err := pyLiteral(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			s, err := pyLiteral(x[k])
			if err != nil {
				return "", err
			}
			parts[i] = strconv.Quote(k) + ": " + s
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	default:
		return "", fmt.Errorf("%w: unsupported value %T", ErrCast, v)
	}
}
