// FILE: lixenwraith/confres/coerce.go
package confres

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// stringCoercer converts a raw string to a field kind's canonical Go type.
type stringCoercer func(raw string) (any, error)

// fromString is the coercion table for string-valued inputs (environment,
// dotenv, INI files, quoted scalars). Canonical types: string, bool, int.
var fromString = map[Kind]stringCoercer{
	KindString:         passString,
	KindOptionalString: passString,
	KindBool:           parseBool,
	KindInt:            parseInt,
}

func passString(raw string) (any, error) {
	return raw, nil
}

// parseBool accepts true/1/yes and false/0/no, case-insensitively.
func parseBool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return nil, fmt.Errorf("%w: not a boolean (want true/false, 1/0, yes/no)", ErrCoerce)
}

func parseInt(raw string) (any, error) {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%w: integer out of range", ErrCoerce)
		}
		return nil, fmt.Errorf("%w: not an integer", ErrCoerce)
	}
	return i, nil
}

// coerce converts v to the canonical type of f.
// Strings go through the fromString table; native values must already match
// the field kind, with integers accepted from any integral number.
func coerce(f Field, v any) (any, error) {
	if s, ok := v.(string); ok {
		return fromString[f.Kind](s)
	}

	switch f.Kind {
	case KindOptionalString:
		if v == nil {
			return nil, nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt:
		return toInt(v)
	}

	return nil, fmt.Errorf("%w: cannot use %s as %s", ErrCoerce, typeName(v), f.Kind)
}

// toInt converts integral numbers of any Go numeric type to int.
func toInt(v any) (any, error) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return toInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: not a number", ErrCoerce)
		}
		return toInt(f)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: cannot use null as int", ErrCoerce)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < math.MinInt || i > math.MaxInt {
			return nil, fmt.Errorf("%w: integer out of range", ErrCoerce)
		}
		return int(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt {
			return nil, fmt.Errorf("%w: integer out of range", ErrCoerce)
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: %v is not a whole number", ErrCoerce, f)
		}
		if f < math.MinInt || f >= math.MaxInt {
			return nil, fmt.Errorf("%w: integer out of range", ErrCoerce)
		}
		return int(f), nil
	}

	return nil, fmt.Errorf("%w: cannot use %s as int", ErrCoerce, typeName(v))
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
