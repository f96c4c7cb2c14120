package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Type is the inferred type of a column, passed through to each backend's
// native type system on export.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseType is the inverse of Type.String; a few common aliases are accepted.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text", "str":
		return TypeString, nil
	case "int", "integer", "bigint":
		return TypeInt, nil
	case "float", "double", "numeric", "decimal":
		return TypeFloat, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "time", "timestamp", "datetime", "date":
		return TypeTime, nil
	}
	return TypeString, fmt.Errorf("unknown column type %q", s)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// nullTokens are the cell spellings read as a missing value.
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"NULL": true,
	"null": true,
}

// IsNullToken reports whether a raw text cell means "no value".
func IsNullToken(s string) bool { return nullTokens[strings.TrimSpace(s)] }

// canonical folds Go values into the small set a Dataset stores.
func canonical(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case uint:
		return canonical(uint64(x))
	case float32:
		return float64(x)
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x
	case bool:
		return x
	case time.Time:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func typeOf(v any) Type {
	switch v.(type) {
	case int64:
		return TypeInt
	case float64:
		return TypeFloat
	case bool:
		return TypeBool
	case time.Time:
		return TypeTime
	default:
		return TypeString
	}
}

// normalize infers one Type for a column of already typed values. Ints mixed
// with floats widen to float; any other mix falls back to string.
func normalize(col []any) (Type, []any) {
	out := make([]any, len(col))
	seen := map[Type]bool{}
	for i, v := range col {
		out[i] = canonical(v)
		if out[i] != nil {
			seen[typeOf(out[i])] = true
		}
	}

	var typ Type
	switch {
	case len(seen) == 0:
		return TypeString, out
	case len(seen) == 1:
		for t := range seen {
			typ = t
		}
		return typ, out
	case len(seen) == 2 && seen[TypeInt] && seen[TypeFloat]:
		typ = TypeFloat
	default:
		typ = TypeString
	}
	for i, v := range out {
		out[i], _ = coerce(v, typ)
	}
	return typ, out
}

// coerce converts v to t. Strings are parsed; string targets format.
func coerce(v any, t Type) (any, error) {
	v = canonical(v)
	if v == nil {
		return nil, nil
	}
	if t == TypeString {
		return FormatValue(v), nil
	}
	if typeOf(v) == t {
		return v, nil
	}

	switch x := v.(type) {
	case string:
		if IsNullToken(x) {
			return nil, nil
		}
		if parsed, ok := parseAs(x, t); ok {
			return parsed, nil
		}
		return nil, fmt.Errorf("cannot read %q as %s", x, t)
	case int64:
		if t == TypeFloat {
			return float64(x), nil
		}
		if t == TypeBool && (x == 0 || x == 1) {
			return x == 1, nil
		}
	case float64:
		if t == TypeInt && x == math.Trunc(x) {
			return int64(x), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %v to %s", v, t)
}

func parseAs(s string, t Type) (any, bool) {
	s = strings.TrimSpace(s)
	switch t {
	case TypeInt:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
	case TypeFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
			return f, true
		}
	case TypeBool:
		switch strings.ToLower(s) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	case TypeTime:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	case TypeString:
		return s, true
	}
	return nil, false
}

// inferText picks the narrowest Type every non-null cell parses as, trying
// int, float, bool and time before settling on string.
func inferText(cells []string) Type {
	candidates := []Type{TypeInt, TypeFloat, TypeBool, TypeTime}
	for _, t := range candidates {
		ok, any := true, false
		for _, c := range cells {
			if IsNullToken(c) {
				continue
			}
			any = true
			if _, parsed := parseAs(c, t); !parsed {
				ok = false
				break
			}
		}
		if ok && any {
			return t
		}
	}
	return TypeString
}

// FormatValue renders a value as a text cell; nil renders empty.
func FormatValue(v any) string {
	switch x := canonical(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
