package shape

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PrimitiveKind is the target of a Cast transform.
type PrimitiveKind uint8

const (
	CastString PrimitiveKind = iota // string
	CastInt                         // int64
	CastFloat                       // float64
	CastBool                        // bool
	CastUUID                        // uuid.UUID
	CastTime                        // time.Time

	castLast = CastTime
)

var primitiveKindNames = [...]string{
	CastString: "string",
	CastInt:    "int",
	CastFloat:  "float",
	CastBool:   "bool",
	CastUUID:   "uuid",
	CastTime:   "time",
}

func (k PrimitiveKind) String() string {
	if k <= castLast {
		return primitiveKindNames[k]
	}
	return "PrimitiveKind(" + strconv.Itoa(int(k)) + ")"
}

// ParsePrimitiveKind is the inverse of PrimitiveKind.String.
func ParsePrimitiveKind(name string) (PrimitiveKind, error) {
	for k, n := range primitiveKindNames {
		if n == name {
			return PrimitiveKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown primitive kind %q", name)
}

// castValue coerces a present Value to the Go type of kind.
func castValue(kind PrimitiveKind, v Value) (any, error) {
	switch kind {
	case CastString:
		return castString(v)
	case CastInt:
		return castInt(v)
	case CastFloat:
		return castFloat(v)
	case CastBool:
		return castBool(v)
	case CastUUID:
		s, ok := v.AsString()
		if !ok {
			return nil, fmt.Errorf("cannot convert %s to uuid", v.Kind())
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("error converting value to UUID: %w", err)
		}
		return id, nil
	case CastTime:
		return ParseDateTime(v)
	}
	return nil, fmt.Errorf("unknown primitive kind %d", kind)
}

func castString(v Value) (string, error) {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		return s, nil
	case KindNumber:
		s, _ := v.Text()
		return s, nil
	case KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case KindArray, KindMap:
		return v.String(), nil
	}
	return "", fmt.Errorf("cannot convert %s to string", v.Kind())
}

func castInt(v Value) (int64, error) {
	switch v.Kind() {
	case KindNumber:
		i, err := v.Int()
		if err != nil {
			return 0, fmt.Errorf("error converting value to int: %w", err)
		}
		return i, nil
	case KindString:
		s, _ := v.AsString()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("error converting value to int: %w", err)
		}
		return i, nil
	case KindBool:
		if b, _ := v.AsBool(); b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %s to int", v.Kind())
}

func castFloat(v Value) (float64, error) {
	switch v.Kind() {
	case KindNumber:
		f, err := v.Float()
		if err != nil {
			return 0, fmt.Errorf("error converting value to float: %w", err)
		}
		return f, nil
	case KindString:
		s, _ := v.AsString()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("error converting value to float: %w", err)
		}
		return f, nil
	case KindBool:
		if b, _ := v.AsBool(); b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %s to float", v.Kind())
}

func castBool(v Value) (bool, error) {
	switch v.Kind() {
	case KindBool:
		b, _ := v.AsBool()
		return b, nil
	case KindNumber:
		f, err := v.Float()
		if err != nil {
			return false, fmt.Errorf("error converting value to bool: %w", err)
		}
		return f != 0, nil
	case KindString:
		s, _ := v.AsString()
		return parseBoolText(s)
	}
	return false, fmt.Errorf("cannot convert %s to bool", v.Kind())
}

// parseBoolText accepts the common textual booleans
// ("true", "1", "yes", "on" and their negatives) in any case.
func parseBoolText(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("error converting value to bool: %w", err)
	}
	return b, nil
}

///////////////////////////////////////////////////////////////////////////////
// Date/time
///////////////////////////////////////////////////////////////////////////////

// Layouts tried by ParseISO8601, most specific first. Layouts without a
// zone are interpreted as UTC.
var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"20060102T150405Z0700",
	"20060102",
}

// ParseISO8601 parses an ISO-8601 date or date-time into a zone-aware
// time. Inputs without an offset are taken to be UTC.
func ParseISO8601(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date/time string")
	}

	for _, layout := range iso8601Layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date/time %q", s)
}

// ParseDateTime is the date/time coercion used by Cast(CastTime). It is
// also usable directly as a Func transform via FuncOf.
func ParseDateTime(v Value) (time.Time, error) {
	s, ok := v.AsString()
	if !ok {
		return time.Time{}, fmt.Errorf("cannot convert %s to time", v.Kind())
	}
	return ParseISO8601(s)
}

// floatFits reports whether f can be stored in an integer field without
// losing its fractional part.
func floatFits(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}
