package shape

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodeJSON decodes a JSON document into a Value tree.
func DecodeJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	return fromGJSON(gjson.ParseBytes(data)), nil
}

func DecodeJSONString(data string) (Value, error) {
	if !gjson.Valid(data) {
		return Value{}, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	return fromGJSON(gjson.Parse(data)), nil
}

func fromGJSON(res gjson.Result) Value {
	switch res.Type {
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		return NumberText(res.Raw)
	case gjson.String:
		return String(res.Str)
	case gjson.JSON:
		if res.IsArray() {
			items := make([]Value, 0)
			res.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromGJSON(item))
				return true
			})
			return Array(items...)
		}
		entries := make(map[string]Value)
		res.ForEach(func(key, item gjson.Result) bool {
			entries[key.Str] = fromGJSON(item)
			return true
		})
		return Map(entries)
	default:
		return Null()
	}
}
