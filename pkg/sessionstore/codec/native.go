package codec

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// FromNative converts a plain Go value (as host middleware typically
// hands over) into a Value. Map keys are sorted so the same native map
// always yields the same encoding.
func FromNative(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Nil(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, errors.Errorf("codec: uint64 value %d overflows int64", x)
		}
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			cv, err := FromNative(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, cv)
		}
		return List(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			cv, err := FromNative(x[k])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, E(k, cv))
		}
		return Map(entries...), nil
	}
	return Value{}, errors.Errorf("codec: unsupported native type %T", v)
}

// Native converts v back to plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any. Mapping order is lost in the
// native form; round-tripping through FromNative restores sorted order.
func (v Value) Native() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindList:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = item.Native()
		}
		return items
	case KindMap:
		m := make(map[string]any, len(v.Map))
		for _, e := range v.Map {
			m[e.Key] = e.Val.Native()
		}
		return m
	}
	return nil
}
