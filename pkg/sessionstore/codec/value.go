package codec

// Kind discriminates the variants of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// Value is the tagged union held in a session field: a scalar, a string,
// an ordered sequence, or an ordered key/value mapping. The zero Value
// is the nil value.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	List  []Value
	Map   []Entry
}

// Entry is one key/value pair of a mapping. Mapping order is preserved
// through encode/decode.
type Entry struct {
	Key string
	Val Value
}

func Nil() Value            { return Value{} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func Int(n int64) Value     { return Value{Kind: KindInt, Int: n} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }

func List(items ...Value) Value { return Value{Kind: KindList, List: items} }

func Map(entries ...Entry) Value { return Value{Kind: KindMap, Map: entries} }

// E builds a mapping entry.
func E(key string, val Value) Entry { return Entry{Key: key, Val: val} }

// Equal reports whether two values are structurally identical, including
// mapping order.
func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool == w.Bool
	case KindInt:
		return v.Int == w.Int
	case KindFloat:
		return v.Float == w.Float
	case KindString:
		return v.Str == w.Str
	case KindList:
		if len(v.List) != len(w.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(w.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(w.Map) {
			return false
		}
		for i := range v.Map {
			if v.Map[i].Key != w.Map[i].Key || !v.Map[i].Val.Equal(w.Map[i].Val) {
				return false
			}
		}
		return true
	}
	return false
}
