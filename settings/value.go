package settings

// Kind tags the variant a Value holds.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
)

// String returns the YAML tag used for the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Value is a tagged variant over the four settings types.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Bool wraps a bool value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps an int value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String wraps a string value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the bool variant. ok is false when the value holds another
// kind.
func (v Value) AsBool() (value, ok bool) { return v.b, v.kind == KindBool }

// AsInt returns the int variant.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float variant.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string variant.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// any returns the wrapped value for serialization.
func (v Value) any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.s
	}
}
