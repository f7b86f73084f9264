package render

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Node is a content tree node. The set of variants is closed: Empty, Leaf,
// Number, Sequence, Composite and Opaque.
type Node interface {
	node()
}

// Empty renders nothing.
type Empty struct{}

// Leaf is a run of text.
type Leaf struct {
	Text string
}

// Number is a numeric primitive.
type Number struct {
	Value float64
}

// Sequence is an ordered list of sibling nodes.
type Sequence []Node

// Composite is an element-like node; only its children contribute text.
type Composite struct {
	Children Node
}

// Opaque stands for any value whose shape is not recognised.
type Opaque struct {
	Value any
}

func (Empty) node()     {}
func (Leaf) node()      {}
func (Number) node()    {}
func (Sequence) node()  {}
func (Composite) node() {}
func (Opaque) node()    {}

// Flatten returns the concatenated visible text of n.
func Flatten(n Node) string {
	var b strings.Builder
	flattenInto(&b, n)
	return b.String()
}

func flattenInto(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case nil, Empty, Opaque:
	case Leaf:
		b.WriteString(v.Text)
	case Number:
		b.WriteString(FormatNumber(v.Value))
	case Sequence:
		for _, c := range v {
			flattenInto(b, c)
		}
	case Composite:
		flattenInto(b, v.Children)

	// 指针形式同样满足 Node，按所指的值处理
	case *Empty, *Opaque:
	case *Leaf:
		if v != nil {
			flattenInto(b, *v)
		}
	case *Number:
		if v != nil {
			flattenInto(b, *v)
		}
	case *Sequence:
		if v != nil {
			flattenInto(b, *v)
		}
	case *Composite:
		if v != nil {
			flattenInto(b, *v)
		}
	}
}

// FormatNumber prints f the way a browser prints a number as text:
// integers without a fraction, exponent form outside [1e-6, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FromValue maps a decoded value (YAML, JSON) onto a content tree.
// Maps are treated as elements when they carry a "children" key.
func FromValue(v any) Node {
	switch x := v.(type) {
	case nil, bool:
		return Empty{}
	case Node:
		return x
	case string:
		return Leaf{Text: x}
	case int:
		return Number{Value: float64(x)}
	case int64:
		return Number{Value: float64(x)}
	case uint64:
		return Number{Value: float64(x)}
	case float64:
		return Number{Value: x}
	case float32:
		return Number{Value: float64(x)}
	case []any:
		seq := make(Sequence, 0, len(x))
		for _, e := range x {
			seq = append(seq, FromValue(e))
		}
		return seq
	case map[string]any:
		if c, ok := x["children"]; ok {
			return Composite{Children: FromValue(c)}
		}
		return Opaque{Value: v}
	}

	// 其他数值类型和切片走反射
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number{Value: float64(rv.Int())}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number{Value: float64(rv.Uint())}
	case reflect.Slice, reflect.Array:
		seq := make(Sequence, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			seq = append(seq, FromValue(rv.Index(i).Interface()))
		}
		return seq
	}
	return Opaque{Value: v}
}
