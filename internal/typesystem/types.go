package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface for all types in the specialization tree.
type Type interface {
	String() string
	// Size is the storage size in bytes. Array and Foreign types report 0.
	Size() int
}

// Scalar is a primitive element type.
type Scalar struct {
	Name  string
	Bytes int
}

func (t Scalar) String() string { return t.Name }
func (t Scalar) Size() int      { return t.Bytes }

// Pointer is a pointer to Base.
type Pointer struct {
	Base Type
}

func (t Pointer) String() string { return t.Base.String() + " *" }
func (t Pointer) Size() int      { return 8 }

// Array is an N-dimensional strided array of Dtype elements.
type Array struct {
	Dtype Type
	NDim  int
}

func (t Array) String() string {
	dims := make([]string, t.NDim)
	for i := range dims {
		dims[i] = ":"
	}
	return fmt.Sprintf("%s[%s]", t.Dtype, strings.Join(dims, ", "))
}
func (t Array) Size() int { return 0 }

// Vector is a fixed-length vector, used for shape and stride vectors.
type Vector struct {
	Elem Type
	Len  int
}

func (t Vector) String() string { return fmt.Sprintf("%s[%d]", t.Elem, t.Len) }
func (t Vector) Size() int      { return t.Elem.Size() * t.Len }

// Foreign is the type representation handed over by the driving compiler:
// a dtype name plus a dimensionality (0 for scalars). It is converted with
// Mapper.Map before the specializer uses it.
type Foreign struct {
	Dtype string
	NDim  int
}

func (t Foreign) String() string { return fmt.Sprintf("foreign(%s, %d)", t.Dtype, t.NDim) }
func (t Foreign) Size() int      { return 0 }

var (
	Char    = Scalar{Name: "char", Bytes: 1}
	Bool    = Scalar{Name: "bool", Bytes: 1}
	Int32   = Scalar{Name: "int32", Bytes: 4}
	Int64   = Scalar{Name: "int64", Bytes: 8}
	Index   = Scalar{Name: "npy_intp", Bytes: 8}
	Float32 = Scalar{Name: "float32", Bytes: 4}
	Float64 = Scalar{Name: "float64", Bytes: 8}
)

var builtinTypes = map[string]Type{}

func init() {
	for _, t := range []Scalar{Char, Bool, Int32, Int64, Index, Float32, Float64} {
		builtinTypes[t.Name] = t
	}
	// Common spellings used by the driving compilers.
	builtinTypes["int"] = Int64
	builtinTypes["double"] = Float64
	builtinTypes["float"] = Float32
	builtinTypes["intp"] = Index
}

// Lookup resolves a scalar type by name.
func Lookup(name string) (Type, bool) {
	t, ok := builtinTypes[name]
	return t, ok
}

// Names returns the sorted list of known scalar type names.
func Names() []string {
	names := make([]string, 0, len(builtinTypes))
	for n := range builtinTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func PointerTo(t Type) Pointer { return Pointer{Base: t} }

func IsArray(t Type) bool {
	_, ok := t.(Array)
	return ok
}

// NDim returns the dimensionality of an array type and 0 otherwise.
func NDim(t Type) int {
	if a, ok := t.(Array); ok {
		return a.NDim
	}
	return 0
}

// Dtype returns the element type of an array, or t itself.
func Dtype(t Type) Type {
	if a, ok := t.(Array); ok {
		return a.Dtype
	}
	return t
}

// ElemType returns the element type of a vector or pointer, or t itself.
func ElemType(t Type) Type {
	switch typ := t.(type) {
	case Vector:
		return typ.Elem
	case Pointer:
		return typ.Base
	default:
		return t
	}
}

// Equal compares two types structurally.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}
