package shape

import "fmt"

// WidenReadonly returns a copy of t with every readonly flag cleared,
// at every depth. The assignability engine never calls this: crossing
// the readonly boundary is only legal by copying a value into a fresh
// structure, and the widened tree is what such a copy is typed as.
// Callers use it diagnostically to show "the same shape, mutable".
func WidenReadonly(t Type) Type {
	switch t := t.(type) {
	case Primitive:
		return t
	case Literal:
		return t
	case Object:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			f.Readonly = false
			f.Type = WidenReadonly(f.Type)
			fields[i] = f
		}
		index := t.Index
		if index != nil {
			index = &IndexSignature{Key: index.Key, Value: WidenReadonly(index.Value)}
		}
		return Object{Fields: fields, Index: index}
	case Array:
		return Array{Elem: WidenReadonly(t.Elem)}
	case Tuple:
		elems := make([]TupleElem, len(t.Elems))
		for i, e := range t.Elems {
			e.Readonly = false
			e.Type = WidenReadonly(e.Type)
			elems[i] = e
		}
		return Tuple{Elems: elems}
	case Union:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = WidenReadonly(m)
		}
		return Union{Members: members}
	case Mapped:
		values := make(map[string]Type, len(t.keys))
		for _, k := range t.keys {
			values[k] = WidenReadonly(t.valueFor[k])
		}
		return NewMapped(values, nil)
	}
	panic(fmt.Sprintf("unknown shape variant %T", t))
}
