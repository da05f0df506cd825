package ast

import "reflect"

// IsNil reports whether n is nil or a typed nil pointer.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// ShallowCopy returns a new node of the same variant carrying the same
// field values. Slice fields get their own backing arrays, so the copy's
// lists can be edited without touching n; the child nodes themselves are
// still shared.
func ShallowCopy(n Node) Node {
	if IsNil(n) {
		return n
	}
	src := reflect.ValueOf(n).Elem()
	dst := reflect.New(src.Type())
	dst.Elem().Set(src)
	copySlices(dst.Elem())
	return dst.Interface().(Node)
}

// CopyOf is ShallowCopy for a statically known variant.
func CopyOf[T Node](n T) T {
	return ShallowCopy(n).(T)
}

func copySlices(v reflect.Value) {
	for i := range v.NumField() {
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Slice:
			if f.IsNil() || !f.CanSet() {
				continue
			}
			fresh := reflect.MakeSlice(f.Type(), f.Len(), f.Len())
			reflect.Copy(fresh, f)
			f.Set(fresh)
		case reflect.Struct:
			if v.Type().Field(i).Anonymous {
				copySlices(f)
			}
		}
	}
}
