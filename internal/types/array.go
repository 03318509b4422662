package types

// ArrayType is the type of arrays of a given element type. Array types are
// interned by Universe.ArrayOf.
type ArrayType struct {
	universe *Universe
	elem     Type
}

// Elem returns the element type.
func (a *ArrayType) Elem() Type {
	return a.elem
}

// String returns the element type followed by [].
func (a *ArrayType) String() string {
	return a.elem.String() + "[]"
}

// AssignableTo reports whether a fits into an array of other elements, or
// into Object.
func (a *ArrayType) AssignableTo(other Type) bool {
	switch o := other.(type) {
	case *ArrayType:
		return a.elem.AssignableToSpecial(o.elem)
	case *ClassType:
		return o.IsObject()
	}
	return false
}

// AssignableToSpecial is AssignableTo.
func (a *ArrayType) AssignableToSpecial(other Type) bool {
	return a.AssignableTo(other)
}

// LeastCommonSupertype returns the array of the common supertype of the
// elements when both are references, and Object otherwise.
func (a *ArrayType) LeastCommonSupertype(other Type) Type {
	switch o := other.(type) {
	case *ArrayType:
		if o == a {
			return a
		}
		if IsReference(a.elem) && IsReference(o.elem) {
			if elem := a.elem.LeastCommonSupertype(o.elem); elem != nil {
				return a.universe.ArrayOf(elem)
			}
		}
		return a.universe.Object()
	case *ClassType:
		return a.universe.Object()
	}
	if other == Nil || other == Unused {
		return a
	}
	return nil
}

// Size returns 1.
func (a *ArrayType) Size() int {
	return 1
}

// Dimensions returns how many array levels wrap the innermost element type.
func (a *ArrayType) Dimensions() int {
	n := 1
	for e, ok := a.elem.(*ArrayType); ok; e, ok = e.elem.(*ArrayType) {
		n++
	}
	return n
}
