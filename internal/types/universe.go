package types

import (
	"errors"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"

	"martianoff/kitten/internal/diag"
	"martianoff/kitten/kiterr"
)

// Loader locates and parses the source of a class.
type Loader interface {
	// Load returns the declarations of the named class together with the
	// diagnostics of its file. Syntax errors are reported to the returned
	// diagnostics; a non-nil error means the class could not be found or read.
	Load(name string) (ClassSource, *diag.Diagnostics, error)
}

// Universe is the class registry of one compilation session. It interns
// class and array types so that type identity is pointer identity.
type Universe struct {
	mu      sync.RWMutex
	loader  Loader
	classes *treemap.Map // string -> *ClassType
	arrays  map[Type]*ArrayType
}

// NewUniverse creates an empty registry that loads classes through loader.
func NewUniverse(loader Loader) *Universe {
	return &Universe{
		loader:  loader,
		classes: treemap.NewWithStringComparator(),
		arrays:  make(map[Type]*ArrayType),
	}
}

// Lookup returns an already loaded class without triggering a load.
func (u *Universe) Lookup(name string) (*ClassType, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	v, ok := u.classes.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*ClassType), true
}

// Classes returns every loaded class ordered by name.
func (u *Universe) Classes() []*ClassType {
	u.mu.RLock()
	defer u.mu.RUnlock()
	values := u.classes.Values()
	out := make([]*ClassType, len(values))
	for i, v := range values {
		out[i] = v.(*ClassType)
	}
	return out
}

// Object returns the root class.
func (u *Universe) Object() *ClassType {
	return u.Resolve(ObjectName)
}

// Resolve returns the class called name, loading it on first use.
//
// The class is registered before its superclass is resolved, so mutually
// referring classes terminate. A class that cannot be loaded or parsed is
// replaced by an empty class extending Object and the failure is reported to
// its diagnostics. Cyclic inheritance is reported and broken by re-parenting
// the class to Object.
func (u *Universe) Resolve(name string) *ClassType {
	u.mu.Lock()
	if v, ok := u.classes.Get(name); ok {
		u.mu.Unlock()
		return v.(*ClassType)
	}
	ct := newClassType(u, name)
	u.classes.Put(name, ct)
	u.mu.Unlock()

	superName := ObjectName
	source, d, err := u.load(name)
	ct.diag = d
	switch {
	case err != nil:
		d.Report(err)
	case d.AnyErrors():
	default:
		ct.source = source
		if s := source.SuperclassName(); s != "" {
			superName = s
		}
	}

	if name != ObjectName {
		ct.setSuperclass(u.Resolve(superName))
	} else if superName != ObjectName {
		d.Error(diag.NoPos, "class Object cannot have a superclass")
	}

	if ct.source != nil {
		ct.source.AddMembersTo(ct)
	}
	return ct
}

func (u *Universe) load(name string) (ClassSource, *diag.Diagnostics, error) {
	if u.loader == nil {
		return nil, diag.New(name, ""), kiterr.NewLoadError(name, "no class loader configured", nil)
	}
	source, d, err := u.loader.Load(name)
	if d == nil {
		d = diag.New(name, "")
	}
	if err != nil {
		var le *kiterr.LoadError
		if !errors.As(err, &le) {
			err = kiterr.NewLoadError(name, "cannot load class", err)
		}
		return nil, d, err
	}
	// A source the parser could not recover is reported by d alone.
	if source == nil && !d.AnyErrors() {
		return nil, d, kiterr.NewLoadError(name, "class not found", nil)
	}
	return source, d, nil
}

func (c *ClassType) setSuperclass(super *ClassType) {
	if super.SubclassOf(c) {
		c.diag.Error(diag.NoPos, fmt.Sprintf("cyclic inheritance involving %s", c.name))
		super = c.universe.Object()
		if super == c {
			return
		}
	}
	c.superclass = super
	super.subclasses = append(super.subclasses, c)
}

// ArrayOf returns the interned array type with the given element type.
func (u *Universe) ArrayOf(elem Type) *ArrayType {
	u.mu.Lock()
	defer u.mu.Unlock()
	if a, ok := u.arrays[elem]; ok {
		return a
	}
	a := &ArrayType{universe: u, elem: elem}
	u.arrays[elem] = a
	return a
}

// Diagnostics returns the errors of every loaded class, ordered by class name.
func (u *Universe) Diagnostics() []error {
	var errs []error
	for _, ct := range u.Classes() {
		if ct.diag != nil {
			errs = append(errs, ct.diag.Errors()...)
		}
	}
	return errs
}

// AnyErrors reports whether any loaded class has an error.
func (u *Universe) AnyErrors() bool {
	return len(u.Diagnostics()) > 0
}
