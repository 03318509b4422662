package types_test

import (
	"errors"
	"testing"

	"martianoff/kitten/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pos int

func (p pos) Pos() int { return int(p) }

func mustMethod(t *testing.T, ct *types.ClassType, name string, params types.List, rt types.Type) *types.CodeSignature {
	t.Helper()
	sig, err := ct.AddMethod(name, params, rt, pos(0))
	require.NoError(t, err)
	return sig
}

func TestFieldLookupWalksChain(t *testing.T) {
	u := newHierarchy()
	animal, dog := u.Resolve("Animal"), u.Resolve("Dog")
	f, err := animal.AddField("legs", types.Int, pos(0))
	require.NoError(t, err)

	assert.Same(t, f, dog.FieldLookup("legs"))
	assert.Nil(t, dog.FieldLookup("tail"))
	assert.Equal(t, "Animal.legs:int", f.String())

	_, err = animal.AddField("legs", types.Float, pos(1))
	assert.True(t, errors.Is(err, types.ErrDuplicateMember))
}

func TestMethodLookupIsExact(t *testing.T) {
	u := newHierarchy()
	animal, dog := u.Resolve("Animal"), u.Resolve("Dog")
	m := mustMethod(t, animal, "eat", types.List{types.Float}, types.Void)

	assert.Same(t, m, dog.MethodLookup("eat", types.List{types.Float}))
	assert.Nil(t, dog.MethodLookup("eat", types.List{types.Int}))

	_, err := animal.AddMethod("eat", types.List{types.Float}, types.Int, pos(0))
	assert.True(t, errors.Is(err, types.ErrDuplicateMember))
}

func TestMethodsLookupPrefersMostSpecific(t *testing.T) {
	u := newHierarchy()
	animal, dog := u.Resolve("Animal"), u.Resolve("Dog")
	byFloat := mustMethod(t, animal, "f", types.List{types.Float}, types.Void)
	byInt := mustMethod(t, animal, "f", types.List{types.Int}, types.Void)
	byAnimal := mustMethod(t, animal, "g", types.List{animal}, types.Void)
	byDog := mustMethod(t, animal, "g", types.List{dog}, types.Void)

	assert.Equal(t, []*types.CodeSignature{byInt}, animal.MethodsLookup("f", types.List{types.Int}))
	assert.Equal(t, []*types.CodeSignature{byFloat}, animal.MethodsLookup("f", types.List{types.Float}))
	assert.Equal(t, []*types.CodeSignature{byDog}, animal.MethodsLookup("g", types.List{dog}))
	assert.Equal(t, []*types.CodeSignature{byAnimal}, animal.MethodsLookup("g", types.List{animal}))
	assert.Empty(t, animal.MethodsLookup("g", types.List{types.Int}))
	assert.Empty(t, animal.MethodsLookup("missing", types.Empty))
}

func TestMethodsLookupAmbiguity(t *testing.T) {
	u := newHierarchy()
	animal, dog := u.Resolve("Animal"), u.Resolve("Dog")
	mustMethod(t, animal, "h", types.List{animal, dog}, types.Void)
	mustMethod(t, animal, "h", types.List{dog, animal}, types.Void)

	found := animal.MethodsLookup("h", types.List{dog, dog})
	assert.Len(t, found, 2)

	_, err := animal.ResolveMethod("h", types.List{dog, dog})
	assert.True(t, errors.Is(err, types.ErrAmbiguousCall))
	_, err = animal.ResolveMethod("h", types.List{animal, animal})
	assert.True(t, errors.Is(err, types.ErrNoMatchingMember))
}

func TestOverridingHidesInheritedMethod(t *testing.T) {
	u := newHierarchy()
	animal, dog := u.Resolve("Animal"), u.Resolve("Dog")
	mustMethod(t, animal, "speak", types.Empty, types.Void)
	override := mustMethod(t, dog, "speak", types.Empty, types.Void)
	inheritedOnly := mustMethod(t, animal, "speak", types.List{types.Int}, types.Void)

	assert.Equal(t, []*types.CodeSignature{override}, dog.MethodsLookup("speak", types.Empty))
	assert.Equal(t, []*types.CodeSignature{inheritedOnly}, dog.MethodsLookup("speak", types.List{types.Int}))

	sig, err := dog.ResolveMethod("speak", types.Empty)
	require.NoError(t, err)
	assert.Same(t, override, sig)
}

func TestConstructorLookup(t *testing.T) {
	u := newHierarchy()
	animal, dog := u.Resolve("Animal"), u.Resolve("Dog")
	empty, err := animal.AddConstructor(types.Empty, pos(0))
	require.NoError(t, err)
	byAnimal, err := animal.AddConstructor(types.List{animal}, pos(1))
	require.NoError(t, err)

	assert.Same(t, empty, animal.ConstructorLookup(types.Empty))
	assert.Nil(t, dog.ConstructorLookup(types.Empty))
	assert.Equal(t, []*types.CodeSignature{byAnimal}, animal.ConstructorsLookup(types.List{dog}))
	assert.Equal(t, types.ConstructorName, empty.Name())
	assert.Equal(t, types.Void, empty.ReturnType())

	_, err = animal.AddConstructor(types.Empty, pos(2))
	assert.True(t, errors.Is(err, types.ErrDuplicateMember))

	sig, err := animal.ResolveConstructor(types.List{types.Nil})
	require.NoError(t, err)
	assert.Same(t, byAnimal, sig)
}

func TestSignatureKeys(t *testing.T) {
	u := newHierarchy()
	animal, dog := u.Resolve("Animal"), u.Resolve("Dog")
	m1 := mustMethod(t, animal, "m", types.List{types.Int}, types.Int)
	m2 := mustMethod(t, dog, "m", types.List{types.Int}, types.Int)
	assert.NotEqual(t, m1.Key(), m2.Key())
	assert.Equal(t, "Animal.m(int):int", m1.String())

	t1, err := animal.AddTest("works", pos(0))
	require.NoError(t, err)
	assert.Equal(t, "test:Animal.works", t1.Key())
	assert.Same(t, t1, animal.TestLookup("works"))
	_, err = animal.AddTest("works", pos(1))
	assert.True(t, errors.Is(err, types.ErrDuplicateMember))

	f0 := animal.AddFixture(pos(0))
	f1 := animal.AddFixture(pos(1))
	assert.Equal(t, "fixture0", f0.Name())
	assert.Equal(t, "fixture1", f1.Name())
	assert.NotEqual(t, f0.Key(), f1.Key())
	assert.Equal(t, types.KindFixture, f0.Kind())
}
