package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kitten/internal/types"
	"martianoff/kitten/kiterr"
)

func TestRuntimeClassesParse(t *testing.T) {
	l := New()
	names := RuntimeClasses()
	assert.ElementsMatch(t, []string{"Object", "String"}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			def, d, err := l.Parse(name)
			require.NoError(t, err)
			require.NoError(t, d.Err())
			assert.Equal(t, name, def.Name)
		})
	}
}

func TestRuntimeStringMethods(t *testing.T) {
	u := types.NewUniverse(New())
	str := u.Resolve("String")
	str.TypeCheck()
	require.False(t, u.AnyErrors(), "%v", u.Diagnostics())

	assert.Same(t, u.Object(), str.Superclass())
	assert.NotNil(t, str.MethodLookup("output", types.Empty))
	assert.NotNil(t, str.MethodLookup("length", types.Empty))
	assert.Len(t, str.Methods(), 11)

	m, err := str.ResolveMethod("concat", types.List{types.Int})
	require.NoError(t, err)
	assert.Equal(t, "String.concat(int):String", m.String())
}

func TestLoadFromClasspath(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "Dog.kit"), []byte(`class Dog { field int legs }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(first, "Cat.kit"), []byte(`class Cat {}`), 0o644))

	l := New(first, second)
	assert.Equal(t, []string{first, second}, l.Classpath())

	def, d, err := l.Parse("Dog")
	require.NoError(t, err)
	require.NoError(t, d.Err())
	assert.Equal(t, filepath.Join(second, "Dog.kit"), d.File())
	assert.Len(t, def.Members, 1)

	def, _, err = l.Parse("Cat")
	require.NoError(t, err)
	assert.Equal(t, "Cat", def.Name)
}

func TestClasspathShadowsRuntime(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "String.kit"), []byte(`class String {}`), 0o644))

	def, _, err := New(dir).Parse("String")
	require.NoError(t, err)
	assert.Empty(t, def.Members)
}

func TestLoadErrors(t *testing.T) {
	l := NewMemory(map[string]string{
		"Wrong":  `class Other {}`,
		"Broken": `class Broken {`,
		"NoHead": `klass NoHead {}`,
	})

	tests := []struct {
		name       string
		class      string
		wantLoad   bool
		wantSyntax string
		wantSource bool
	}{
		{name: "missing class", class: "Missing", wantLoad: true},
		{name: "invalid name", class: "../etc/passwd", wantLoad: true},
		{name: "empty name", class: "", wantLoad: true},
		{name: "file name mismatch", class: "Wrong", wantSyntax: "must be declared in a file named Other.kit", wantSource: true},
		{name: "unterminated class", class: "Broken", wantSyntax: "end of file", wantSource: true},
		{name: "unparsable header", class: "NoHead", wantSyntax: `"class" expected`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, d, err := l.Load(tt.class)
			if tt.wantLoad {
				var le *kiterr.LoadError
				require.ErrorAs(t, err, &le)
				assert.Equal(t, tt.class, le.Class)
				return
			}
			require.NoError(t, err)
			require.True(t, d.AnyErrors())
			assert.Contains(t, d.Errors()[0].Error(), tt.wantSyntax)
			assert.Equal(t, tt.wantSource, src != nil)
		})
	}
}

func TestUnparsableClassIsSynthetic(t *testing.T) {
	u := types.NewUniverse(NewMemory(map[string]string{"NoHead": `klass NoHead {}`}))
	ct := u.Resolve("NoHead")
	assert.Nil(t, ct.Source())
	assert.Same(t, u.Object(), ct.Superclass())
	require.Len(t, u.Diagnostics(), 1)
	assert.Contains(t, u.Diagnostics()[0].Error(), `"class" expected`)
}
