package compiler_test

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kitten/internal/backend"
	"martianoff/kitten/internal/compiler"
	"martianoff/kitten/internal/loader"
	"martianoff/kitten/internal/program"
	"martianoff/kitten/kiterr"
)

type recorder struct {
	emitted []*program.Program
	err     error
}

func (r *recorder) Emit(p *program.Program) error {
	r.emitted = append(r.emitted, p)
	return r.err
}

func newCompiler(t *testing.T, b backend.Backend) *compiler.Compiler {
	t.Helper()
	dir := testdataDir()
	require.NotEmpty(t, dir, "testdata not found")
	return compiler.New(loader.New(dir), b)
}

func signatures(p *program.Program) []string {
	var out []string
	for _, sig := range p.Signatures() {
		out = append(out, sig.String())
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		class   string
		wantErr bool
	}{
		{"Hello", false},
		{"Geometry", false},
		{"Counter", false},
		{"Broken", true},
		{"Unparsable", true},
		{"Nowhere", true},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			u, ct, err := newCompiler(t, nil).Check(tt.class)
			require.NotNil(t, u)
			require.NotNil(t, ct)
			if tt.wantErr {
				var multi *kiterr.MultiError
				require.ErrorAs(t, err, &multi)
				assert.NotEmpty(t, multi.Errors)
				return
			}
			require.NoError(t, err)
			for _, c := range u.Classes() {
				assert.True(t, c.Checked(), "%s was not checked", c.Name())
			}
		})
	}
}

func TestCheckLoadsOnlyReachedClasses(t *testing.T) {
	u, _, err := newCompiler(t, nil).Check("Geometry")
	require.NoError(t, err)

	var names []string
	for _, c := range u.Classes() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"Circle", "Geometry", "Object", "Shape", "Square", "String"}, names)
}

func TestCheckReportsEveryClass(t *testing.T) {
	_, _, err := newCompiler(t, nil).Check("Broken")
	var multi *kiterr.MultiError
	require.ErrorAs(t, err, &multi)

	text := multi.Error()
	assert.Contains(t, text, "boolean cannot be assigned to int")
	assert.Contains(t, text, "class Missing: class not found")

	var le *kiterr.LoadError
	assert.ErrorAs(t, err, &le)
}

func TestCheckSyntaxError(t *testing.T) {
	_, ct, err := newCompiler(t, nil).Check("Unparsable")
	require.Error(t, err)
	assert.Equal(t, kiterr.TypeSyntax, err.(*kiterr.MultiError).Type())
	assert.Contains(t, err.Error(), "Unparsable.kit:3:14")
	assert.True(t, ct.Superclass().IsObject())
	assert.Empty(t, ct.Methods())
}

func TestCompile(t *testing.T) {
	rec := &recorder{}
	p, err := newCompiler(t, rec).Compile("Geometry", program.Options{})
	require.NoError(t, err)
	require.Len(t, rec.emitted, 1)
	assert.Same(t, p, rec.emitted[0])

	sigs := signatures(p)
	for _, want := range []string{
		"Geometry.main():void",
		"Square.<init>(float):void",
		"Circle.<init>(float):void",
		"Shape.<init>():void",
		"Shape.area():float",
		"Square.area():float",
		"Circle.area():float",
		"Circle.name():String",
		"Square.side:float",
		"String.concat(float):String",
	} {
		assert.Contains(t, sigs, want)
	}
	for _, sig := range sigs {
		assert.NotContains(t, sig, "Triangle")
	}
}

func TestCompileTests(t *testing.T) {
	c := newCompiler(t, &recorder{})

	_, err := c.Compile("Counter", program.Options{})
	require.ErrorIs(t, err, program.ErrNoEntryPoint)

	p, err := c.Compile("Counter", program.Options{Tests: true})
	require.NoError(t, err)
	assert.Nil(t, p.Start())
	assert.Len(t, p.Tests(), 2)
	assert.Contains(t, signatures(p), "Counter.increment():void")
}

func TestCompileStopsOnErrors(t *testing.T) {
	rec := &recorder{}
	_, err := newCompiler(t, rec).Compile("Broken", program.Options{})
	require.Error(t, err)
	assert.Empty(t, rec.emitted, "nothing is emitted when a class has errors")
}

func TestCompileBackendError(t *testing.T) {
	failure := errors.New("disk full")
	_, err := newCompiler(t, &recorder{err: failure}).Compile("Hello", program.Options{})
	require.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "backend: disk full")
}

func TestCompileWithSummary(t *testing.T) {
	var out bytes.Buffer
	_, err := newCompiler(t, backend.NewSummary(&out)).Compile("Hello", program.Options{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "entry points [Hello.main():void]")
	assert.Contains(t, out.String(), "String.output():void")
}

func TestCompilerLogs(t *testing.T) {
	var logs bytes.Buffer
	c := newCompiler(t, nil)
	c.SetLogger(log.New(&logs, "", 0))

	_, err := c.Compile("Hello", program.Options{})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "checked ")
	assert.Contains(t, logs.String(), "assembled ")
}

func TestSessionsAreIndependent(t *testing.T) {
	c := newCompiler(t, nil)
	u1, _, err := c.Check("Hello")
	require.NoError(t, err)
	u2, _, err := c.Check("Hello")
	require.NoError(t, err)

	s1, _ := u1.Lookup("String")
	s2, _ := u2.Lookup("String")
	assert.NotSame(t, s1, s2)
}

func TestCompileChecksStringUsedByTests(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantErr string
	}{
		{name: "error in String is reported", output: `method void output() { int x := true }`, wantErr: "boolean cannot be assigned to int"},
		{name: "String is translated once checked", output: `method void output() { return }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			c := compiler.New(loader.NewMemory(map[string]string{
				"T":      `class T { test t { assert 1 = 1 } }`,
				"String": `class String { ` + tt.output + ` }`,
			}), rec)

			p, err := c.Compile("T", program.Options{Tests: true})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, rec.emitted)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, signatures(p), "String.output():void")
		})
	}
}
