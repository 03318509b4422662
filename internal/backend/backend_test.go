package backend_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kitten/internal/backend"
	"martianoff/kitten/internal/loader"
	"martianoff/kitten/internal/program"
	"martianoff/kitten/internal/types"
)

func assemble(t *testing.T, src string) *program.Program {
	t.Helper()
	u := types.NewUniverse(loader.NewMemory(map[string]string{"Main": src}))
	ct := u.Resolve("Main")
	ct.TypeCheck()
	require.Empty(t, u.Diagnostics())
	p, err := program.Assemble(ct, program.Options{Tests: true})
	require.NoError(t, err)
	return p
}

func TestMeasure(t *testing.T) {
	p := assemble(t, `class Main {
		method void main() {
			int x := 1 + 2 * 3
		}
	}`)

	st, ok := backend.Measure(p, p.Start())
	require.True(t, ok)
	assert.Equal(t, 1, st.Blocks)
	assert.Equal(t, 7, st.Instructions)
	assert.Equal(t, 3, st.MaxStack)
}

func TestMeasureBranches(t *testing.T) {
	p := assemble(t, `class Main {
		method int main() {
			if (1 < 2) then return 1 else return 2
		}
	}`)

	st, ok := backend.Measure(p, p.Start())
	require.True(t, ok)
	assert.Equal(t, 3, st.Blocks)
	assert.Equal(t, 2, st.MaxStack)
}

func TestSummaryEmit(t *testing.T) {
	p := assemble(t, `class Main {
		field int v
		fixture this.v := 2
		method void main() "hi".output()
		test positive assert 2 > 0
	}`)

	var out bytes.Buffer
	require.NoError(t, backend.NewSummary(&out).Emit(p))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "program with "), text)
	assert.Contains(t, text, "entry points [Main.main():void Main.test positive]")
	for _, line := range []string{"Main.main():void", "String.output():void", "Main.v:int", "Main.fixture0():void"} {
		assert.Contains(t, text, line)
	}
	assert.Contains(t, text, "field")
	assert.Contains(t, text, "test")
}
