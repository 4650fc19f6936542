package hsim

import (
	"testing"
	"time"

	"github.com/hephbuild/rwsched/lib/rwlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(`
name: writer-timeout
timeout: 1s
actors:
  - name: r1
    kind: read
    hold: 50ms
  - name: w1
    kind: write
    key: files
    at: 10ms
    options:
      timeout: 20ms
`))
	require.NoError(t, err)

	plans, err := sc.compile()
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, rwlock.KindRead, plans[0].kind)
	assert.Equal(t, time.Duration(0), plans[0].at)
	assert.Equal(t, 50*time.Millisecond, plans[0].hold)
	assert.Equal(t, time.Second, plans[0].timeout)
	assert.True(t, plans[0].hasTimeout)

	assert.Equal(t, rwlock.KindWrite, plans[1].kind)
	assert.Equal(t, 10*time.Millisecond, plans[1].at)
	assert.Equal(t, 20*time.Millisecond, plans[1].timeout)
}

func TestParseStrict(t *testing.T) {
	_, err := Parse([]byte(`
name: x
actors:
  - name: r1
    kind: read
    holds: 1s
`))
	require.Error(t, err)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		sc   Scenario
		err  string
	}{
		{"empty", Scenario{}, "no actors"},
		{"kind", Scenario{Actors: []Actor{{Name: "a", Kind: "upgrade"}}}, `a: unknown kind "upgrade"`},
		{"at", Scenario{Actors: []Actor{{Name: "a", Kind: "read", At: "later"}}}, "a: at"},
		{"hold", Scenario{Actors: []Actor{{Name: "a", Kind: "read", Hold: "-1s"}}}, "negative duration"},
		{"duplicate", Scenario{Actors: []Actor{{Name: "a", Kind: "read"}, {Name: "a", Kind: "write"}}}, "duplicate actor a"},
		{"negative timeout", Scenario{Actors: []Actor{{Name: "a", Kind: "read", Options: map[string]any{"timeout": "-1s"}}}}, "a: options: negative timeout"},
		{"options", Scenario{Actors: []Actor{{Name: "a", Kind: "read", Options: map[string]any{"scope": "x"}}}}, "a: options"},
		{"timeout", Scenario{Timeout: "x", Actors: []Actor{{Name: "a", Kind: "read"}}}, "timeout"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.sc.compile()
			assert.ErrorContains(t, err, test.err)
		})
	}
}

func TestCompileNamesActors(t *testing.T) {
	plans, err := Scenario{Actors: []Actor{{Kind: "read"}, {Kind: "write"}}}.compile()
	require.NoError(t, err)

	assert.Equal(t, "actor0", plans[0].actor.Name)
	assert.Equal(t, "actor1", plans[1].actor.Name)
}

func TestParseExamples(t *testing.T) {
	for _, name := range []string{"readers-then-writer", "writer-timeout", "zero-timeout"} {
		t.Run(name, func(t *testing.T) {
			sc, err := ParseFile("../../example/scenarios/" + name + ".yaml")
			require.NoError(t, err)
			assert.Equal(t, name, sc.Name)

			_, err = sc.compile()
			require.NoError(t, err)
		})
	}
}

func TestCompileZeroTimeout(t *testing.T) {
	plans, err := Scenario{Actors: []Actor{
		{Name: "unset", Kind: "read"},
		{Name: "zero", Kind: "read", Options: map[string]any{"timeout": "0s"}},
	}}.compile()
	require.NoError(t, err)

	assert.False(t, plans[0].hasTimeout)
	assert.True(t, plans[1].hasTimeout)
	assert.Equal(t, time.Duration(0), plans[1].timeout)

	plans, err = Scenario{Timeout: "0s", Actors: []Actor{
		{Name: "inherit", Kind: "read"},
		{Name: "own", Kind: "read", Options: map[string]any{"timeout": "20ms"}},
	}}.compile()
	require.NoError(t, err)

	assert.True(t, plans[0].hasTimeout)
	assert.Equal(t, time.Duration(0), plans[0].timeout)
	assert.True(t, plans[1].hasTimeout)
	assert.Equal(t, 20*time.Millisecond, plans[1].timeout)
}
