package actions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantCount int64
		hasCount  bool
	}{
		{name: "object", input: `{"count": 7}`, wantCount: 7, hasCount: true},
		{name: "float count", input: `{"count": 7.9}`, wantCount: 7, hasCount: true},
		{name: "negative float truncates toward zero", input: `{"count": -7.9}`, wantCount: -7, hasCount: true},
		{name: "exponent", input: `{"count": 1e3}`, wantCount: 1000, hasCount: true},
		{name: "huge saturates", input: `{"count": 1e300}`, wantCount: math.MaxInt64, hasCount: true},
		{name: "empty object", input: `{}`},
		{name: "null document", input: `null`},
		{name: "array document", input: `[1,2,3]`},
		{name: "string count", input: `{"count": "7"}`},
		{name: "malformed", input: `{"count":`, wantErr: true},
		{name: "empty", input: ``, wantErr: true},
		{name: "whitespace", input: "  \n", wantErr: true},
		{name: "trailing data", input: `{} {}`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := DecodeParams([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDecodeParams)
				return
			}
			require.NoError(t, err)
			c, ok := p.Int("count")
			assert.Equal(t, tt.hasCount, ok)
			assert.Equal(t, tt.wantCount, c)
		})
	}
}

func TestParams_Accessors(t *testing.T) {
	t.Parallel()

	p, err := DecodeParams([]byte(`{"flag": true, "n": 2, "s": "x", "nested": {"v": 1.5}}`))
	require.NoError(t, err)

	b, ok := p.Bool("flag")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = p.Bool("n")
	assert.False(t, ok)

	assert.True(t, p.Has("s"))
	assert.False(t, p.Has("missing"))

	raw := p.Raw()
	assert.Equal(t, 2.0, raw["n"])
	assert.Equal(t, map[string]any{"v": 1.5}, raw["nested"])

	assert.Equal(t, "{}", Params{}.String())
}

func FuzzDecodeParams(f *testing.F) {
	f.Add(`{"count": 1, "amount": 2}`)
	f.Add(`{"showCounter": true}`)
	f.Add(`null`)
	f.Add(`{"count": 1e999}`)

	e := NewExecutor()
	f.Fuzz(func(t *testing.T, doc string) {
		p, err := DecodeParams([]byte(doc))
		if err != nil {
			return
		}
		// Decoded documents never crash any action.
		for _, name := range Names() {
			e.Execute(name, p)
		}
	})
}
