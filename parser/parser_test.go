package parser_test

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/reglet-demo-actions/actions"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestJSONDescriptorParser_RoundTrip(t *testing.T) {
	t.Parallel()

	want := actions.Descriptor()
	data, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := parser.NewJSONDescriptorParser().Parse(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestYamlDescriptorParser(t *testing.T) {
	t.Parallel()

	src := `
name: Demo
version: 1.0.0
hashlinks_version: 0.1.0
creator: someone
purpose: testing
capabilities:
  - type: network
    value:
      networks: [testnet]
      operations: [query]
  - type: transaction
    value:
      transaction_types: [crypto_transfer]
      max_fee_hbar: 2
actions:
  - name: increment
    description: Increase
    inputs:
      - name: amount
        param_type: number
        description: step
        required: false
        validation: {min: 1, max: 100}
    outputs: []
    required_capabilities: []
plugins: []
`
	m, err := parser.NewYamlDescriptorParser().Parse([]byte(src))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, "Demo", m.Name)
	require.Len(t, m.Capabilities, 2)
	assert.Equal(t, descriptor.KindTransaction, m.Capabilities[1].Kind)
	assert.Equal(t, 2.0, *m.Capabilities[1].Transaction.MaxFeeHbar)

	in, ok := m.Actions[0].Input("amount")
	require.True(t, ok)
	assert.Equal(t, descriptor.ParamNumber, in.Type)
	assert.Equal(t, 100.0, *in.Validation.Max)
}

func TestYamlDescriptorParser_RoundTrip(t *testing.T) {
	t.Parallel()

	want := actions.Descriptor()
	data, err := yaml.Marshal(want)
	require.NoError(t, err)

	got, err := parser.NewYamlDescriptorParser().Parse(data)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, want.ActionNames(), got.ActionNames())
	assert.Equal(t, want.Capabilities, got.Capabilities)
}

func TestParsers_Errors(t *testing.T) {
	t.Parallel()

	_, err := parser.NewJSONDescriptorParser().Parse([]byte(`{"capabilities":[{"type":"teleport","value":{}}]}`))
	require.ErrorIs(t, err, descriptor.ErrUnknownCapability)

	_, err = parser.NewYamlDescriptorParser().Parse([]byte("capabilities:\n  - type: teleport\n    value: {}\n"))
	require.ErrorIs(t, err, descriptor.ErrUnknownCapability)

	_, err = parser.NewJSONDescriptorParser().Parse([]byte(`{`))
	require.Error(t, err)
}

func TestForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    parser.DescriptorParser
		wantErr bool
	}{
		{"module.json", &parser.JSONDescriptorParser{}, false},
		{"module.YAML", &parser.YamlDescriptorParser{}, false},
		{"dir/module.yml", &parser.YamlDescriptorParser{}, false},
		{"module.toml", nil, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, err := parser.ForPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}
