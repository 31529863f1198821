package extractor_test

import (
	"errors"
	"testing"

	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/reglet-dev/reglet-demo-actions/actions"
	"github.com/reglet-dev/reglet-demo-actions/capability"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/extractor"
	"github.com/reglet-dev/reglet-demo-actions/parser"
	"github.com/reglet-dev/reglet-demo-actions/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDescriptorParser is a mock implementation of parser.DescriptorParser
type MockDescriptorParser struct {
	mock.Mock
}

func (m *MockDescriptorParser) Parse(data []byte) (*descriptor.ModuleDescriptor, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*descriptor.ModuleDescriptor), args.Error(1)
}

// mockRenderer implements template.TemplateEngine
type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(tmpl []byte, data map[string]any) ([]byte, error) {
	args := m.Called(tmpl, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestNetworkExtractor_Extract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   map[string]any
		expected *capability.GrantSet
	}{
		{
			name:   "single network defaults to query",
			config: map[string]any{"network": "testnet"},
			expected: &capability.GrantSet{
				Network: &capability.NetworkGrant{Networks: []string{"testnet"}, Operations: []string{"query"}},
			},
		},
		{
			name:   "network list and operation",
			config: map[string]any{"networks": []any{"mainnet", "", 7, "testnet"}, "operation": "submit"},
			expected: &capability.GrantSet{
				Network: &capability.NetworkGrant{Networks: []string{"mainnet", "testnet"}, Operations: []string{"submit"}},
			},
		},
		{
			name:     "no network",
			config:   map[string]any{"operation": "query"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, (&extractor.NetworkExtractor{}).Extract(tt.config))
		})
	}
}

func TestTransactionExtractor_Extract(t *testing.T) {
	t.Parallel()

	gs := (&extractor.TransactionExtractor{}).Extract(map[string]any{"transaction_type": "crypto_transfer", "max_fee_hbar": "2.5"})
	require.NotNil(t, gs)
	assert.Equal(t, []string{"crypto_transfer"}, gs.Transaction.Types)
	assert.Equal(t, 2.5, *gs.Transaction.MaxFeeHbar)

	gs = (&extractor.TransactionExtractor{}).Extract(map[string]any{"transaction_type": "crypto_transfer"})
	assert.Nil(t, gs.Transaction.MaxFeeHbar)

	assert.Nil(t, (&extractor.TransactionExtractor{}).Extract(map[string]any{}))
}

func TestRegisterDefaultExtractors(t *testing.T) {
	t.Parallel()

	registry := capability.NewRegistry()
	extractor.RegisterDefaultExtractors(registry)

	for _, name := range []string{"network", "transaction", abi.DefaultPluginName} {
		ext, ok := registry.Get(name)
		require.True(t, ok, "extractor for %q should be registered", name)
		require.NotNil(t, ext)
	}

	ext, _ := registry.Get(abi.DefaultPluginName)
	gs := ext.Extract(map[string]any{"network": "mainnet", "transaction_type": "crypto_transfer", "max_fee_hbar": 1.0})
	require.NotNil(t, gs)
	assert.Equal(t, []string{"mainnet"}, gs.Network.Networks)
	assert.Equal(t, []string{"crypto_transfer"}, gs.Transaction.Types)

	assert.Nil(t, ext.Extract(map[string]any{}))
}

func TestActionExtractor(t *testing.T) {
	t.Parallel()

	m := actions.Descriptor()
	limit := 0.5
	m.Actions[0].RequiredCapabilities = []descriptor.Capability{
		descriptor.Transaction([]string{"crypto_transfer"}, &limit),
	}
	e := extractor.NewActionExtractor(m)

	// The extractor keeps its own copy.
	m.Capabilities = nil

	gs, err := e.Extract(actions.ActionIncrement)
	require.NoError(t, err)
	assert.Equal(t, []string{"mainnet", "testnet"}, gs.Network.Networks)
	assert.Equal(t, []string{"query"}, gs.Network.Operations)
	require.NotNil(t, gs.Transaction)
	assert.Equal(t, 0.5, *gs.Transaction.MaxFeeHbar)

	gs, err = e.Extract(actions.ActionReset)
	require.NoError(t, err)
	assert.Nil(t, gs.Transaction)

	_, err = e.Extract("nope")
	require.Error(t, err)
}

func TestManifestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("should extract capabilities successfully without template", func(t *testing.T) {
		t.Parallel()
		mockParser := new(MockDescriptorParser)
		raw := []byte("descriptor-data")
		mockParser.On("Parse", raw).Return(&descriptor.ModuleDescriptor{
			Capabilities: []descriptor.Capability{descriptor.Network([]string{"testnet"}, []string{"query"})},
			Actions: []descriptor.ActionDescriptor{{
				Name:                 "pay",
				RequiredCapabilities: []descriptor.Capability{descriptor.Transaction([]string{"crypto_transfer"}, nil)},
			}},
		}, nil)

		caps, err := extractor.NewManifestExtractor(raw, extractor.WithParser(mockParser)).Extract(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"testnet"}, caps.Network.Networks)
		assert.Equal(t, []string{"crypto_transfer"}, caps.Transaction.Types)
		mockParser.AssertExpectations(t)
	})

	t.Run("should fail if parser is missing", func(t *testing.T) {
		t.Parallel()
		_, err := extractor.NewManifestExtractor([]byte("dummy")).Extract(nil)
		assert.ErrorIs(t, err, extractor.ErrNoParser)
	})

	t.Run("should fail if parser fails", func(t *testing.T) {
		t.Parallel()
		mockParser := new(MockDescriptorParser)
		mockParser.On("Parse", mock.Anything).Return(nil, errors.New("parse error"))

		_, err := extractor.NewManifestExtractor([]byte("dummy"), extractor.WithParser(mockParser)).Extract(nil)
		assert.Error(t, err)
	})

	t.Run("should render template if engine provided", func(t *testing.T) {
		t.Parallel()
		mockParser := new(MockDescriptorParser)
		renderer := new(mockRenderer)

		raw := []byte("{{ .val }}")
		rendered := []byte("rendered")
		config := map[string]any{"val": "rendered"}

		renderer.On("Render", raw, config).Return(rendered, nil)
		mockParser.On("Parse", rendered).Return(&descriptor.ModuleDescriptor{}, nil)

		caps, err := extractor.NewManifestExtractor(raw,
			extractor.WithParser(mockParser),
			extractor.WithTemplateEngine(renderer),
		).Extract(config)
		require.NoError(t, err)
		assert.True(t, caps.IsEmpty())

		renderer.AssertExpectations(t)
		mockParser.AssertExpectations(t)
	})

	t.Run("should fail if rendering fails", func(t *testing.T) {
		t.Parallel()
		renderer := new(mockRenderer)
		renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("render error"))

		_, err := extractor.NewManifestExtractor([]byte("dummy"),
			extractor.WithParser(new(MockDescriptorParser)),
			extractor.WithTemplateEngine(renderer),
		).Extract(nil)
		assert.Error(t, err)
	})

	t.Run("real parser and engine", func(t *testing.T) {
		t.Parallel()
		raw := []byte(`
name: Demo
version: 1.0.0
hashlinks_version: 0.1.0
capabilities:
  - type: network
    value:
      networks: [{{ .network }}]
      operations: [query]
`)
		caps, err := extractor.NewManifestExtractor(raw,
			extractor.WithParser(parser.NewYamlDescriptorParser()),
			extractor.WithTemplateEngine(template.NewTextEngine()),
		).Extract(map[string]any{"network": "previewnet"})
		require.NoError(t, err)
		assert.Equal(t, []string{"previewnet"}, caps.Network.Networks)
	})
}
