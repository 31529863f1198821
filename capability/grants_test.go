package capability

import (
	"testing"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fee(v float64) *float64 { return &v }

func TestFromCapabilities(t *testing.T) {
	t.Parallel()

	gs := FromCapabilities([]descriptor.Capability{
		descriptor.Network([]string{"testnet", "mainnet"}, []string{"query"}),
		descriptor.Network([]string{"testnet"}, []string{"submit"}),
		descriptor.Transaction([]string{"crypto_transfer"}, fee(1)),
		descriptor.Transaction([]string{"topic_message_submit"}, fee(3)),
	})

	assert.Equal(t, []string{"mainnet", "testnet"}, gs.Network.Networks)
	assert.Equal(t, []string{"query", "submit"}, gs.Network.Operations)
	assert.Equal(t, []string{"crypto_transfer", "topic_message_submit"}, gs.Transaction.Types)
	require.NotNil(t, gs.Transaction.MaxFeeHbar)
	assert.Equal(t, 3.0, *gs.Transaction.MaxFeeHbar)

	assert.True(t, FromCapabilities(nil).IsEmpty())
}

func TestGrantSet_MergeFeeLimit(t *testing.T) {
	t.Parallel()

	gs := &GrantSet{Transaction: &TransactionGrant{Types: []string{"a"}, MaxFeeHbar: fee(1)}}
	gs.Merge(&GrantSet{Transaction: &TransactionGrant{Types: []string{"b"}}})
	assert.Nil(t, gs.Transaction.MaxFeeHbar, "an unlimited grant removes the limit")
	assert.Equal(t, []string{"a", "b"}, gs.Transaction.Types)

	gs.Merge(nil)
	assert.Equal(t, []string{"a", "b"}, gs.Transaction.Types)
}

func TestGrantSet_Difference(t *testing.T) {
	t.Parallel()

	required := &GrantSet{
		Network:     &NetworkGrant{Networks: []string{"mainnet", "testnet"}, Operations: []string{"query"}},
		Transaction: &TransactionGrant{Types: []string{"crypto_transfer"}, MaxFeeHbar: fee(2)},
	}

	tests := []struct {
		name    string
		granted *GrantSet
		want    *GrantSet
	}{
		{
			name:    "nothing granted",
			granted: nil,
			want:    required.Clone(),
		},
		{
			name: "everything granted by wildcard",
			granted: &GrantSet{
				Network:     &NetworkGrant{Networks: []string{"*"}, Operations: []string{"*"}},
				Transaction: &TransactionGrant{Types: []string{"crypto_*"}},
			},
			want: &GrantSet{},
		},
		{
			name: "one network missing",
			granted: &GrantSet{
				Network:     &NetworkGrant{Networks: []string{"testnet"}, Operations: []string{"query"}},
				Transaction: &TransactionGrant{Types: []string{"crypto_transfer"}, MaxFeeHbar: fee(5)},
			},
			want: &GrantSet{Network: &NetworkGrant{Networks: []string{"mainnet"}, Operations: []string{"query"}}},
		},
		{
			name: "operation missing everywhere",
			granted: &GrantSet{
				Network:     &NetworkGrant{Networks: []string{"mainnet", "testnet"}},
				Transaction: &TransactionGrant{Types: []string{"crypto_transfer"}, MaxFeeHbar: fee(2)},
			},
			want: &GrantSet{Network: &NetworkGrant{Networks: []string{"mainnet", "testnet"}, Operations: []string{"query"}}},
		},
		{
			name: "fee limit too low",
			granted: &GrantSet{
				Network:     &NetworkGrant{Networks: []string{"*"}, Operations: []string{"query"}},
				Transaction: &TransactionGrant{Types: []string{"crypto_transfer"}, MaxFeeHbar: fee(1)},
			},
			want: &GrantSet{Transaction: &TransactionGrant{Types: []string{"crypto_transfer"}, MaxFeeHbar: fee(2)}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, required.Difference(tt.granted))
		})
	}
}

func TestGrantSet_IsEmpty(t *testing.T) {
	t.Parallel()

	var nilSet *GrantSet
	assert.True(t, nilSet.IsEmpty())
	assert.True(t, (&GrantSet{}).IsEmpty())
	assert.True(t, (&GrantSet{Network: &NetworkGrant{}, Transaction: &TransactionGrant{}}).IsEmpty())
	assert.False(t, (&GrantSet{Network: &NetworkGrant{Networks: []string{"testnet"}}}).IsEmpty())
}

func TestGrantSet_CloneIsDeep(t *testing.T) {
	t.Parallel()

	a := &GrantSet{
		Network:     &NetworkGrant{Networks: []string{"testnet"}, Operations: []string{"query"}},
		Transaction: &TransactionGrant{Types: []string{"x"}, MaxFeeHbar: fee(1)},
	}
	b := a.Clone()
	b.Network.Networks[0] = "mainnet"
	*b.Transaction.MaxFeeHbar = 9

	assert.Equal(t, "testnet", a.Network.Networks[0])
	assert.Equal(t, 1.0, *a.Transaction.MaxFeeHbar)
}

func TestIsPattern(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPattern("*"))
	assert.True(t, IsPattern("test?et"))
	assert.True(t, IsPattern("{mainnet,testnet}"))
	assert.False(t, IsPattern("mainnet"))
}

func genGrantSet() *rapid.Generator[*GrantSet] {
	names := rapid.SampledFrom([]string{"mainnet", "testnet", "previewnet", "query", "submit"})
	return rapid.Custom(func(t *rapid.T) *GrantSet {
		gs := &GrantSet{}
		if rapid.Bool().Draw(t, "hasNetwork") {
			gs.Network = &NetworkGrant{
				Networks:   rapid.SliceOfN(names, 1, 3).Draw(t, "networks"),
				Operations: rapid.SliceOfN(names, 1, 2).Draw(t, "operations"),
			}
		}
		if rapid.Bool().Draw(t, "hasTransaction") {
			gs.Transaction = &TransactionGrant{Types: rapid.SliceOfN(names, 1, 2).Draw(t, "types")}
			if rapid.Bool().Draw(t, "limited") {
				gs.Transaction.MaxFeeHbar = fee(rapid.Float64Range(0, 100).Draw(t, "fee"))
			}
		}
		return gs
	})
}

func TestGrantSet_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := genGrantSet().Draw(t, "a")
		b := genGrantSet().Draw(t, "b")

		// Nothing is missing once the required set itself is merged in.
		merged := b.Clone()
		merged.Merge(a)
		if d := a.Difference(merged); !d.IsEmpty() {
			t.Fatalf("a not covered after merge: %+v", d)
		}

		// A set always covers itself.
		if d := a.Difference(a.Clone()); !d.IsEmpty() {
			t.Fatalf("a does not cover itself: %+v", d)
		}
	})
}
