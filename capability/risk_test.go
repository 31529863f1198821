package capability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		grants  *GrantSet
		want    RiskLevel
		factors int
	}{
		{"nil", nil, RiskNone, 0},
		{"empty", &GrantSet{}, RiskNone, 0},
		{"testnet", &GrantSet{Network: &NetworkGrant{Networks: []string{"testnet"}, Operations: []string{"query"}}}, RiskLow, 1},
		{"mainnet", &GrantSet{Network: &NetworkGrant{Networks: []string{"mainnet", "testnet"}, Operations: []string{"query"}}}, RiskMedium, 2},
		{"wildcard", &GrantSet{Network: &NetworkGrant{Networks: []string{"*"}, Operations: []string{"query"}}}, RiskCritical, 1},
		{"tx limited", &GrantSet{Transaction: &TransactionGrant{Types: []string{"crypto_transfer"}, MaxFeeHbar: fee(1)}}, RiskMedium, 1},
		{"tx unlimited", &GrantSet{Transaction: &TransactionGrant{Types: []string{"crypto_transfer"}}}, RiskHigh, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := AnalyzeRisk(tt.grants)
			assert.Equal(t, tt.want, r.Level)
			assert.Len(t, r.RiskFactors, tt.factors)
		})
	}
}

func TestRiskLevel_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(AnalyzeRisk(&GrantSet{Network: &NetworkGrant{Networks: []string{"mainnet"}, Operations: []string{"query"}}}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"level":"medium","risk_factors":[{"description":"Mainnet access","rule":"Network: mainnet [query]","level":"medium"}]}`,
		string(data))
}
