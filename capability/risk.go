package capability

import (
	"fmt"
	"strings"
)

// RiskLevel represents the security risk level of a capability grant.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	}
	return "none"
}

// MarshalText renders the level by name.
func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// RiskReport contains the overall risk assessment for a set of capabilities.
type RiskReport struct {
	RiskFactors []RiskFactor `json:"risk_factors" yaml:"risk_factors"`
	Level       RiskLevel    `json:"level" yaml:"level"`
}

// RiskFactor describes a single risk element in a capability grant.
type RiskFactor struct {
	Description string    `json:"description" yaml:"description"`
	Rule        string    `json:"rule" yaml:"rule"`
	Level       RiskLevel `json:"level" yaml:"level"`
}

// AnalyzeRisk evaluates the risk level of a GrantSet.
func AnalyzeRisk(grants *GrantSet) RiskReport {
	report := RiskReport{
		Level: RiskNone,
	}

	if grants == nil {
		return report
	}

	addFactor := func(level RiskLevel, desc, rule string) {
		if level > RiskNone {
			report.RiskFactors = append(report.RiskFactors, RiskFactor{
				Level:       level,
				Description: desc,
				Rule:        rule,
			})
			if level > report.Level {
				report.Level = level
			}
		}
	}

	// 1. Analyze Network
	if grants.Network != nil {
		ops := strings.Join(grants.Network.Operations, ",")
		for _, n := range grants.Network.Networks {
			ruleStr := fmt.Sprintf("Network: %s [%s]", n, ops)
			switch {
			case IsPattern(n):
				addFactor(RiskCritical, "Unrestricted network access", ruleStr)
			case n == "mainnet":
				addFactor(RiskMedium, "Mainnet access", ruleStr)
			case n == "testnet" || n == "previewnet":
				addFactor(RiskLow, "Test network access", ruleStr)
			default:
				addFactor(RiskMedium, "Network access", ruleStr)
			}
		}
	}

	// 2. Analyze Transactions
	if grants.Transaction != nil && len(grants.Transaction.Types) > 0 {
		types := strings.Join(grants.Transaction.Types, ",")
		if grants.Transaction.MaxFeeHbar == nil {
			addFactor(RiskHigh, "Transaction submission without fee limit", fmt.Sprintf("Transaction: %s", types))
		} else {
			addFactor(RiskMedium, "Transaction submission",
				fmt.Sprintf("Transaction: %s (max fee %g hbar)", types, *grants.Transaction.MaxFeeHbar))
		}
	}

	return report
}
