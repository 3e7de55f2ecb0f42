package models

import "time"

// AccountType is one of the six chart-of-accounts categories.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
	AccountCost      AccountType = "cost"
)

var accountTypeLabels = map[AccountType]string{
	AccountAsset:     "Activo",
	AccountLiability: "Pasivo",
	AccountEquity:    "Capital",
	AccountRevenue:   "Ingreso",
	AccountExpense:   "Gasto",
	AccountCost:      "Costo",
}

// Label returns the Spanish name of the account type, or the raw value when unknown.
func (t AccountType) Label() string {
	if label, ok := accountTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// NormalBalance is the side on which an account increases.
type NormalBalance string

const (
	BalanceDebit  NormalBalance = "debit"
	BalanceCredit NormalBalance = "credit"
)

// Label returns the Spanish name of the balance side.
func (b NormalBalance) Label() string {
	if b == BalanceDebit {
		return "Deudora"
	}
	return "Acreedora"
}

// Account is a chart_of_accounts row.
type Account struct {
	ID              string        `json:"id"`
	AccountCode     string        `json:"account_code"`
	AccountName     string        `json:"account_name"`
	AccountType     AccountType   `json:"account_type"`
	AccountSubtype  *string       `json:"account_subtype,omitempty"`
	SATCodeID       *string       `json:"sat_code_id,omitempty"`
	ParentAccountID *string       `json:"parent_account_id,omitempty"`
	Level           int           `json:"level"`
	IsHeader        bool          `json:"is_header"`
	IsActive        bool          `json:"is_active"`
	NormalBalance   NormalBalance `json:"normal_balance"`
	AllowsEntries   bool          `json:"allows_entries"`
	CurrentBalance  float64       `json:"current_balance"`
	Description     *string       `json:"description,omitempty"`
	CreatedAt       *time.Time    `json:"created_at,omitempty"`
	UpdatedAt       *time.Time    `json:"updated_at,omitempty"`
}

// AccountRow is one line of the chart-of-accounts table.
type AccountRow struct {
	Account
	TypeLabel          string `json:"type_label"`
	NormalBalanceLabel string `json:"normal_balance_label"`
	BalanceDisplay     string `json:"balance_display"`
}
