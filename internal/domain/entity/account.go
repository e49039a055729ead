package entity

// Account represents a member account of the AWS Organization.
type Account struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	Email       string `json:"email,omitempty"`
	Status      string `json:"status"`
}

// AccountIndex maps account ids to accounts for name lookups.
type AccountIndex map[string]Account

// NewAccountIndex builds an AccountIndex from a list of accounts.
func NewAccountIndex(accounts []Account) AccountIndex {
	idx := make(AccountIndex, len(accounts))
	for _, acc := range accounts {
		idx[acc.AccountID] = acc
	}
	return idx
}

// Name returns the display name of the account, or "Unknown".
func (idx AccountIndex) Name(accountID string) string {
	if acc, ok := idx[accountID]; ok && acc.AccountName != "" {
		return acc.AccountName
	}
	return "Unknown"
}
