package models

// Asset is one balance entry from the account balances endpoint.
type Asset struct {
	CurrencyCode string `json:"currency_code,omitempty"`
	Address      string `json:"address,omitempty"`
	Total        string `json:"total"`
	Available    string `json:"available"`
	InOrder      string `json:"in_order"`
	Memo         string `json:"memo,omitempty"`
	MemoLabel    string `json:"memoLabel,omitempty"`
}

// ZeroAsset is the "no position" sentinel returned when an account holds
// nothing of the requested currency.
func ZeroAsset(currency string) Asset {
	return Asset{
		CurrencyCode: currency,
		Total:        "0",
		Available:    "0",
		InOrder:      "0",
	}
}

// Price is one entry from the market-price endpoint.
type Price struct {
	Symbol      string `json:"symbol"`
	Price       string `json:"price"`
	UpdatedTime uint64 `json:"updated_time"`
}
