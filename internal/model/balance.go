package model

// TokenBalance holds both token balances for one wallet. The pair is always
// fetched and cached together because callers need both.
type TokenBalance struct {
	Address   string `json:"address"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// SwapRates are the derived buy/sell rates of the swap pair reserves.
type SwapRates struct {
	Buy  string `json:"buy"`
	Sell string `json:"sell"`
}
