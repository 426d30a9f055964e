package api

import "github.com/pandodao/zk-wallet/core"

type Balance struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
	// Decimal is Amount in base 10 for humans.
	Decimal string `json:"decimal"`
}

type Output struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

type OutputList struct {
	Owner   string    `json:"owner"`
	Outputs []*Output `json:"utxos"`
	Total   string    `json:"total"`
	Count   int       `json:"count"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Class   string `json:"class"`
	Message string `json:"message"`
}

type ErrorView struct {
	Error ErrorBody `json:"error"`
}

func viewBalance(b *core.Balance) *Balance {
	return &Balance{
		Owner:   b.Owner.String(),
		Amount:  b.Amount.String(),
		Decimal: b.Amount.Dec(),
	}
}

func viewOutput(o *core.Output) *Output {
	return &Output{
		ID:     o.ID.String(),
		Amount: o.Amount.String(),
	}
}
