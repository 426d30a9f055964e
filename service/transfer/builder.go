package transfer

import (
	"fmt"

	"github.com/pandodao/zk-wallet/core"
)

type Builder struct {
	Fee             core.Amount
	AllowZeroAmount bool
}

func (b *Builder) Target(amount core.Amount) (core.Amount, error) {
	if amount.IsZero() && !b.AllowZeroAmount {
		return core.Amount{}, core.ErrZeroAmount
	}

	target, err := amount.Add(b.Fee)
	if err != nil {
		return core.Amount{}, fmt.Errorf("amount plus fee: %w", err)
	}

	return target, nil
}

// Build assembles the unsigned transaction. Inputs keep the selector's
// order; outputs are the payment followed by change back to the sender when
// there is any. The inputs must equal outputs plus fee exactly.
func (b *Builder) Build(
	nonce core.Nonce,
	from, to core.Account,
	amount core.Amount,
	selected []*core.Output,
	change core.Amount,
) (*core.Transaction, error) {
	if amount.IsZero() && !b.AllowZeroAmount {
		return nil, core.ErrZeroAmount
	}

	tx := &core.Transaction{
		Nonce:  nonce,
		Sender: from,
		Fee:    b.Fee,
	}

	var inputs core.Amount
	for _, output := range selected {
		if output.Owner != from {
			return nil, fmt.Errorf("output %s is not owned by %s", output.ID, from)
		}

		sum, err := inputs.Add(output.Amount)
		if err != nil {
			return nil, fmt.Errorf("sum inputs: %w", err)
		}

		inputs = sum
		tx.Inputs = append(tx.Inputs, output.ID)
	}

	tx.Outputs = append(tx.Outputs, core.TxOutput{Owner: to, Amount: amount})
	if !change.IsZero() {
		tx.Outputs = append(tx.Outputs, core.TxOutput{Owner: from, Amount: change})
	}

	outputs, err := tx.OutputTotal()
	if err != nil {
		return nil, fmt.Errorf("sum outputs: %w", err)
	}

	spent, err := outputs.Add(b.Fee)
	if err != nil {
		return nil, fmt.Errorf("sum outputs: %w", err)
	}

	if !spent.Equal(inputs) {
		return nil, fmt.Errorf("unbalanced transaction: inputs %s, outputs %s, fee %s", inputs.Dec(), outputs.Dec(), b.Fee.Dec())
	}

	return tx, nil
}
