package transfer

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/pandodao/zk-wallet/core"
)

// Select picks outputs largest first, ties broken by ascending id, until the
// running total covers target. The result is deterministic for a given set
// and never includes an output past the one that crosses target.
func Select(outputs []*core.Output, target core.Amount) ([]*core.Output, core.Amount, error) {
	sorted := slices.Clone(outputs)
	slices.SortFunc(sorted, compareOutputs)

	var (
		selected []*core.Output
		total    core.Amount
		err      error
	)

	for _, output := range sorted {
		if total.Cmp(target) >= 0 {
			break
		}

		if total, err = total.Add(output.Amount); err != nil {
			return nil, core.Amount{}, fmt.Errorf("sum selected outputs: %w", err)
		}

		selected = append(selected, output)
	}

	if total.Cmp(target) < 0 {
		return nil, core.Amount{}, &core.InsufficientFundsError{
			Available: total,
			Requested: target,
		}
	}

	change, err := total.Sub(target)
	if err != nil {
		return nil, core.Amount{}, err
	}

	return selected, change, nil
}

func compareOutputs(a, b *core.Output) int {
	if c := b.Amount.Cmp(a.Amount); c != 0 {
		return c
	}

	return bytes.Compare(a.ID[:], b.ID[:])
}
