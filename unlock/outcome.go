package unlock

import "github.com/lightgodwoken/unlock-workers/chain"

// Outcome is the result of one submission: either Success or Failure.
type Outcome interface {
	isOutcome()
}

type Success struct {
	TxHash string
	Link   string
}

type Failure struct {
	Kind   chain.ErrorKind
	Detail string
	Err    error
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}
