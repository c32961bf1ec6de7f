package payments

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyFinalized    = errors.New("transaction already finalized")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
)

// InconsistencyError marks a transaction the gateway reports as paid but
// whose reservation could not be materialized. It is surfaced, never
// swallowed: the transaction is left COMPLETED without a booking link, the
// pending list surfaces it for operators, and any later Finalize or manual
// recovery retries the materialization.
type InconsistencyError struct {
	TransactionID uuid.UUID
	Cause         error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("payment %s confirmed but reservation could not be materialized: %v", e.TransactionID, e.Cause)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Cause
}
