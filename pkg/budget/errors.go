package budget

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the budget service.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrUnknownWallet        = errors.New("unknown wallet")
	ErrUnknownTransaction   = errors.New("unknown transaction")
	ErrWalletExists         = errors.New("wallet already exists")
	ErrNoWallets            = errors.New("no wallets available")
	ErrSameWallet           = errors.New("transfer endpoints must differ")
	ErrNonPositiveAmount    = errors.New("amount must be greater than zero")
	ErrInvalidMoney         = errors.New("invalid money amount")
	ErrInvalidLimit         = errors.New("invalid wallet limit")
	ErrInvalidSpent         = errors.New("invalid spent amount")
	ErrInvalidWalletID      = errors.New("invalid wallet id")
	ErrInvalidWalletType    = errors.New("invalid wallet type")
	ErrInvalidPeriodDays    = errors.New("invalid period duration")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
