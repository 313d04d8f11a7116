package shade

import "fmt"

// Code is a Shade contract error number. Numbers are part of the ABI
// (spec.md §6) and must never be renumbered.
type Code int

const (
	ErrNotAuthorized            Code = 1
	ErrAlreadyInitialized       Code = 2
	ErrNotInitialized           Code = 3
	ErrReentrancy               Code = 4
	ErrMerchantAlreadyRegistered Code = 5
	ErrMerchantNotFound         Code = 6
	ErrInvalidAmount            Code = 7
	ErrInvoiceNotFound          Code = 8
	ErrContractPaused           Code = 9
	ErrContractNotPaused        Code = 10
	ErrMerchantKeyNotFound      Code = 11
	ErrTokenNotAccepted         Code = 12
	ErrInvalidSignature         Code = 13
	ErrNonceAlreadyUsed         Code = 14
	ErrInvoiceAlreadyPaid       Code = 15
	ErrInvalidInvoiceStatus     Code = 16
	ErrRefundPeriodExpired      Code = 17
	ErrWasmHashNotSet           Code = 18
	ErrMerchantAccountNotSet    Code = 20
	ErrInvalidInterval          Code = 21
	ErrSubscriptionNotActive    Code = 25
	ErrChargeTooEarly           Code = 26
	ErrInvoiceExpired           Code = 27
)

var codeNames = map[Code]string{
	ErrNotAuthorized:             "NotAuthorized",
	ErrAlreadyInitialized:        "AlreadyInitialized",
	ErrNotInitialized:            "NotInitialized",
	ErrReentrancy:                "Reentrancy",
	ErrMerchantAlreadyRegistered: "MerchantAlreadyRegistered",
	ErrMerchantNotFound:          "MerchantNotFound",
	ErrInvalidAmount:             "InvalidAmount",
	ErrInvoiceNotFound:           "InvoiceNotFound",
	ErrContractPaused:            "ContractPaused",
	ErrContractNotPaused:         "ContractNotPaused",
	ErrMerchantKeyNotFound:       "MerchantKeyNotFound",
	ErrTokenNotAccepted:          "TokenNotAccepted",
	ErrInvalidSignature:          "InvalidSignature",
	ErrNonceAlreadyUsed:          "NonceAlreadyUsed",
	ErrInvoiceAlreadyPaid:        "InvoiceAlreadyPaid",
	ErrInvalidInvoiceStatus:      "InvalidInvoiceStatus",
	ErrRefundPeriodExpired:       "RefundPeriodExpired",
	ErrWasmHashNotSet:            "WasmHashNotSet",
	ErrMerchantAccountNotSet:     "MerchantAccountNotSet",
	ErrInvalidInterval:           "InvalidInterval",
	ErrSubscriptionNotActive:     "SubscriptionNotActive",
	ErrChargeTooEarly:            "ChargeTooEarly",
	ErrInvoiceExpired:            "InvoiceExpired",
}

// Error is the contract's single error type: a stable numeric code plus a
// human-readable message, generalizing goXRPLd's tx.Result taxonomy (tes/
// tec/tef/tem/tel/ter) to Shade's flat 1..27 space. Host-originated errors
// (storage, crypto) are wrapped, never swallowed.
type Error struct {
	Code Code
	msg  string
	wrap error
}

func newErr(c Code) *Error {
	return &Error{Code: c, msg: codeNames[c]}
}

func wrapErr(c Code, err error) *Error {
	return &Error{Code: c, msg: codeNames[c], wrap: err}
}

func (e *Error) Error() string {
	if e.wrap != nil {
		return fmt.Sprintf("shade: %s (%d): %v", e.msg, e.Code, e.wrap)
	}
	return fmt.Sprintf("shade: %s (%d)", e.msg, e.Code)
}

func (e *Error) Unwrap() error { return e.wrap }

// Is reports a match when target is an *Error with the same Code, so
// errors.Is(err, target) compares codes; a bare Code is not an error and
// is compared through CodeOf instead.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// CodeOf extracts the Code from an error returned by a Contract method, or
// 0 if err is nil or not a *Error.
func CodeOf(err error) Code {
	if err == nil {
		return 0
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return 0
}
