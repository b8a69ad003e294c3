package models

import "errors"

// Domain errors. Callers distinguish these from store failures with
// errors.Is; anything not matching a sentinel is an internal failure.
var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrBelowMinimumSavings     = errors.New("amount is below the minimum savings")
	ErrRepaymentExceedsBalance = errors.New("repayment amount exceeds outstanding balance")
	ErrMonthAlreadyClosed      = errors.New("month-end has already been processed for this month")
	ErrNoMembers               = errors.New("no members found")
	ErrPhoneTaken              = errors.New("phone number already registered")
	ErrInvalidPIN              = errors.New("PIN must be exactly 4 digits")
	ErrInvalidCredentials      = errors.New("invalid phone or PIN")
	ErrInvalidSession          = errors.New("session is invalid or expired")
)
