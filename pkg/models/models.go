package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
	LoanStatusPaid   LoanStatus = "paid"
)

// Member is a participant in the village bank. Admins may also hold
// savings and loans like ordinary members; the role only affects
// authorization, never calculation.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"` // unique
	PINHash   string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SavingsRecord is one member's savings for one calendar month.
// Unique per (member, month); a second submission for the same month
// overwrites the amount rather than accumulating.
type SavingsRecord struct {
	ID        uuid.UUID       `json:"id"`
	MemberID  uuid.UUID       `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	Month     time.Time       `json:"month"` // always first of month
	CreatedAt time.Time       `json:"created_at"`
}

// Loan carries flat interest: Interest = Principal * rate, fixed at
// disbursement. DisbursementMonth is the savings-snapshot key used for
// every interest distribution this loan ever produces.
type Loan struct {
	ID                 uuid.UUID       `json:"id"`
	MemberID           uuid.UUID       `json:"member_id"`
	Principal          decimal.Decimal `json:"principal"`
	Interest           decimal.Decimal `json:"interest"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	DisbursementMonth  time.Time       `json:"disbursement_month"`
	Status             LoanStatus      `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
}

type LoanRepayment struct {
	ID           uuid.UUID       `json:"id"`
	LoanID       uuid.UUID       `json:"loan_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentMonth time.Time       `json:"payment_month"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InterestDistribution is one member's proportional share of the
// interest pool from a single repayment. LoanMonth records which
// savings snapshot the share was computed from.
type InterestDistribution struct {
	ID             uuid.UUID       `json:"id"`
	MemberID       uuid.UUID       `json:"member_id"`
	LoanMonth      time.Time       `json:"loan_month"`
	RepaymentMonth time.Time       `json:"repayment_month"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Penalty struct {
	ID        uuid.UUID       `json:"id"`
	MemberID  uuid.UUID       `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	Month     time.Time       `json:"month"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PenaltyDistribution is one member's net share of a month-end
// settlement. Amount may be negative when the admin fee exceeds the
// gross penalty share. The existence of any row for a month marks that
// month as closed.
type PenaltyDistribution struct {
	ID        uuid.UUID       `json:"id"`
	MemberID  uuid.UUID       `json:"member_id"`
	Month     time.Time       `json:"month"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Session backs cookie authentication.
type Session struct {
	ID        string    `json:"id"`
	MemberID  uuid.UUID `json:"member_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MemberBalances aggregates the lifetime totals that feed the equity
// calculation for one member.
type MemberBalances struct {
	TotalSavings     decimal.Decimal `json:"total_savings"`
	InterestEarned   decimal.Decimal `json:"interest_earned"`
	PenaltyShare     decimal.Decimal `json:"penalty_share"`
	OutstandingLoans decimal.Decimal `json:"outstanding_loans"`
}
