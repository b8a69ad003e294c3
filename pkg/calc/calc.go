// Package calc holds the financial calculations of the village bank.
// Every function here is pure: no I/O, no shared state, safe for
// concurrent use.
package calc

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kumunzee/villagebank/pkg/models"
)

var (
	// InterestRate is the flat 15% charged on every loan, and the rate
	// at which the interest portion of a repayment is carved out for
	// distribution to savers.
	InterestRate = decimal.NewFromFloat(0.15)

	// MinPaymentRate is the minimum repayment, 10% of the total amount.
	MinPaymentRate = decimal.NewFromFloat(0.10)

	// MinSavingsAmount is the smallest monthly savings entry accepted.
	MinSavingsAmount = decimal.NewFromInt(500)

	// AdminFee is deducted from every member's gross penalty share at
	// month end. The net share goes negative when the fee exceeds it.
	AdminFee = decimal.NewFromInt(50)

	// penaltySurcharge grosses up the penalty pool before the equal
	// split. Numerically the same 15% as loan interest, applied as a
	// surcharge rather than interest.
	penaltySurcharge = decimal.NewFromFloat(1.15)

	one = decimal.NewFromInt(1)
)

// LoanTerms are the derived figures for a loan of a given principal.
type LoanTerms struct {
	Interest    decimal.Decimal `json:"interest"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	MinPayment  decimal.Decimal `json:"min_payment"`
}

// Loan computes flat-interest terms for a principal, rounded to two
// decimal places. Rejects non-positive principals.
func Loan(principal decimal.Decimal) (LoanTerms, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return LoanTerms{}, models.ErrInvalidAmount
	}

	interest := principal.Mul(InterestRate).Round(2)
	totalAmount := principal.Mul(one.Add(InterestRate)).Round(2)
	minPayment := totalAmount.Mul(MinPaymentRate).Round(2)

	return LoanTerms{
		Interest:    interest,
		TotalAmount: totalAmount,
		MinPayment:  minPayment,
	}, nil
}

// MemberSaving is one member's savings entry in a snapshot month.
type MemberSaving struct {
	MemberID uuid.UUID
	Amount   decimal.Decimal
}

// MemberShare is one member's computed share of a distribution.
type MemberShare struct {
	MemberID uuid.UUID
	Share    decimal.Decimal
}

// InterestDistribution splits the interest portion of a repayment
// proportionally across the savings snapshot of the loan's
// disbursement month. Shares round independently to four decimal
// places; rounding remainders are not redistributed, so the sum of
// shares may differ from the pool by a few hundredths at that
// precision. A snapshot with zero total savings yields no shares.
func InterestDistribution(repaymentAmount decimal.Decimal, savings []MemberSaving) []MemberShare {
	interestPool := repaymentAmount.Mul(InterestRate)

	totalSavings := decimal.Zero
	for _, s := range savings {
		totalSavings = totalSavings.Add(s.Amount)
	}

	if totalSavings.IsZero() {
		return nil
	}

	shares := make([]MemberShare, 0, len(savings))
	for _, s := range savings {
		share := s.Amount.Div(totalSavings).Mul(interestPool).Round(4)
		shares = append(shares, MemberShare{MemberID: s.MemberID, Share: share})
	}
	return shares
}

// PenaltyDistribution returns each member's gross share of a month's
// penalty pool: the pool grossed up by the 15% surcharge, split
// equally. Zero members means zero share, never a division by zero.
// The admin fee is netted off by the caller, not here.
func PenaltyDistribution(totalPenalties decimal.Decimal, memberCount int) decimal.Decimal {
	if memberCount == 0 {
		return decimal.Zero
	}

	penaltyWithSurcharge := totalPenalties.Mul(penaltySurcharge)
	return penaltyWithSurcharge.Div(decimal.NewFromInt(int64(memberCount))).Round(4)
}

// EquitySummary is a member's aggregate standing.
type EquitySummary struct {
	TotalEquity decimal.Decimal `json:"total_equity"`
	NetPosition decimal.Decimal `json:"net_position"`
}

// MemberEquity aggregates a member's lifetime figures: equity is
// savings plus earned interest plus penalty share; net position is
// equity minus outstanding loan balances.
func MemberEquity(b models.MemberBalances) EquitySummary {
	totalEquity := b.TotalSavings.Add(b.InterestEarned).Add(b.PenaltyShare).Round(2)
	return EquitySummary{
		TotalEquity: totalEquity,
		NetPosition: totalEquity.Sub(b.OutstandingLoans).Round(2),
	}
}

// FirstOfMonth normalizes any date to the first day of its calendar
// month in UTC. Every month used as a storage or lookup key passes
// through here.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey renders a normalized month the way it is stored, e.g.
// "2025-03-01".
func MonthKey(t time.Time) string {
	return FirstOfMonth(t).Format("2006-01-02")
}

// FormatCurrency renders an amount as Zambian Kwacha with thousands
// separators, e.g. "K2,300.00".
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "K" + b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
