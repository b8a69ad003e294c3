// Package ledger implements the savings-and-loan operations of the
// village bank: member registration, monthly savings, loan
// disbursement, repayment settlement with proportional interest
// distribution, and the month-end penalty settlement.
package ledger

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/kumunzee/villagebank/pkg/calc"
	"github.com/kumunzee/villagebank/pkg/models"
	"github.com/kumunzee/villagebank/pkg/store"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Ledger handles the business logic for members, savings, loans and
// settlements.
type Ledger struct {
	storage store.Storage
	logger  *logrus.Logger
}

// NewLedger creates a new Ledger with a given Storage implementation.
func NewLedger(s store.Storage, logger *logrus.Logger) *Ledger {
	return &Ledger{storage: s, logger: logger}
}

// RegisterMember creates a member with a bcrypt-hashed PIN. Phone
// numbers are unique across the group.
func (l *Ledger) RegisterMember(name, phone, pin string, role models.Role) (*models.Member, error) {
	if name == "" || phone == "" {
		return nil, fmt.Errorf("name and phone are required")
	}
	if !pinPattern.MatchString(pin) {
		return nil, models.ErrInvalidPIN
	}
	if role == "" {
		role = models.RoleMember
	}

	if _, err := l.storage.GetMemberByPhone(phone); err == nil {
		return nil, models.ErrPhoneTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	member := &models.Member{
		ID:        uuid.New(),
		Name:      name,
		Phone:     phone,
		PINHash:   string(hash),
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := l.storage.CreateMember(member); err != nil {
		return nil, fmt.Errorf("failed to store member: %w", err)
	}

	l.logger.WithFields(logrus.Fields{
		"member_id": member.ID,
		"role":      member.Role,
	}).Info("Member registered")
	return member, nil
}

// RecordSavings upserts a member's savings for a month. A second entry
// for the same month overwrites the first. The month is normalized to
// its first day before it becomes the storage key.
func (l *Ledger) RecordSavings(memberID uuid.UUID, amount decimal.Decimal, month time.Time) (*models.SavingsRecord, error) {
	if amount.LessThan(calc.MinSavingsAmount) {
		return nil, fmt.Errorf("minimum savings is %s: %w",
			calc.FormatCurrency(calc.MinSavingsAmount), models.ErrBelowMinimumSavings)
	}
	if _, err := l.storage.GetMember(memberID); err != nil {
		return nil, err
	}

	record := &models.SavingsRecord{
		ID:        uuid.New(),
		MemberID:  memberID,
		Amount:    amount,
		Month:     calc.FirstOfMonth(month),
		CreatedAt: time.Now(),
	}
	if err := l.storage.UpsertSavings(record); err != nil {
		return nil, fmt.Errorf("failed to store savings: %w", err)
	}

	l.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"month":     calc.MonthKey(record.Month),
		"amount":    amount,
	}).Info("Savings recorded")
	return record, nil
}

// DisburseLoan creates a loan with flat-interest terms. The
// disbursement month is normalized and becomes the savings-snapshot
// key for every interest distribution this loan produces.
func (l *Ledger) DisburseLoan(memberID uuid.UUID, principal decimal.Decimal, month time.Time) (*models.Loan, error) {
	terms, err := calc.Loan(principal)
	if err != nil {
		return nil, err
	}
	if _, err := l.storage.GetMember(memberID); err != nil {
		return nil, err
	}

	loan := &models.Loan{
		ID:                 uuid.New(),
		MemberID:           memberID,
		Principal:          principal,
		Interest:           terms.Interest,
		TotalAmount:        terms.TotalAmount,
		OutstandingBalance: terms.TotalAmount,
		DisbursementMonth:  calc.FirstOfMonth(month),
		Status:             models.LoanStatusActive,
		CreatedAt:          time.Now(),
	}
	if err := l.storage.CreateLoan(loan); err != nil {
		return nil, fmt.Errorf("failed to store loan: %w", err)
	}

	l.logger.WithFields(logrus.Fields{
		"loan_id":   loan.ID,
		"member_id": memberID,
		"principal": principal,
		"total":     terms.TotalAmount,
	}).Info("Loan disbursed")
	return loan, nil
}

// RecordRepayment applies a repayment to a loan and distributes the
// interest portion to savers, as one atomic unit:
//
//  1. append the repayment row
//  2. reduce the outstanding balance, flipping status to paid at zero
//  3. snapshot savings for the loan's disbursement month
//  4. compute proportional interest shares
//  5. persist one distribution row per member with a positive share
//
// A repayment exceeding the outstanding balance is rejected before any
// mutation. The balance check runs inside the transaction so two
// concurrent repayments cannot both pass it against a stale balance.
func (l *Ledger) RecordRepayment(loanID uuid.UUID, amount decimal.Decimal, paymentMonth time.Time) (*models.LoanRepayment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}
	month := calc.FirstOfMonth(paymentMonth)

	var repayment *models.LoanRepayment
	err := l.storage.Transact(func(tx store.Storage) error {
		loan, err := tx.GetLoan(loanID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(loan.OutstandingBalance) {
			return models.ErrRepaymentExceedsBalance
		}

		repayment = &models.LoanRepayment{
			ID:           uuid.New(),
			LoanID:       loan.ID,
			Amount:       amount,
			PaymentMonth: month,
			CreatedAt:    time.Now(),
		}
		if err := tx.CreateRepayment(repayment); err != nil {
			return err
		}

		loan.OutstandingBalance = loan.OutstandingBalance.Sub(amount)
		if loan.OutstandingBalance.IsZero() {
			loan.Status = models.LoanStatusPaid
		}
		if err := tx.UpdateLoan(loan); err != nil {
			return err
		}

		snapshot, err := tx.GetSavingsForMonth(loan.DisbursementMonth)
		if err != nil {
			return err
		}
		savings := make([]calc.MemberSaving, 0, len(snapshot))
		for _, rec := range snapshot {
			savings = append(savings, calc.MemberSaving{MemberID: rec.MemberID, Amount: rec.Amount})
		}

		for _, share := range calc.InterestDistribution(amount, savings) {
			if !share.Share.IsPositive() {
				continue
			}
			dist := &models.InterestDistribution{
				ID:             uuid.New(),
				MemberID:       share.MemberID,
				LoanMonth:      loan.DisbursementMonth,
				RepaymentMonth: month,
				Amount:         share.Share,
				CreatedAt:      time.Now(),
			}
			if err := tx.CreateInterestDistribution(dist); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.logger.WithError(err).WithField("loan_id", loanID).Warn("Repayment rejected")
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"loan_id": loanID,
		"amount":  amount,
		"month":   calc.MonthKey(month),
	}).Info("Repayment recorded and interest distributed")
	return repayment, nil
}

// RecordPenalty enters an admin-assessed penalty against a member for
// a month.
func (l *Ledger) RecordPenalty(memberID uuid.UUID, amount decimal.Decimal, month time.Time, reason string) (*models.Penalty, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}
	if _, err := l.storage.GetMember(memberID); err != nil {
		return nil, err
	}

	penalty := &models.Penalty{
		ID:        uuid.New(),
		MemberID:  memberID,
		Amount:    amount,
		Month:     calc.FirstOfMonth(month),
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	if err := l.storage.CreatePenalty(penalty); err != nil {
		return nil, fmt.Errorf("failed to store penalty: %w", err)
	}
	return penalty, nil
}

// ProcessMonthEnd distributes the month's penalties equally among all
// members and deducts the admin fee, as one atomic unit. The existence
// of any penalty-distribution row for the month marks it closed; the
// guard is checked inside the transaction so concurrent invocations
// cannot both pass it, and a crash mid-loop never leaves a month
// half-distributed.
func (l *Ledger) ProcessMonthEnd(month time.Time) error {
	target := calc.FirstOfMonth(month)

	err := l.storage.Transact(func(tx store.Storage) error {
		count, err := tx.CountPenaltyDistributionsForMonth(target)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrMonthAlreadyClosed
		}

		members, err := tx.GetAllMembers()
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return models.ErrNoMembers
		}

		penalties, err := tx.GetPenaltiesForMonth(target)
		if err != nil {
			return err
		}
		totalPenalties := decimal.Zero
		for _, p := range penalties {
			totalPenalties = totalPenalties.Add(p.Amount)
		}

		grossShare := calc.PenaltyDistribution(totalPenalties, len(members))
		netShare := grossShare.Sub(calc.AdminFee) // may be negative

		for _, m := range members {
			dist := &models.PenaltyDistribution{
				ID:        uuid.New(),
				MemberID:  m.ID,
				Month:     target,
				Amount:    netShare,
				CreatedAt: time.Now(),
			}
			if err := tx.CreatePenaltyDistribution(dist); err != nil {
				return err
			}
		}

		l.logger.WithFields(logrus.Fields{
			"month":           calc.MonthKey(target),
			"total_penalties": totalPenalties,
			"members":         len(members),
			"net_share":       netShare,
		}).Info("Month-end processed")
		return nil
	})
	if err != nil {
		l.logger.WithError(err).WithField("month", calc.MonthKey(target)).Warn("Month-end not processed")
	}
	return err
}

// MemberSummary is the dashboard view of one member's standing.
type MemberSummary struct {
	Balances        models.MemberBalances          `json:"balances"`
	Equity          calc.EquitySummary             `json:"equity"`
	TotalLoans      int                            `json:"total_loans"`
	ActiveLoans     int                            `json:"active_loans"`
	RecentSavings   []*models.SavingsRecord        `json:"recent_savings"`
	RecentInterest  []*models.InterestDistribution `json:"recent_interest"`
	RecentPenalties []*models.PenaltyDistribution  `json:"recent_penalties"`
}

const recentLimit = 10

// Summary aggregates a member's savings, earned interest, penalty
// share and outstanding loans into equity and net position.
func (l *Ledger) Summary(memberID uuid.UUID) (*MemberSummary, error) {
	if _, err := l.storage.GetMember(memberID); err != nil {
		return nil, err
	}

	balances, err := l.storage.MemberBalances(memberID)
	if err != nil {
		return nil, err
	}

	loans, err := l.storage.GetLoansForMember(memberID)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, loan := range loans {
		if loan.Status == models.LoanStatusActive {
			active++
		}
	}

	savings, err := l.storage.GetSavingsForMember(memberID)
	if err != nil {
		return nil, err
	}
	interest, err := l.storage.GetInterestDistributionsForMember(memberID)
	if err != nil {
		return nil, err
	}
	penalties, err := l.storage.GetPenaltyDistributionsForMember(memberID)
	if err != nil {
		return nil, err
	}

	return &MemberSummary{
		Balances:        *balances,
		Equity:          calc.MemberEquity(*balances),
		TotalLoans:      len(loans),
		ActiveLoans:     active,
		RecentSavings:   clip(savings, recentLimit),
		RecentInterest:  clip(interest, recentLimit),
		RecentPenalties: clip(penalties, recentLimit),
	}, nil
}

func clip[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// GetLoan retrieves a loan by its ID.
func (l *Ledger) GetLoan(id uuid.UUID) (*models.Loan, error) {
	return l.storage.GetLoan(id)
}

// GetAllLoans retrieves all loans.
func (l *Ledger) GetAllLoans() ([]*models.Loan, error) {
	return l.storage.GetAllLoans()
}

// GetLoansForMember retrieves one member's loans.
func (l *Ledger) GetLoansForMember(memberID uuid.UUID) ([]*models.Loan, error) {
	return l.storage.GetLoansForMember(memberID)
}

// GetRepaymentsForLoan retrieves a loan's repayment history.
func (l *Ledger) GetRepaymentsForLoan(loanID uuid.UUID) ([]*models.LoanRepayment, error) {
	return l.storage.GetRepaymentsForLoan(loanID)
}

// GetAllMembers retrieves all members.
func (l *Ledger) GetAllMembers() ([]*models.Member, error) {
	return l.storage.GetAllMembers()
}

// GetSavingsForMonth retrieves every member's savings entry for a month.
func (l *Ledger) GetSavingsForMonth(month time.Time) ([]*models.SavingsRecord, error) {
	return l.storage.GetSavingsForMonth(calc.FirstOfMonth(month))
}

// GetPenaltiesForMonth retrieves the penalties entered for a month.
func (l *Ledger) GetPenaltiesForMonth(month time.Time) ([]*models.Penalty, error) {
	return l.storage.GetPenaltiesForMonth(calc.FirstOfMonth(month))
}
