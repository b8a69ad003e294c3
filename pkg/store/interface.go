package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/kumunzee/villagebank/pkg/models"
)

// Storage defines the database operations the ledger and auth layers
// need. Months passed in are expected to be normalized to the first of
// the month (calc.FirstOfMonth).
type Storage interface {
	CreateMember(m *models.Member) error
	GetMember(id uuid.UUID) (*models.Member, error)
	GetMemberByPhone(phone string) (*models.Member, error)
	GetAllMembers() ([]*models.Member, error)

	// UpsertSavings inserts a savings record, replacing the amount if
	// one already exists for the same (member, month).
	UpsertSavings(s *models.SavingsRecord) error
	GetSavingsForMonth(month time.Time) ([]*models.SavingsRecord, error)
	GetSavingsForMember(memberID uuid.UUID) ([]*models.SavingsRecord, error)

	CreateLoan(l *models.Loan) error
	GetLoan(id uuid.UUID) (*models.Loan, error)
	UpdateLoan(l *models.Loan) error
	GetAllLoans() ([]*models.Loan, error)
	GetLoansForMember(memberID uuid.UUID) ([]*models.Loan, error)

	CreateRepayment(r *models.LoanRepayment) error
	GetRepaymentsForLoan(loanID uuid.UUID) ([]*models.LoanRepayment, error)

	CreateInterestDistribution(d *models.InterestDistribution) error
	GetInterestDistributionsForMember(memberID uuid.UUID) ([]*models.InterestDistribution, error)

	CreatePenalty(p *models.Penalty) error
	GetPenaltiesForMonth(month time.Time) ([]*models.Penalty, error)
	GetPenaltiesForMember(memberID uuid.UUID) ([]*models.Penalty, error)

	CreatePenaltyDistribution(d *models.PenaltyDistribution) error
	GetPenaltyDistributionsForMember(memberID uuid.UUID) ([]*models.PenaltyDistribution, error)
	// CountPenaltyDistributionsForMonth backs the month-closed guard:
	// any row for a month means that month is settled.
	CountPenaltyDistributionsForMonth(month time.Time) (int, error)

	// MemberBalances returns the lifetime totals feeding the equity
	// calculation for one member.
	MemberBalances(memberID uuid.UUID) (*models.MemberBalances, error)

	CreateSession(s *models.Session) error
	GetSession(id string) (*models.Session, error)
	DeleteSession(id string) error
	DeleteExpiredSessions() error

	// Transact runs fn against a transaction-bound view of the store.
	// If fn returns an error every write made inside it is rolled
	// back. Nested calls join the enclosing transaction.
	Transact(fn func(Storage) error) error

	Close() error
}
