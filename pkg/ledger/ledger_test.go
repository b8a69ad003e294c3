package ledger

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kumunzee/villagebank/pkg/calc"
	"github.com/kumunzee/villagebank/pkg/models"
	"github.com/kumunzee/villagebank/pkg/store"
)

// MockStore is an in-memory implementation of the Storage interface.
// Reads hand out copies so writes only land through the store methods,
// and Transact restores a snapshot when the callback fails, mirroring
// a real rollback.
type MockStore struct {
	members       map[uuid.UUID]*models.Member
	savings       map[string]*models.SavingsRecord // keyed member|month
	loans         map[uuid.UUID]*models.Loan
	repayments    []*models.LoanRepayment
	interestDists []*models.InterestDistribution
	penalties     []*models.Penalty
	penaltyDists  []*models.PenaltyDistribution
	sessions      map[string]*models.Session
}

func NewMockStore() *MockStore {
	return &MockStore{
		members:  make(map[uuid.UUID]*models.Member),
		savings:  make(map[string]*models.SavingsRecord),
		loans:    make(map[uuid.UUID]*models.Loan),
		sessions: make(map[string]*models.Session),
	}
}

func savingsKey(memberID uuid.UUID, month time.Time) string {
	return memberID.String() + "|" + calc.MonthKey(month)
}

func (m *MockStore) CreateMember(member *models.Member) error {
	m.members[member.ID] = member
	return nil
}

func (m *MockStore) GetMember(id uuid.UUID) (*models.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", id, models.ErrNotFound)
	}
	cp := *member
	return &cp, nil
}

func (m *MockStore) GetMemberByPhone(phone string) (*models.Member, error) {
	for _, member := range m.members {
		if member.Phone == phone {
			cp := *member
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("member with phone %s: %w", phone, models.ErrNotFound)
}

func (m *MockStore) GetAllMembers() ([]*models.Member, error) {
	members := []*models.Member{}
	for _, member := range m.members {
		cp := *member
		members = append(members, &cp)
	}
	return members, nil
}

func (m *MockStore) UpsertSavings(rec *models.SavingsRecord) error {
	cp := *rec
	m.savings[savingsKey(rec.MemberID, rec.Month)] = &cp
	return nil
}

func (m *MockStore) GetSavingsForMonth(month time.Time) ([]*models.SavingsRecord, error) {
	records := []*models.SavingsRecord{}
	for _, rec := range m.savings {
		if rec.Month.Equal(month) {
			cp := *rec
			records = append(records, &cp)
		}
	}
	return records, nil
}

func (m *MockStore) GetSavingsForMember(memberID uuid.UUID) ([]*models.SavingsRecord, error) {
	records := []*models.SavingsRecord{}
	for _, rec := range m.savings {
		if rec.MemberID == memberID {
			cp := *rec
			records = append(records, &cp)
		}
	}
	return records, nil
}

func (m *MockStore) CreateLoan(l *models.Loan) error {
	cp := *l
	m.loans[l.ID] = &cp
	return nil
}

func (m *MockStore) GetLoan(id uuid.UUID) (*models.Loan, error) {
	l, ok := m.loans[id]
	if !ok {
		return nil, fmt.Errorf("loan %s: %w", id, models.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (m *MockStore) UpdateLoan(l *models.Loan) error {
	if _, ok := m.loans[l.ID]; !ok {
		return fmt.Errorf("loan %s: %w", l.ID, models.ErrNotFound)
	}
	cp := *l
	m.loans[l.ID] = &cp
	return nil
}

func (m *MockStore) GetAllLoans() ([]*models.Loan, error) {
	loans := []*models.Loan{}
	for _, l := range m.loans {
		cp := *l
		loans = append(loans, &cp)
	}
	return loans, nil
}

func (m *MockStore) GetLoansForMember(memberID uuid.UUID) ([]*models.Loan, error) {
	loans := []*models.Loan{}
	for _, l := range m.loans {
		if l.MemberID == memberID {
			cp := *l
			loans = append(loans, &cp)
		}
	}
	return loans, nil
}

func (m *MockStore) CreateRepayment(r *models.LoanRepayment) error {
	cp := *r
	m.repayments = append(m.repayments, &cp)
	return nil
}

func (m *MockStore) GetRepaymentsForLoan(loanID uuid.UUID) ([]*models.LoanRepayment, error) {
	repayments := []*models.LoanRepayment{}
	for _, r := range m.repayments {
		if r.LoanID == loanID {
			cp := *r
			repayments = append(repayments, &cp)
		}
	}
	return repayments, nil
}

func (m *MockStore) CreateInterestDistribution(d *models.InterestDistribution) error {
	cp := *d
	m.interestDists = append(m.interestDists, &cp)
	return nil
}

func (m *MockStore) GetInterestDistributionsForMember(memberID uuid.UUID) ([]*models.InterestDistribution, error) {
	dists := []*models.InterestDistribution{}
	for _, d := range m.interestDists {
		if d.MemberID == memberID {
			cp := *d
			dists = append(dists, &cp)
		}
	}
	return dists, nil
}

func (m *MockStore) CreatePenalty(p *models.Penalty) error {
	cp := *p
	m.penalties = append(m.penalties, &cp)
	return nil
}

func (m *MockStore) GetPenaltiesForMonth(month time.Time) ([]*models.Penalty, error) {
	penalties := []*models.Penalty{}
	for _, p := range m.penalties {
		if p.Month.Equal(month) {
			cp := *p
			penalties = append(penalties, &cp)
		}
	}
	return penalties, nil
}

func (m *MockStore) GetPenaltiesForMember(memberID uuid.UUID) ([]*models.Penalty, error) {
	penalties := []*models.Penalty{}
	for _, p := range m.penalties {
		if p.MemberID == memberID {
			cp := *p
			penalties = append(penalties, &cp)
		}
	}
	return penalties, nil
}

func (m *MockStore) CreatePenaltyDistribution(d *models.PenaltyDistribution) error {
	cp := *d
	m.penaltyDists = append(m.penaltyDists, &cp)
	return nil
}

func (m *MockStore) GetPenaltyDistributionsForMember(memberID uuid.UUID) ([]*models.PenaltyDistribution, error) {
	dists := []*models.PenaltyDistribution{}
	for _, d := range m.penaltyDists {
		if d.MemberID == memberID {
			cp := *d
			dists = append(dists, &cp)
		}
	}
	return dists, nil
}

func (m *MockStore) CountPenaltyDistributionsForMonth(month time.Time) (int, error) {
	count := 0
	for _, d := range m.penaltyDists {
		if d.Month.Equal(month) {
			count++
		}
	}
	return count, nil
}

func (m *MockStore) MemberBalances(memberID uuid.UUID) (*models.MemberBalances, error) {
	b := &models.MemberBalances{
		TotalSavings:     decimal.Zero,
		InterestEarned:   decimal.Zero,
		PenaltyShare:     decimal.Zero,
		OutstandingLoans: decimal.Zero,
	}
	for _, rec := range m.savings {
		if rec.MemberID == memberID {
			b.TotalSavings = b.TotalSavings.Add(rec.Amount)
		}
	}
	for _, d := range m.interestDists {
		if d.MemberID == memberID {
			b.InterestEarned = b.InterestEarned.Add(d.Amount)
		}
	}
	for _, d := range m.penaltyDists {
		if d.MemberID == memberID {
			b.PenaltyShare = b.PenaltyShare.Add(d.Amount)
		}
	}
	for _, l := range m.loans {
		if l.MemberID == memberID && l.Status == models.LoanStatusActive {
			b.OutstandingLoans = b.OutstandingLoans.Add(l.OutstandingBalance)
		}
	}
	return b, nil
}

func (m *MockStore) CreateSession(s *models.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *MockStore) GetSession(id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session: %w", models.ErrNotFound)
	}
	return s, nil
}

func (m *MockStore) DeleteSession(id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *MockStore) DeleteExpiredSessions() error {
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(time.Now()) {
			delete(m.sessions, id)
		}
	}
	return nil
}

type mockSnapshot struct {
	members       map[uuid.UUID]*models.Member
	savings       map[string]*models.SavingsRecord
	loans         map[uuid.UUID]*models.Loan
	repayments    []*models.LoanRepayment
	interestDists []*models.InterestDistribution
	penalties     []*models.Penalty
	penaltyDists  []*models.PenaltyDistribution
}

func (m *MockStore) snapshot() mockSnapshot {
	snap := mockSnapshot{
		members:       make(map[uuid.UUID]*models.Member, len(m.members)),
		savings:       make(map[string]*models.SavingsRecord, len(m.savings)),
		loans:         make(map[uuid.UUID]*models.Loan, len(m.loans)),
		repayments:    append([]*models.LoanRepayment{}, m.repayments...),
		interestDists: append([]*models.InterestDistribution{}, m.interestDists...),
		penalties:     append([]*models.Penalty{}, m.penalties...),
		penaltyDists:  append([]*models.PenaltyDistribution{}, m.penaltyDists...),
	}
	for k, v := range m.members {
		snap.members[k] = v
	}
	for k, v := range m.savings {
		snap.savings[k] = v
	}
	for k, v := range m.loans {
		snap.loans[k] = v
	}
	return snap
}

func (m *MockStore) Transact(fn func(store.Storage) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.members = snap.members
		m.savings = snap.savings
		m.loans = snap.loans
		m.repayments = snap.repayments
		m.interestDists = snap.interestDists
		m.penalties = snap.penalties
		m.penaltyDists = snap.penaltyDists
		return err
	}
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// addMember inserts a member directly, skipping the bcrypt hash.
func addMember(s *MockStore, name string) *models.Member {
	member := &models.Member{
		ID:        uuid.New(),
		Name:      name,
		Phone:     "+2609" + uuid.NewString()[:8],
		PINHash:   "unused",
		Role:      models.RoleMember,
		CreatedAt: time.Now(),
	}
	s.CreateMember(member)
	return member
}

var (
	december = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	january  = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func TestRegisterMember(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())

	member, err := l.RegisterMember("Grace Mwamba", "+260971234567", "1234", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Failed to register member: %v", err)
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("Expected role admin, got %s", member.Role)
	}
	if member.PINHash == "1234" {
		t.Error("PIN must not be stored in plain text")
	}

	_, err = l.RegisterMember("Someone Else", "+260971234567", "9999", models.RoleMember)
	if !errors.Is(err, models.ErrPhoneTaken) {
		t.Errorf("Expected ErrPhoneTaken, got %v", err)
	}

	_, err = l.RegisterMember("Bad Pin", "+260970000000", "12", models.RoleMember)
	if !errors.Is(err, models.ErrInvalidPIN) {
		t.Errorf("Expected ErrInvalidPIN, got %v", err)
	}
}

func TestRecordSavings_UpsertsPerMonth(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	member := addMember(s, "John Banda")

	if _, err := l.RecordSavings(member.ID, decimal.NewFromInt(500), december); err != nil {
		t.Fatalf("Failed to record savings: %v", err)
	}

	// A second entry for the same month overwrites, not accumulates.
	// The 15th normalizes to the same month key as the 1st.
	midMonth := time.Date(2025, time.December, 15, 10, 0, 0, 0, time.UTC)
	if _, err := l.RecordSavings(member.ID, decimal.NewFromInt(650), midMonth); err != nil {
		t.Fatalf("Failed to upsert savings: %v", err)
	}

	records, _ := s.GetSavingsForMonth(december)
	if len(records) != 1 {
		t.Fatalf("Expected 1 savings record, got %d", len(records))
	}
	if !records[0].Amount.Equal(decimal.NewFromInt(650)) {
		t.Errorf("Expected amount 650 after upsert, got %s", records[0].Amount)
	}
}

func TestRecordSavings_BelowMinimum(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	member := addMember(s, "John Banda")

	_, err := l.RecordSavings(member.ID, decimal.NewFromInt(499), december)
	if !errors.Is(err, models.ErrBelowMinimumSavings) {
		t.Errorf("Expected ErrBelowMinimumSavings, got %v", err)
	}
}

func TestDisburseLoan(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	member := addMember(s, "John Banda")

	loan, err := l.DisburseLoan(member.ID, decimal.NewFromInt(2000), december)
	if err != nil {
		t.Fatalf("Failed to disburse loan: %v", err)
	}

	if !loan.Interest.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected interest 300, got %s", loan.Interest)
	}
	if !loan.TotalAmount.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("Expected total 2300, got %s", loan.TotalAmount)
	}
	if !loan.OutstandingBalance.Equal(loan.TotalAmount) {
		t.Errorf("Outstanding balance should start at total amount, got %s", loan.OutstandingBalance)
	}
	if loan.Status != models.LoanStatusActive {
		t.Errorf("Expected status active, got %s", loan.Status)
	}

	_, err = l.DisburseLoan(member.ID, decimal.Zero, december)
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for zero principal, got %v", err)
	}
}

// seedLoanScenario sets up the five-member savings snapshot from the
// seed data and a K2000 loan disbursed in December.
func seedLoanScenario(t *testing.T, s *MockStore, l *Ledger) (*models.Loan, []*models.Member) {
	t.Helper()

	amounts := []int64{500, 500, 600, 550, 500}
	members := make([]*models.Member, len(amounts))
	for i, amt := range amounts {
		members[i] = addMember(s, fmt.Sprintf("Member %d", i))
		if _, err := l.RecordSavings(members[i].ID, decimal.NewFromInt(amt), december); err != nil {
			t.Fatalf("Failed to record savings: %v", err)
		}
	}

	loan, err := l.DisburseLoan(members[0].ID, decimal.NewFromInt(2000), december)
	if err != nil {
		t.Fatalf("Failed to disburse loan: %v", err)
	}
	return loan, members
}

func TestRecordRepayment_DistributesInterest(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	loan, members := seedLoanScenario(t, s, l)

	_, err := l.RecordRepayment(loan.ID, decimal.NewFromInt(500), january)
	if err != nil {
		t.Fatalf("Failed to record repayment: %v", err)
	}

	updated, _ := s.GetLoan(loan.ID)
	if !updated.OutstandingBalance.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("Expected balance 1800, got %s", updated.OutstandingBalance)
	}
	if updated.Status != models.LoanStatusActive {
		t.Errorf("Expected status active after partial repayment, got %s", updated.Status)
	}

	if len(s.interestDists) != 5 {
		t.Fatalf("Expected 5 interest distributions, got %d", len(s.interestDists))
	}

	// Member 0 saved 500 of 2650 total; pool is 500 * 0.15 = 75.
	dists, _ := s.GetInterestDistributionsForMember(members[0].ID)
	if len(dists) != 1 {
		t.Fatalf("Expected 1 distribution for member 0, got %d", len(dists))
	}
	want := decimal.RequireFromString("14.1509")
	if !dists[0].Amount.Equal(want) {
		t.Errorf("Expected share %s, got %s", want, dists[0].Amount)
	}
	if !dists[0].LoanMonth.Equal(december) {
		t.Errorf("Distribution should be keyed by the disbursement month, got %s", dists[0].LoanMonth)
	}
	if !dists[0].RepaymentMonth.Equal(january) {
		t.Errorf("Expected repayment month January, got %s", dists[0].RepaymentMonth)
	}
}

func TestRecordRepayment_FullPayoff(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	loan, _ := seedLoanScenario(t, s, l)

	_, err := l.RecordRepayment(loan.ID, decimal.NewFromInt(2300), january)
	if err != nil {
		t.Fatalf("Failed to record repayment: %v", err)
	}

	updated, _ := s.GetLoan(loan.ID)
	if updated.Status != models.LoanStatusPaid {
		t.Errorf("Expected status paid, got %s", updated.Status)
	}
	if !updated.OutstandingBalance.IsZero() {
		t.Errorf("Expected zero balance, got %s", updated.OutstandingBalance)
	}
}

func TestRecordRepayment_ExceedsBalance(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	loan, _ := seedLoanScenario(t, s, l)

	_, err := l.RecordRepayment(loan.ID, decimal.NewFromInt(2301), january)
	if !errors.Is(err, models.ErrRepaymentExceedsBalance) {
		t.Fatalf("Expected ErrRepaymentExceedsBalance, got %v", err)
	}

	// Rejection must leave no trace: balance, repayments and
	// distributions all untouched.
	updated, _ := s.GetLoan(loan.ID)
	if !updated.OutstandingBalance.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("Balance must be unchanged, got %s", updated.OutstandingBalance)
	}
	if len(s.repayments) != 0 {
		t.Errorf("Expected no repayment rows, got %d", len(s.repayments))
	}
	if len(s.interestDists) != 0 {
		t.Errorf("Expected no distribution rows, got %d", len(s.interestDists))
	}
}

func TestRecordRepayment_InvalidAmount(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	loan, _ := seedLoanScenario(t, s, l)

	_, err := l.RecordRepayment(loan.ID, decimal.Zero, january)
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestRecordRepayment_UnknownLoan(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())

	_, err := l.RecordRepayment(uuid.New(), decimal.NewFromInt(100), january)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecordRepayment_NoSavingsSnapshot(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	member := addMember(s, "John Banda")

	// Loan disbursed in a month with no savings entries: the repayment
	// succeeds and the interest goes undistributed by policy.
	loan, err := l.DisburseLoan(member.ID, decimal.NewFromInt(1000), january)
	if err != nil {
		t.Fatalf("Failed to disburse loan: %v", err)
	}

	if _, err := l.RecordRepayment(loan.ID, decimal.NewFromInt(200), january); err != nil {
		t.Fatalf("Failed to record repayment: %v", err)
	}
	if len(s.repayments) != 1 {
		t.Errorf("Expected 1 repayment, got %d", len(s.repayments))
	}
	if len(s.interestDists) != 0 {
		t.Errorf("Expected no distributions, got %d", len(s.interestDists))
	}
}

func TestProcessMonthEnd(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())

	members := make([]*models.Member, 4)
	for i := range members {
		members[i] = addMember(s, fmt.Sprintf("Member %d", i))
	}
	if _, err := l.RecordPenalty(members[0].ID, decimal.NewFromInt(100), january, "late savings"); err != nil {
		t.Fatalf("Failed to record penalty: %v", err)
	}

	if err := l.ProcessMonthEnd(january); err != nil {
		t.Fatalf("Failed to process month end: %v", err)
	}

	if len(s.penaltyDists) != 4 {
		t.Fatalf("Expected 4 penalty distributions, got %d", len(s.penaltyDists))
	}

	// gross = round4(100 * 1.15 / 4) = 28.75; net = 28.75 - 50 = -21.25
	want := decimal.RequireFromString("-21.25")
	for _, d := range s.penaltyDists {
		if !d.Amount.Equal(want) {
			t.Errorf("Expected net share %s, got %s", want, d.Amount)
		}
		if !d.Month.Equal(january) {
			t.Errorf("Expected month January, got %s", d.Month)
		}
	}
}

func TestProcessMonthEnd_Idempotent(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	addMember(s, "John Banda")
	addMember(s, "Mary Phiri")

	if err := l.ProcessMonthEnd(january); err != nil {
		t.Fatalf("Failed to process month end: %v", err)
	}
	firstCount := len(s.penaltyDists)

	err := l.ProcessMonthEnd(january)
	if !errors.Is(err, models.ErrMonthAlreadyClosed) {
		t.Fatalf("Expected ErrMonthAlreadyClosed, got %v", err)
	}
	if len(s.penaltyDists) != firstCount {
		t.Errorf("Second run must not add rows: had %d, now %d", firstCount, len(s.penaltyDists))
	}
}

func TestProcessMonthEnd_NoMembers(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())

	err := l.ProcessMonthEnd(january)
	if !errors.Is(err, models.ErrNoMembers) {
		t.Errorf("Expected ErrNoMembers, got %v", err)
	}
	if len(s.penaltyDists) != 0 {
		t.Errorf("Expected no rows, got %d", len(s.penaltyDists))
	}
}

func TestProcessMonthEnd_ZeroPenalties(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	for i := 0; i < 5; i++ {
		addMember(s, fmt.Sprintf("Member %d", i))
	}

	if err := l.ProcessMonthEnd(january); err != nil {
		t.Fatalf("Failed to process month end: %v", err)
	}

	// No penalties collected: every member still pays the admin fee.
	want := decimal.NewFromInt(-50)
	for _, d := range s.penaltyDists {
		if !d.Amount.Equal(want) {
			t.Errorf("Expected net share -50, got %s", d.Amount)
		}
	}
}

func TestSummary(t *testing.T) {
	s := NewMockStore()
	l := NewLedger(s, testLogger())
	loan, members := seedLoanScenario(t, s, l)

	if _, err := l.RecordRepayment(loan.ID, decimal.NewFromInt(500), january); err != nil {
		t.Fatalf("Failed to record repayment: %v", err)
	}

	summary, err := l.Summary(members[0].ID)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}

	if !summary.Balances.TotalSavings.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected savings 500, got %s", summary.Balances.TotalSavings)
	}
	wantInterest := decimal.RequireFromString("14.1509")
	if !summary.Balances.InterestEarned.Equal(wantInterest) {
		t.Errorf("Expected interest %s, got %s", wantInterest, summary.Balances.InterestEarned)
	}
	if !summary.Balances.OutstandingLoans.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("Expected outstanding 1800, got %s", summary.Balances.OutstandingLoans)
	}

	// equity = 500 + 14.1509 + 0 = 514.15; net = 514.15 - 1800
	if !summary.Equity.TotalEquity.Equal(decimal.RequireFromString("514.15")) {
		t.Errorf("Expected equity 514.15, got %s", summary.Equity.TotalEquity)
	}
	if !summary.Equity.NetPosition.Equal(decimal.RequireFromString("-1285.85")) {
		t.Errorf("Expected net -1285.85, got %s", summary.Equity.NetPosition)
	}
	if summary.TotalLoans != 1 || summary.ActiveLoans != 1 {
		t.Errorf("Expected 1 total / 1 active loan, got %d / %d", summary.TotalLoans, summary.ActiveLoans)
	}
}
