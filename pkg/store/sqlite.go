package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kumunzee/villagebank/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

const monthLayout = "2006-01-02"

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// SQLiteStore manages the database connection and operations for SQLite.
// A zero tx means operations run directly on the connection; Transact
// hands out a copy bound to a *sql.Tx.
type SQLiteStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
// Transactions are opened immediate so that concurrent settlement calls
// serialize on the write lock instead of racing their guard checks.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	if !strings.Contains(dataSourceName, "_txlock") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_txlock=immediate"
		} else {
			dataSourceName += "?_txlock=immediate"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	log.Println("Database connection established and schema initialized.")
	return s, nil
}

// initSchema creates the tables if they don't already exist. Decimal
// fields are TEXT so no precision is lost; months are TEXT keys in
// YYYY-MM-01 form.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		pin_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY(member_id) REFERENCES members(id)
	);
	CREATE TABLE IF NOT EXISTS savings (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		month TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(member_id, month),
		FOREIGN KEY(member_id) REFERENCES members(id)
	);
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		principal TEXT NOT NULL,
		interest TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		outstanding_balance TEXT NOT NULL,
		disbursement_month TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY(member_id) REFERENCES members(id)
	);
	CREATE TABLE IF NOT EXISTS loan_repayments (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_month TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY(loan_id) REFERENCES loans(id)
	);
	CREATE TABLE IF NOT EXISTS interest_distributions (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		loan_month TEXT NOT NULL,
		repayment_month TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY(member_id) REFERENCES members(id)
	);
	CREATE TABLE IF NOT EXISTS penalties (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		month TEXT NOT NULL,
		reason TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY(member_id) REFERENCES members(id)
	);
	CREATE TABLE IF NOT EXISTS penalty_distributions (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		month TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(member_id, month),
		FOREIGN KEY(member_id) REFERENCES members(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// q returns the transaction when one is bound, the connection otherwise.
func (s *SQLiteStore) q() dbtx {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Transact runs fn inside a single immediate transaction. A nested call
// joins the transaction already in progress.
func (s *SQLiteStore) Transact(fn func(Storage) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&SQLiteStore{db: s.db, tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ---- members ----

func (s *SQLiteStore) CreateMember(m *models.Member) error {
	_, err := s.q().Exec(
		`INSERT INTO members (id, name, phone, pin_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.Name, m.Phone, m.PINHash, string(m.Role), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

const memberColumns = `id, name, phone, pin_hash, role, created_at`

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	var m models.Member
	var idStr, role string
	var created time.Time
	if err := row.Scan(&idStr, &m.Name, &m.Phone, &m.PINHash, &role, &created); err != nil {
		return nil, err
	}
	m.ID = uuid.MustParse(idStr)
	m.Role = models.Role(role)
	m.CreatedAt = created
	return &m, nil
}

func (s *SQLiteStore) GetMember(id uuid.UUID) (*models.Member, error) {
	row := s.q().QueryRow(`SELECT `+memberColumns+` FROM members WHERE id = ?`, id.String())
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) GetMemberByPhone(phone string) (*models.Member, error) {
	row := s.q().QueryRow(`SELECT `+memberColumns+` FROM members WHERE phone = ?`, phone)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member with phone %s: %w", phone, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member by phone: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) GetAllMembers() ([]*models.Member, error) {
	rows, err := s.q().Query(`SELECT ` + memberColumns + ` FROM members ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return members, nil
}

// ---- savings ----

func (s *SQLiteStore) UpsertSavings(rec *models.SavingsRecord) error {
	_, err := s.q().Exec(
		`INSERT INTO savings (id, member_id, amount, month, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(member_id, month) DO UPDATE SET amount = excluded.amount`,
		rec.ID.String(), rec.MemberID.String(), rec.Amount, rec.Month.Format(monthLayout), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert savings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) scanSavings(rows *sql.Rows) ([]*models.SavingsRecord, error) {
	var records []*models.SavingsRecord
	for rows.Next() {
		var rec models.SavingsRecord
		var idStr, memberIDStr, month string
		var created time.Time
		if err := rows.Scan(&idStr, &memberIDStr, &rec.Amount, &month, &created); err != nil {
			return nil, fmt.Errorf("failed to scan savings row: %w", err)
		}
		rec.ID = uuid.MustParse(idStr)
		rec.MemberID = uuid.MustParse(memberIDStr)
		m, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("failed to parse savings month %q: %w", month, err)
		}
		rec.Month = m
		rec.CreatedAt = created
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) GetSavingsForMonth(month time.Time) ([]*models.SavingsRecord, error) {
	rows, err := s.q().Query(
		`SELECT id, member_id, amount, month, created_at FROM savings WHERE month = ?`,
		month.Format(monthLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get savings for month: %w", err)
	}
	defer rows.Close()
	return s.scanSavings(rows)
}

func (s *SQLiteStore) GetSavingsForMember(memberID uuid.UUID) ([]*models.SavingsRecord, error) {
	rows, err := s.q().Query(
		`SELECT id, member_id, amount, month, created_at FROM savings WHERE member_id = ? ORDER BY month DESC`,
		memberID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get savings for member: %w", err)
	}
	defer rows.Close()
	return s.scanSavings(rows)
}

// ---- loans ----

const loanColumns = `id, member_id, principal, interest, total_amount, outstanding_balance, disbursement_month, status, created_at`

func (s *SQLiteStore) CreateLoan(l *models.Loan) error {
	_, err := s.q().Exec(
		`INSERT INTO loans (`+loanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.MemberID.String(), l.Principal, l.Interest, l.TotalAmount,
		l.OutstandingBalance, l.DisbursementMonth.Format(monthLayout), string(l.Status), l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

func scanLoan(row interface{ Scan(...any) error }) (*models.Loan, error) {
	var l models.Loan
	var idStr, memberIDStr, month, status string
	var created time.Time
	if err := row.Scan(&idStr, &memberIDStr, &l.Principal, &l.Interest, &l.TotalAmount,
		&l.OutstandingBalance, &month, &status, &created); err != nil {
		return nil, err
	}
	l.ID = uuid.MustParse(idStr)
	l.MemberID = uuid.MustParse(memberIDStr)
	m, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("failed to parse disbursement month %q: %w", month, err)
	}
	l.DisbursementMonth = m
	l.Status = models.LoanStatus(status)
	l.CreatedAt = created
	return &l, nil
}

func (s *SQLiteStore) GetLoan(id uuid.UUID) (*models.Loan, error) {
	row := s.q().QueryRow(`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id.String())
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loan %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) UpdateLoan(l *models.Loan) error {
	result, err := s.q().Exec(
		`UPDATE loans SET outstanding_balance = ?, status = ? WHERE id = ?`,
		l.OutstandingBalance, string(l.Status), l.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("loan %s: %w", l.ID, models.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) queryLoans(query string, args ...any) ([]*models.Loan, error) {
	rows, err := s.q().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return loans, nil
}

func (s *SQLiteStore) GetAllLoans() ([]*models.Loan, error) {
	return s.queryLoans(`SELECT ` + loanColumns + ` FROM loans ORDER BY created_at DESC`)
}

func (s *SQLiteStore) GetLoansForMember(memberID uuid.UUID) ([]*models.Loan, error) {
	return s.queryLoans(
		`SELECT `+loanColumns+` FROM loans WHERE member_id = ? ORDER BY created_at DESC`,
		memberID.String(),
	)
}

// ---- repayments ----

func (s *SQLiteStore) CreateRepayment(r *models.LoanRepayment) error {
	_, err := s.q().Exec(
		`INSERT INTO loan_repayments (id, loan_id, amount, payment_month, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID.String(), r.LoanID.String(), r.Amount, r.PaymentMonth.Format(monthLayout), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create repayment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRepaymentsForLoan(loanID uuid.UUID) ([]*models.LoanRepayment, error) {
	rows, err := s.q().Query(
		`SELECT id, loan_id, amount, payment_month, created_at FROM loan_repayments
		WHERE loan_id = ? ORDER BY created_at ASC`,
		loanID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get repayments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	var repayments []*models.LoanRepayment
	for rows.Next() {
		var r models.LoanRepayment
		var idStr, loanIDStr, month string
		var created time.Time
		if err := rows.Scan(&idStr, &loanIDStr, &r.Amount, &month, &created); err != nil {
			return nil, fmt.Errorf("failed to scan repayment row: %w", err)
		}
		r.ID = uuid.MustParse(idStr)
		r.LoanID = uuid.MustParse(loanIDStr)
		m, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payment month %q: %w", month, err)
		}
		r.PaymentMonth = m
		r.CreatedAt = created
		repayments = append(repayments, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return repayments, nil
}

// ---- interest distributions ----

func (s *SQLiteStore) CreateInterestDistribution(d *models.InterestDistribution) error {
	_, err := s.q().Exec(
		`INSERT INTO interest_distributions (id, member_id, loan_month, repayment_month, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID.String(), d.MemberID.String(), d.LoanMonth.Format(monthLayout),
		d.RepaymentMonth.Format(monthLayout), d.Amount, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create interest distribution: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetInterestDistributionsForMember(memberID uuid.UUID) ([]*models.InterestDistribution, error) {
	rows, err := s.q().Query(
		`SELECT id, member_id, loan_month, repayment_month, amount, created_at
		FROM interest_distributions WHERE member_id = ? ORDER BY created_at DESC`,
		memberID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get interest distributions: %w", err)
	}
	defer rows.Close()

	var dists []*models.InterestDistribution
	for rows.Next() {
		var d models.InterestDistribution
		var idStr, memberIDStr, loanMonth, repaymentMonth string
		var created time.Time
		if err := rows.Scan(&idStr, &memberIDStr, &loanMonth, &repaymentMonth, &d.Amount, &created); err != nil {
			return nil, fmt.Errorf("failed to scan interest distribution row: %w", err)
		}
		d.ID = uuid.MustParse(idStr)
		d.MemberID = uuid.MustParse(memberIDStr)
		lm, err := time.Parse(monthLayout, loanMonth)
		if err != nil {
			return nil, fmt.Errorf("failed to parse loan month %q: %w", loanMonth, err)
		}
		rm, err := time.Parse(monthLayout, repaymentMonth)
		if err != nil {
			return nil, fmt.Errorf("failed to parse repayment month %q: %w", repaymentMonth, err)
		}
		d.LoanMonth = lm
		d.RepaymentMonth = rm
		d.CreatedAt = created
		dists = append(dists, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return dists, nil
}

// ---- penalties ----

func (s *SQLiteStore) CreatePenalty(p *models.Penalty) error {
	var reason any
	if p.Reason != "" {
		reason = p.Reason
	}
	_, err := s.q().Exec(
		`INSERT INTO penalties (id, member_id, amount, month, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.MemberID.String(), p.Amount, p.Month.Format(monthLayout), reason, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create penalty: %w", err)
	}
	return nil
}

func (s *SQLiteStore) scanPenalties(rows *sql.Rows) ([]*models.Penalty, error) {
	var penalties []*models.Penalty
	for rows.Next() {
		var p models.Penalty
		var idStr, memberIDStr, month string
		var reason sql.NullString
		var created time.Time
		if err := rows.Scan(&idStr, &memberIDStr, &p.Amount, &month, &reason, &created); err != nil {
			return nil, fmt.Errorf("failed to scan penalty row: %w", err)
		}
		p.ID = uuid.MustParse(idStr)
		p.MemberID = uuid.MustParse(memberIDStr)
		m, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("failed to parse penalty month %q: %w", month, err)
		}
		p.Month = m
		if reason.Valid {
			p.Reason = reason.String
		}
		p.CreatedAt = created
		penalties = append(penalties, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return penalties, nil
}

func (s *SQLiteStore) GetPenaltiesForMonth(month time.Time) ([]*models.Penalty, error) {
	rows, err := s.q().Query(
		`SELECT id, member_id, amount, month, reason, created_at FROM penalties WHERE month = ?`,
		month.Format(monthLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get penalties for month: %w", err)
	}
	defer rows.Close()
	return s.scanPenalties(rows)
}

func (s *SQLiteStore) GetPenaltiesForMember(memberID uuid.UUID) ([]*models.Penalty, error) {
	rows, err := s.q().Query(
		`SELECT id, member_id, amount, month, reason, created_at FROM penalties
		WHERE member_id = ? ORDER BY created_at DESC`,
		memberID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get penalties for member: %w", err)
	}
	defer rows.Close()
	return s.scanPenalties(rows)
}

// ---- penalty distributions ----

func (s *SQLiteStore) CreatePenaltyDistribution(d *models.PenaltyDistribution) error {
	_, err := s.q().Exec(
		`INSERT INTO penalty_distributions (id, member_id, month, amount, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID.String(), d.MemberID.String(), d.Month.Format(monthLayout), d.Amount, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create penalty distribution: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPenaltyDistributionsForMember(memberID uuid.UUID) ([]*models.PenaltyDistribution, error) {
	rows, err := s.q().Query(
		`SELECT id, member_id, month, amount, created_at FROM penalty_distributions
		WHERE member_id = ? ORDER BY created_at DESC`,
		memberID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get penalty distributions: %w", err)
	}
	defer rows.Close()

	var dists []*models.PenaltyDistribution
	for rows.Next() {
		var d models.PenaltyDistribution
		var idStr, memberIDStr, month string
		var created time.Time
		if err := rows.Scan(&idStr, &memberIDStr, &month, &d.Amount, &created); err != nil {
			return nil, fmt.Errorf("failed to scan penalty distribution row: %w", err)
		}
		d.ID = uuid.MustParse(idStr)
		d.MemberID = uuid.MustParse(memberIDStr)
		m, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("failed to parse distribution month %q: %w", month, err)
		}
		d.Month = m
		d.CreatedAt = created
		dists = append(dists, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return dists, nil
}

func (s *SQLiteStore) CountPenaltyDistributionsForMonth(month time.Time) (int, error) {
	var count int
	err := s.q().QueryRow(
		`SELECT COUNT(*) FROM penalty_distributions WHERE month = ?`,
		month.Format(monthLayout),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count penalty distributions: %w", err)
	}
	return count, nil
}

// ---- aggregates ----

// sumColumn totals a TEXT decimal column in Go rather than with SQL
// SUM, which would coerce the values through floats.
func (s *SQLiteStore) sumColumn(query string, args ...any) (decimal.Decimal, error) {
	rows, err := s.q().Query(query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *SQLiteStore) MemberBalances(memberID uuid.UUID) (*models.MemberBalances, error) {
	id := memberID.String()

	savings, err := s.sumColumn(`SELECT amount FROM savings WHERE member_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to total savings: %w", err)
	}
	interest, err := s.sumColumn(`SELECT amount FROM interest_distributions WHERE member_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to total interest distributions: %w", err)
	}
	penaltyShare, err := s.sumColumn(`SELECT amount FROM penalty_distributions WHERE member_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to total penalty distributions: %w", err)
	}
	outstanding, err := s.sumColumn(
		`SELECT outstanding_balance FROM loans WHERE member_id = ? AND status = 'active'`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to total outstanding loans: %w", err)
	}

	return &models.MemberBalances{
		TotalSavings:     savings,
		InterestEarned:   interest,
		PenaltyShare:     penaltyShare,
		OutstandingLoans: outstanding,
	}, nil
}

// ---- sessions ----

func (s *SQLiteStore) CreateSession(sess *models.Session) error {
	_, err := s.q().Exec(
		`INSERT INTO sessions (id, member_id, expires_at) VALUES (?, ?, ?)`,
		sess.ID, sess.MemberID.String(), sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(id string) (*models.Session, error) {
	var sess models.Session
	var memberIDStr string
	var expires time.Time
	err := s.q().QueryRow(
		`SELECT id, member_id, expires_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &memberIDStr, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess.MemberID = uuid.MustParse(memberIDStr)
	sess.ExpiresAt = expires
	return &sess, nil
}

func (s *SQLiteStore) DeleteSession(id string) error {
	if _, err := s.q().Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteExpiredSessions() error {
	if _, err := s.q().Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
