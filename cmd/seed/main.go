// Command seed loads demo members, savings, loans and one repayment
// into the database so the API can be exercised immediately.
package main

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kumunzee/villagebank/pkg/config"
	"github.com/kumunzee/villagebank/pkg/ledger"
	"github.com/kumunzee/villagebank/pkg/models"
	"github.com/kumunzee/villagebank/pkg/store"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	sqliteStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	l := ledger.NewLedger(sqliteStore, logger)

	logger.Info("Seeding database...")

	demo := []struct {
		name  string
		phone string
		pin   string
		role  models.Role
	}{
		{"Grace Mwamba", "+260971234567", "1234", models.RoleAdmin},
		{"John Banda", "+260971111111", "1111", models.RoleMember},
		{"Mary Phiri", "+260972222222", "2222", models.RoleMember},
		{"Peter Zulu", "+260973333333", "3333", models.RoleMember},
		{"Sarah Tembo", "+260974444444", "4444", models.RoleMember},
	}

	members := make([]*models.Member, 0, len(demo))
	for _, d := range demo {
		m, err := l.RegisterMember(d.name, d.phone, d.pin, d.role)
		if err != nil {
			logger.Fatalf("Failed to register %s: %v", d.name, err)
		}
		members = append(members, m)
	}
	logger.Infof("Created %d members", len(members))

	december := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	january := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	decemberAmounts := []int64{500, 500, 600, 550, 500}
	januaryAmounts := []int64{500, 500, 650, 550, 500}
	for i, m := range members {
		if _, err := l.RecordSavings(m.ID, decimal.NewFromInt(decemberAmounts[i]), december); err != nil {
			logger.Fatalf("Failed to record savings for %s: %v", m.Name, err)
		}
		if _, err := l.RecordSavings(m.ID, decimal.NewFromInt(januaryAmounts[i]), january); err != nil {
			logger.Fatalf("Failed to record savings for %s: %v", m.Name, err)
		}
	}
	logger.Info("Added savings records")

	// John: K2000 principal -> K2300 total. Peter: K1500 -> K1725.
	johnLoan, err := l.DisburseLoan(members[1].ID, decimal.NewFromInt(2000), december)
	if err != nil {
		logger.Fatalf("Failed to disburse loan: %v", err)
	}
	if _, err := l.DisburseLoan(members[3].ID, decimal.NewFromInt(1500), december); err != nil {
		logger.Fatalf("Failed to disburse loan: %v", err)
	}
	logger.Info("Created loans")

	if _, err := l.RecordRepayment(johnLoan.ID, decimal.NewFromInt(500), january); err != nil {
		logger.Fatalf("Failed to record repayment: %v", err)
	}
	logger.Info("Added repayment record")

	logger.Info("Database seeded successfully")
	logger.Info("Admin: Grace Mwamba - +260971234567 / PIN 1234")
}
