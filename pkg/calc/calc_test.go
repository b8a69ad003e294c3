package calc

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumunzee/villagebank/pkg/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLoan_StandardPrincipal(t *testing.T) {
	// K2000 at 15% flat: interest 300, total 2300, minimum payment 230.
	terms, err := Loan(decimal.NewFromInt(2000))
	require.NoError(t, err)

	assert.True(t, terms.Interest.Equal(dec("300.00")), "interest: got %s", terms.Interest)
	assert.True(t, terms.TotalAmount.Equal(dec("2300.00")), "total: got %s", terms.TotalAmount)
	assert.True(t, terms.MinPayment.Equal(dec("230.00")), "min payment: got %s", terms.MinPayment)
}

func TestLoan_RoundsToTwoPlaces(t *testing.T) {
	terms, err := Loan(dec("1333.33"))
	require.NoError(t, err)

	// 1333.33 * 0.15 = 199.9995 -> 200.00
	assert.True(t, terms.Interest.Equal(dec("200.00")), "interest: got %s", terms.Interest)
	// 1333.33 * 1.15 = 1533.3295 -> 1533.33
	assert.True(t, terms.TotalAmount.Equal(dec("1533.33")), "total: got %s", terms.TotalAmount)
	assert.True(t, terms.MinPayment.Equal(dec("153.33")), "min payment: got %s", terms.MinPayment)
}

func TestLoan_RejectsNonPositivePrincipal(t *testing.T) {
	_, err := Loan(decimal.Zero)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = Loan(decimal.NewFromInt(-100))
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestInterestDistribution_Proportional(t *testing.T) {
	// Savings snapshot {A:500, B:500, C:600, D:550, E:500}, total 2650.
	// A repayment of 500 carries an interest pool of 75.00.
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
	}
	savings := []MemberSaving{
		{ids[0], decimal.NewFromInt(500)},
		{ids[1], decimal.NewFromInt(500)},
		{ids[2], decimal.NewFromInt(600)},
		{ids[3], decimal.NewFromInt(550)},
		{ids[4], decimal.NewFromInt(500)},
	}

	shares := InterestDistribution(decimal.NewFromInt(500), savings)
	require.Len(t, shares, 5)

	// A's share = round4(500/2650 * 75) = 14.1509
	assert.True(t, shares[0].Share.Equal(dec("14.1509")), "A's share: got %s", shares[0].Share)
	assert.True(t, shares[2].Share.Equal(dec("16.9811")), "C's share: got %s", shares[2].Share)
	assert.True(t, shares[3].Share.Equal(dec("15.5660")), "D's share: got %s", shares[3].Share)
}

func TestInterestDistribution_SumWithinRoundingSlack(t *testing.T) {
	// Shares round independently; the pool conserves only up to the
	// documented slack of 0.0001 per member.
	savings := []MemberSaving{
		{uuid.New(), dec("333.33")},
		{uuid.New(), dec("333.33")},
		{uuid.New(), dec("333.34")},
		{uuid.New(), dec("777.77")},
	}
	repayment := dec("412.57")
	pool := repayment.Mul(InterestRate)

	shares := InterestDistribution(repayment, savings)
	require.Len(t, shares, 4)

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Share)
	}
	slack := dec("0.0001").Mul(decimal.NewFromInt(int64(len(savings))))
	assert.True(t, sum.Sub(pool).Abs().LessThanOrEqual(slack),
		"sum %s should be within %s of pool %s", sum, slack, pool)
}

func TestInterestDistribution_EmptySnapshot(t *testing.T) {
	shares := InterestDistribution(decimal.NewFromInt(500), nil)
	assert.Empty(t, shares)
}

func TestInterestDistribution_ZeroTotalSavings(t *testing.T) {
	savings := []MemberSaving{
		{uuid.New(), decimal.Zero},
		{uuid.New(), decimal.Zero},
	}
	shares := InterestDistribution(decimal.NewFromInt(500), savings)
	assert.Empty(t, shares)
}

func TestPenaltyDistribution_EqualSplitWithSurcharge(t *testing.T) {
	// round4(100 * 1.15 / 4) = 28.75
	share := PenaltyDistribution(decimal.NewFromInt(100), 4)
	assert.True(t, share.Equal(dec("28.75")), "got %s", share)

	// round4(77.50 * 1.15 / 3) = round4(29.70833...) = 29.7083
	share = PenaltyDistribution(dec("77.50"), 3)
	assert.True(t, share.Equal(dec("29.7083")), "got %s", share)
}

func TestPenaltyDistribution_NoMembers(t *testing.T) {
	share := PenaltyDistribution(decimal.NewFromInt(100), 0)
	assert.True(t, share.IsZero(), "got %s", share)
}

func TestPenaltyDistribution_ZeroPenalties(t *testing.T) {
	// Zero pool means a zero gross share; the caller still deducts the
	// admin fee, leaving each member at -50.
	share := PenaltyDistribution(decimal.Zero, 5)
	assert.True(t, share.IsZero(), "got %s", share)

	net := share.Sub(AdminFee)
	assert.True(t, net.Equal(decimal.NewFromInt(-50)), "got %s", net)
}

func TestMemberEquity(t *testing.T) {
	summary := MemberEquity(models.MemberBalances{
		TotalSavings:     decimal.NewFromInt(1000),
		InterestEarned:   dec("14.1509"),
		PenaltyShare:     decimal.NewFromInt(-50),
		OutstandingLoans: dec("2300.00"),
	})

	assert.True(t, summary.TotalEquity.Equal(dec("964.15")), "equity: got %s", summary.TotalEquity)
	assert.True(t, summary.NetPosition.Equal(dec("-1335.85")), "net: got %s", summary.NetPosition)
}

func TestFirstOfMonth(t *testing.T) {
	d := time.Date(2025, time.March, 17, 13, 45, 12, 0, time.FixedZone("CAT", 2*3600))
	got := FirstOfMonth(d)
	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %s", got)
	assert.Equal(t, "2025-03-01", MonthKey(d))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "K2,300.00", FormatCurrency(decimal.NewFromInt(2300)))
	assert.Equal(t, "K1,234,567.89", FormatCurrency(dec("1234567.891")))
	assert.Equal(t, "K500.00", FormatCurrency(decimal.NewFromInt(500)))
	assert.Equal(t, "-K50.00", FormatCurrency(decimal.NewFromInt(-50)))
}
