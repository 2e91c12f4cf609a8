package record

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// VISA
// =============================================================================

func TestResolve_VisaTotalFeeWinsOverPayable(t *testing.T) {
	// GIVEN a visa document with both the fee aliases
	r := Normalize("v1", KindVisa, RawDocument{
		"totalFee": "900",
		"payable":  "850",
	})

	// WHEN resolved
	f := Resolve(r)

	// THEN totalFee takes precedence
	assert.True(t, f.Payable.Equal(dec("900")), "payable = %s", f.Payable)
}

func TestResolve_VisaRemainingComputedWhenAbsent(t *testing.T) {
	// GIVEN a visa with no stored remainingFee
	r := Normalize("v1", KindVisa, RawDocument{
		"totalFee":    "900",
		"receivedFee": "600",
	})

	f := Resolve(r)

	// THEN remaining is derived as payable minus received
	assert.True(t, f.Remaining.Equal(dec("300")), "remaining = %s", f.Remaining)

	// GIVEN a stored remainingFee, even one inconsistent with the derivation
	r = Normalize("v2", KindVisa, RawDocument{
		"totalFee":     "900",
		"receivedFee":  "600",
		"remainingFee": "250",
	})
	f = Resolve(r)

	// THEN the stored value wins
	assert.True(t, f.Remaining.Equal(dec("250")), "remaining = %s", f.Remaining)
}

func TestResolve_VisaOptionalProfit(t *testing.T) {
	// GIVEN a visa with no profit entered
	r := Normalize("v1", KindVisa, RawDocument{"totalFee": "900"})
	f := Resolve(r)

	// THEN profit is reported as not entered, never silently zero
	require.False(t, f.Profit.Entered)
	assert.Equal(t, PlaceholderNotEntered, f.ProfitDisplay())

	// GIVEN an explicit zero profit
	r = Normalize("v2", KindVisa, RawDocument{"totalFee": "900", "profit": "0"})
	f = Resolve(r)

	// THEN zero is a real value and is displayed as such
	require.True(t, f.Profit.Entered)
	assert.Equal(t, "0", f.ProfitDisplay())
}

// =============================================================================
// TICKET AND UMRAH
// =============================================================================

func TestResolve_TicketProfitFallsBackToReceivedMinusPayable(t *testing.T) {
	// GIVEN a ticket without a stored profit
	r := Normalize("t1", KindTicket, RawDocument{
		"payable": "400",
		"price":   "550",
	})

	f := Resolve(r)

	// THEN profit is received minus payable
	require.True(t, f.Profit.Entered)
	assert.True(t, f.Profit.Amount.Equal(dec("150")), "profit = %s", f.Profit.Amount)
}

func TestResolve_UmrahProfitConventionInverted(t *testing.T) {
	// GIVEN an umrah booking without a stored profit
	r := Normalize("u1", KindUmrah, RawDocument{
		"payable":  "2000",
		"received": "1500",
	})

	f := Resolve(r)

	// THEN the umrah fallback is payable minus received, the historical
	// convention for this kind
	require.True(t, f.Profit.Entered)
	assert.True(t, f.Profit.Amount.Equal(dec("500")), "profit = %s", f.Profit.Amount)
}

// =============================================================================
// INSURANCE AND UNPARSEABLE INPUT
// =============================================================================

func TestResolve_InsuranceFields(t *testing.T) {
	// GIVEN an insurance document with its own field vocabulary
	r := Normalize("i1", KindInsurance, RawDocument{
		"totalPayableAmount":   "120",
		"totalReceivedAmount":  "120",
		"totalRemainingAmount": "0",
		"totalProfit":          "20",
	})

	f := Resolve(r)

	assert.True(t, f.Payable.Equal(dec("120")))
	assert.True(t, f.Received.Equal(dec("120")))
	assert.True(t, f.Remaining.Equal(dec("0")))
	require.True(t, f.Profit.Entered)
	assert.True(t, f.Profit.Amount.Equal(dec("20")))
}

func TestResolve_UnparseableAmountsReadAsZero(t *testing.T) {
	// GIVEN amounts stored as junk text
	r := Normalize("v1", KindVisa, RawDocument{
		"totalFee":    "abc",
		"receivedFee": nil,
	})

	f := Resolve(r)

	// THEN the aggregate stays well-defined instead of failing the row
	assert.True(t, f.Payable.IsZero(), "payable = %s", f.Payable)
	assert.True(t, f.Received.IsZero(), "received = %s", f.Received)
	assert.True(t, f.Remaining.IsZero(), "remaining = %s", f.Remaining)
}

func TestResolve_UnrecognizedKindUsesDefaultBranch(t *testing.T) {
	// GIVEN a record whose kind is not one of the known four
	r := Normalize("x1", Kind("legacy"), RawDocument{
		"payable":     "100",
		"receivedFee": "40",
	})

	f := Resolve(r)

	// THEN the default field map applies: remaining comes only from
	// remainingFee, profit from payable minus received
	assert.True(t, f.Payable.Equal(dec("100")))
	assert.True(t, f.Received.Equal(dec("40")))
	assert.True(t, f.Remaining.IsZero(), "remaining = %s", f.Remaining)
	require.True(t, f.Profit.Entered)
	assert.True(t, f.Profit.Amount.Equal(dec("60")), "profit = %s", f.Profit.Amount)
}

func TestResolve_NumericTypesAccepted(t *testing.T) {
	// GIVEN amounts stored as native numbers rather than strings
	r := Normalize("t1", KindTicket, RawDocument{
		"payable": float64(400.5),
		"price":   int(550),
	})

	f := Resolve(r)

	assert.True(t, f.Payable.Equal(dec("400.5")))
	assert.True(t, f.Received.Equal(dec("550")))
}
