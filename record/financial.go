/*
financial.go - Kind-specific financial derivation

PURPOSE:
  Produces a FinancialSummary for one NormalizedRecord, branching on Kind.
  Each kind stores its money under different field names with different
  fallback rules; this is the single place that knows all of them.

FIELD MAP:
  kind       payable              received             remaining                 profit
  visa       totalFee|payable     receivedFee          remainingFee|(pay-rec)    profit field verbatim, else "Not entered"
  ticket     payable              price                remainingFee              profit, else received-payable
  umrah      payable              received             remaining                 profit, else payable-received
  insurance  totalPayableAmount   totalReceivedAmount  totalRemainingAmount      totalProfit
  default    payable|totalFee|price  receivedFee|received  remainingFee|0        profit, else payable-received

  NOTE: the umrah profit fallback (payable-received) is inverted relative to
  ticket (received-payable). Both conventions are preserved verbatim per kind
  so existing reports keep their numbers; see DESIGN.md.

ERROR CONDITIONS:
  None. Unrecognized kinds fall through to the default row; unparseable
  values coerce to zero except where OptionalAmount keeps absence visible.

SEE ALSO:
  - types.go: FinancialSummary, OptionalAmount
  - aggregate.go: Leaderboard sums computed through Resolve
*/
package record

import "github.com/shopspring/decimal"

// Resolve computes the financial summary for one record.
func Resolve(r NormalizedRecord) FinancialSummary {
	raw := r.Raw
	switch r.Kind {
	case KindVisa:
		return resolveVisa(raw)
	case KindTicket:
		return resolveTicket(raw)
	case KindUmrah:
		return resolveUmrah(raw)
	case KindInsurance:
		return resolveInsurance(raw)
	default:
		return resolveDefault(raw)
	}
}

func resolveVisa(raw RawDocument) FinancialSummary {
	payable := raw.Number("totalFee")
	if !raw.Has("totalFee") {
		payable = raw.Number("payable")
	}
	received := raw.Number("receivedFee")

	remaining := payable.Sub(received)
	if raw.Has("remainingFee") {
		remaining = raw.Number("remainingFee")
	}

	// Visa profit and embassy fee keep the "Not entered" sentinel: an absent
	// or non-numeric value must stay distinguishable from an explicit 0.
	profit, embassy, vendor := NotEntered, NotEntered, NotEntered
	if d, ok := raw.NumberOK("profit"); ok {
		profit = Entered(d)
	}
	if d, ok := raw.NumberOK("embassyFee"); ok {
		embassy = Entered(d)
	}
	if d, ok := raw.NumberOK("vendorFee"); ok {
		vendor = Entered(d)
	}

	return FinancialSummary{
		Payable:    payable,
		Received:   received,
		Remaining:  remaining,
		Profit:     profit,
		EmbassyFee: embassy,
		VendorFee:  vendor,
	}
}

func resolveTicket(raw RawDocument) FinancialSummary {
	payable := raw.Number("payable")
	received := raw.Number("price")
	remaining := raw.Number("remainingFee")

	profit := received.Sub(payable)
	if raw.Has("profit") {
		profit = raw.Number("profit")
	}

	return FinancialSummary{
		Payable:   payable,
		Received:  received,
		Remaining: remaining,
		Profit:    Entered(profit),
	}
}

func resolveUmrah(raw RawDocument) FinancialSummary {
	payable := raw.Number("payable")
	received := raw.Number("received")
	remaining := raw.Number("remaining")

	// Inverted relative to ticket's convention; preserved as-is.
	profit := payable.Sub(received)
	if raw.Has("profit") {
		profit = raw.Number("profit")
	}

	return FinancialSummary{
		Payable:   payable,
		Received:  received,
		Remaining: remaining,
		Profit:    Entered(profit),
	}
}

func resolveInsurance(raw RawDocument) FinancialSummary {
	return FinancialSummary{
		Payable:   raw.Number("totalPayableAmount"),
		Received:  raw.Number("totalReceivedAmount"),
		Remaining: raw.Number("totalRemainingAmount"),
		Profit:    Entered(raw.Number("totalProfit")),
	}
}

func resolveDefault(raw RawDocument) FinancialSummary {
	payable := firstNumber(raw, "payable", "totalFee", "price")
	received := firstNumber(raw, "receivedFee", "received")
	remaining := raw.Number("remainingFee")

	profit := payable.Sub(received)
	if raw.Has("profit") {
		profit = raw.Number("profit")
	}

	return FinancialSummary{
		Payable:   payable,
		Received:  received,
		Remaining: remaining,
		Profit:    Entered(profit),
	}
}

// firstNumber returns the value of the first present key, zero when none are.
func firstNumber(raw RawDocument, keys ...string) decimal.Decimal {
	for _, key := range keys {
		if raw.Has(key) {
			return raw.Number(key)
		}
	}
	return decimal.Zero
}
