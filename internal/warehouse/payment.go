package warehouse

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"elt/internal/normalize"
)

// BuildPayments collapses payment rows to one row per order. Values and
// installments are summed (missing values count as zero), flags are
// independent ORs, and the primary type is the type of the row with the
// lowest sequence number; on equal sequence numbers the first row in input
// order wins.
func BuildPayments(in []normalize.Payment) []Payment {
	byOrder := make(map[string][]normalize.Payment)
	for _, p := range in {
		byOrder[p.OrderID] = append(byOrder[p.OrderID], p)
	}

	out := make([]Payment, 0, len(byOrder))
	for id, rows := range byOrder {
		out = append(out, aggregatePayment(id, rows))
	}
	slices.SortFunc(out, func(a, b Payment) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

func aggregatePayment(orderID string, rows []normalize.Payment) Payment {
	slices.SortStableFunc(rows, func(a, b normalize.Payment) int { return cmp.Compare(a.Sequential, b.Sequential) })

	agg := Payment{Key: orderID, Value: decimal.Zero, PrimaryType: rows[0].Type}
	methods := make(map[string]struct{}, len(rows))
	for _, p := range rows {
		if p.Value.Valid {
			agg.Value = agg.Value.Add(p.Value.Decimal)
		}
		if p.Installments != nil {
			agg.TotalInstallments += *p.Installments
		}
		methods[p.Type] = struct{}{}
		switch p.Type {
		case normalize.PaymentCreditCard:
			agg.UsesCreditCard = true
		case normalize.PaymentBoleto:
			agg.UsesBoleto = true
		case normalize.PaymentVoucher:
			agg.UsesVoucher = true
		case normalize.PaymentDebitCard:
			agg.UsesDebitCard = true
		}
	}
	agg.MethodsCount = len(methods)
	return agg
}

// MethodFlag reports the flag that corresponds to typ. ok is false for
// types without a flag (not_defined, unknown).
func (p Payment) MethodFlag(typ string) (flag, ok bool) {
	switch typ {
	case normalize.PaymentCreditCard:
		return p.UsesCreditCard, true
	case normalize.PaymentBoleto:
		return p.UsesBoleto, true
	case normalize.PaymentVoucher:
		return p.UsesVoucher, true
	case normalize.PaymentDebitCard:
		return p.UsesDebitCard, true
	}
	return false, false
}

// fallbackPayment is used for orders without payment rows.
func fallbackPayment(orderID string) Payment {
	return Payment{
		Key:               orderID,
		Value:             decimal.Zero,
		TotalInstallments: 1,
		MethodsCount:      1,
		PrimaryType:       UnknownPaymentType,
	}
}
