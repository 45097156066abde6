package dedup

import (
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/normalize"
)

// EquipmentInput is an equipment feed row after identity resolution.
type EquipmentInput struct {
	Source      string
	RowID       string
	ProductName string
	Category    string
	Status      string
	UnitPrice   string
	Quantity    string
	TaxType     string
	TaxIncluded string
	Date        string
}

// BuildEquipment converts an equipment row into a selected-equipment item
// and, for self-pay rentals, its derived sales record. Unparseable amounts
// fall back to zero and are reported alongside the item.
func BuildEquipment(in EquipmentInput) (clients.Equipment, []clients.SalesRecord, []error) {
	var recovered []error

	amount := func(field, raw string) int {
		n, ok := normalize.Int(raw)
		if !ok {
			recovered = append(recovered, errors.NewMalformedValueError(field, raw, "0"))
		}
		return n
	}
	date, ok := normalize.Date(in.Date)
	if !ok {
		recovered = append(recovered, errors.NewMalformedValueError("date", in.Date, ""))
	}

	source := normalize.Text(in.Source)
	item := clients.Equipment{
		ID:          EquipmentID(source, normalize.Text(in.RowID)),
		ProductName: normalize.Text(in.ProductName),
		Category:    normalize.Text(in.Category),
		Status:      normalize.Compact(in.Status),
		UnitPrice:   amount("unit_price", in.UnitPrice),
		Quantity:    amount("quantity", in.Quantity),
		TaxType:     normalize.Text(in.TaxType),
		TaxIncluded: amount("tax_included", in.TaxIncluded),
		Date:        date,
		Source:      source,
	}

	var sales []clients.SalesRecord
	if item.IsSelfPay() {
		sales = append(sales, clients.SalesRecordFor(item))
	}
	return item, sales, recovered
}
