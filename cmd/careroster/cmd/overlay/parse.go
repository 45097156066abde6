package overlay

import (
	"strings"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/normalize"
)

// parseAssignment parses a field=value argument into a typed patch value.
// Unlike source values, an edit that does not normalize is rejected.
func parseAssignment(arg string) (clients.Field, any, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, errors.NewValidationError("assignment", arg, "expected field=value")
	}
	f := clients.Field(strings.TrimSpace(name))
	if !clients.IsKnown(f) {
		return "", nil, errors.NewValidationError("field", f, "unknown field")
	}
	v, ok := parseValue(f, raw)
	if !ok {
		return "", nil, errors.NewValidationError(f.String(), raw, "value does not normalize")
	}
	return f, v, nil
}

func parseValue(f clients.Field, raw string) (any, bool) {
	switch f {
	case clients.FieldGender:
		return typed(normalize.Gender(raw))
	case clients.FieldCareLevel:
		return typed(normalize.CareLevel(raw))
	case clients.FieldCopayRate:
		return typed(normalize.CopayRate(raw))
	case clients.FieldPaymentType:
		return typed(normalize.PaymentType(raw))
	case clients.FieldCurrentStatus:
		return typed(normalize.CurrentStatus(raw))
	case clients.FieldBirthDate, clients.FieldStartDate:
		return typed(normalize.Date(raw))
	case clients.FieldWelfareEquipmentUser:
		return typed(normalize.Flag(raw))
	case clients.FieldKeyPerson:
		// name[,relationship[,contact]]
		parts := strings.SplitN(raw, ",", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		return clients.KeyPerson{
			Name:         normalize.Text(parts[0]),
			Relationship: normalize.Text(parts[1]),
			Contact:      normalize.Text(parts[2]),
		}, true
	default:
		return normalize.Text(raw), true
	}
}

func typed[T any](v T, ok bool) (any, bool) {
	return v, ok
}
