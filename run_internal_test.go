package careroster

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/sources"
)

func TestBaselineFieldsAgreeWithFieldTable(t *testing.T) {
	for _, b := range baselineFields {
		t.Run(b.field.String(), func(t *testing.T) {
			v, _ := b.parse("")
			assert.NoError(t, (&clients.Patch{}).Set(b.field, v))
		})
	}
}

func TestBaselinePatchRecordsRejectedType(t *testing.T) {
	saved := baselineFields
	t.Cleanup(func() { baselineFields = saved })
	baselineFields = append(slices.Clone(saved), baselineField{
		field: clients.FieldRoomNumber,
		raw:   func(r sources.BaselineRow) string { return r.RoomNumber },
		parse: func(raw string) (any, bool) { return len(raw), true },
	})

	r := &run{report: newReport("run-1", false, "memory")}
	p, _ := r.baselinePatch(context.Background(), "AZ-1000", sources.BaselineRow{
		Row:        3,
		Name:       "佐藤 花子",
		RoomNumber: "203",
	})

	assert.Equal(t, 1, r.report.Malformed)
	assert.Equal(t, 1, r.report.Recovered)
	require.Len(t, r.report.Errors, 1)
	assert.Contains(t, r.report.Errors[0], "row 3")
	assert.Contains(t, r.report.Errors[0], "room_number")
	assert.NotContains(t, r.report.Errors[0], "unexpected")

	require.NotNil(t, p.RoomNumber)
	assert.Equal(t, "203", *p.RoomNumber, "the earlier binding still applies")
	require.NotNil(t, p.Name)
	assert.Equal(t, "佐藤 花子", *p.Name)
}

func TestReportFlagsUnexpectedRowErrors(t *testing.T) {
	report := newReport("run-1", false, "memory")
	report.recover(nil)
	report.recover(errors.NewUnresolvedError("events", 2, "AZ-9", "unknown-id"))
	report.recover(fmt.Errorf("equipment row 4: %w", errors.NewMalformedValueError("quantity", "二", "0")))
	report.recover(fmt.Errorf("index out of range"))

	assert.Equal(t, 3, report.Recovered)
	require.Len(t, report.Errors, 3)
	assert.NotContains(t, report.Errors[0], "unexpected")
	assert.NotContains(t, report.Errors[1], "unexpected")
	assert.Equal(t, "unexpected: index out of range", report.Errors[2])
}
