package output

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/careroster"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/sources"
)

// ReportTable renders a run report as a metric/value table.
func ReportTable(r *careroster.Report) Data {
	rows := [][]string{
		{"Run", r.RunID},
		{"State", r.State.String()},
		{"Registry", r.Location},
		{"Written", strconv.FormatBool(r.Written)},
	}
	for _, id := range sources.IDs() {
		res := r.Resolution[id]
		rows = append(rows, []string{
			"Rows " + id.String(),
			fmt.Sprintf("%d (exact %d, fuzzy %d, created %d, unresolved %d)",
				r.Rows[id], res.Exact, res.Fuzzy, res.Created, res.Unresolved),
		})
	}
	rows = append(rows,
		[]string{"Clients", fmt.Sprintf("%d created, %d updated, %d unchanged, %d skipped",
			r.Merge.Created, r.Merge.Updated, r.Merge.Unchanged, r.Merge.Skipped)},
		[]string{"Fields changed", fmt.Sprintf("%d (%d inferred)", r.Merge.FieldsChanged, r.Merge.FieldsInferred)},
		[]string{"Change events", fmt.Sprintf("%d appended, %d replaced, %d unchanged",
			r.Events.Appended, r.Events.Replaced, r.Events.Unchanged)},
		[]string{"Conflicts skipped", strconv.Itoa(r.Merge.Conflicts)},
		[]string{"Malformed values", strconv.Itoa(r.Malformed)},
		[]string{"Errors", fmt.Sprintf("%d recovered, %d fatal", r.Recovered, r.Fatal)},
		[]string{"Trace", r.TraceString()},
		[]string{"Duration", r.Duration.String()},
	)
	if len(r.Inferred) > 0 {
		var parts []string
		for _, rule := range slices.Sorted(maps.Keys(r.Inferred)) {
			parts = append(parts, fmt.Sprintf("%s=%d", rule, r.Inferred[rule]))
		}
		rows = append(rows, []string{"Inference", strings.Join(parts, ", ")})
	}
	return Data{Headers: []string{"Metric", "Value"}, Rows: rows}
}

// ClientsTable renders one row per client.
func ClientsTable(list []clients.Client) Data {
	data := Data{
		Headers:         []string{"ID", "Name", "Care Level", "Payment", "Status", "Facility", "Events", "Updated"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
	for _, c := range list {
		data.Rows = append(data.Rows, []string{
			c.ID,
			c.Name,
			c.CareLevel.String(),
			c.PaymentType.String(),
			c.CurrentStatus.String(),
			c.FacilityName,
			strconv.Itoa(len(c.ChangeEvents)),
			c.UpdatedAt,
		})
	}
	return data
}

// ClientDetail renders every scalar field of a client plus its collection
// sizes.
func ClientDetail(c clients.Client) Data {
	data := Data{Headers: []string{"Field", "Value"}}
	data.Rows = append(data.Rows, []string{"id", c.ID})
	for _, f := range clients.Fields() {
		data.Rows = append(data.Rows, []string{f.String(), fmt.Sprint(c.Get(f))})
	}
	data.Rows = append(data.Rows,
		[]string{"meetings", strconv.Itoa(len(c.Meetings))},
		[]string{"change_events", strconv.Itoa(len(c.ChangeEvents))},
		[]string{"planned_equipment", strconv.Itoa(len(c.PlannedEquipment))},
		[]string{"selected_equipment", strconv.Itoa(len(c.SelectedEquipment))},
		[]string{"sales_records", strconv.Itoa(len(c.SalesRecords))},
		[]string{"edited_by", c.EditedBy},
		[]string{"edited_at", c.EditedAt},
		[]string{"updated_at", c.UpdatedAt},
	)
	return data
}

// EventsTable renders a client's change events.
func EventsTable(events []clients.ChangeEvent) Data {
	data := Data{Headers: []string{"Date", "Kind", "Source", "Source ID", "Note", "Provenance"}}
	for _, e := range events {
		data.Rows = append(data.Rows, []string{
			e.EffectiveDate, e.Kind.String(), e.Source, e.SourceEventID, e.Note, string(e.Provenance),
		})
	}
	return data
}
