package dedup

import (
	"strings"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/normalize"
)

var kindAliases = map[string]clients.EventKind{
	"move-in":         clients.EventNewEnrollment,
	"movein":          clients.EventNewEnrollment,
	"new":             clients.EventNewEnrollment,
	"新規":              clients.EventNewEnrollment,
	"入居":              clients.EventNewEnrollment,
	"move-out":        clients.EventCancellation,
	"moveout":         clients.EventCancellation,
	"cancel":          clients.EventCancellation,
	"解約":              clients.EventCancellation,
	"退去":              clients.EventCancellation,
	"hospitalization": clients.EventHospitalizationStop,
	"hospitalize":     clients.EventHospitalizationStop,
	"入院":              clients.EventHospitalizationStop,
	"入院(サービス停止)":      clients.EventHospitalizationStop,
	"discharge":       clients.EventDischargeResume,
	"退院":              clients.EventDischargeResume,
	"退院(サービス開始)":      clients.EventDischargeResume,
}

// Kind maps a source event kind onto the canonical EventKind.
func Kind(raw string) (clients.EventKind, bool) {
	key := strings.ToLower(normalize.Compact(raw))
	if k := clients.EventKind(key); k.IsValid() {
		return k, true
	}
	k, ok := kindAliases[key]
	return k, ok
}

// EventInput is an event-shaped source row after identity resolution.
type EventInput struct {
	Source        string
	SourceEventID string
	Kind          string
	EffectiveDate string
	Note          string
	Office        string
	Recorder      string
	UsageCategory string
}

// BuildEvent converts an event row into a change event keyed by its
// synthetic ID. It fails with a malformed-value error when the kind is
// unknown or the effective date is missing or invalid.
func BuildEvent(in EventInput) (clients.ChangeEvent, error) {
	kind, ok := Kind(in.Kind)
	if !ok {
		return clients.ChangeEvent{}, errors.NewMalformedValueError("kind", in.Kind, "")
	}
	date, ok := normalize.Date(in.EffectiveDate)
	if !ok || date == "" {
		return clients.ChangeEvent{}, errors.NewMalformedValueError("effective_date", in.EffectiveDate, "")
	}
	if normalize.Text(in.SourceEventID) == "" {
		return clients.ChangeEvent{}, errors.NewMalformedValueError("source_event_id", in.SourceEventID, "")
	}

	source := normalize.Text(in.Source)
	eventID := normalize.Text(in.SourceEventID)
	return clients.ChangeEvent{
		ID:               SyntheticID(source, eventID, string(kind)),
		EffectiveDate:    date,
		Kind:             kind,
		Note:             normalize.Text(in.Note),
		Provenance:       clients.ProvenanceMachine,
		Source:           source,
		SourceEventID:    eventID,
		SourceKind:       normalize.Text(in.Kind),
		Office:           normalize.Text(in.Office),
		Recorder:         normalize.Text(in.Recorder),
		UsageCategory:    normalize.Text(in.UsageCategory),
		WholesalerStatus: clients.StatusNotHandled,
	}, nil
}

// InitialEvent returns the new-enrollment event implied by a roster start
// date, or false when the client has none.
func InitialEvent(clientID, startDate, office string) (clients.ChangeEvent, bool) {
	if startDate == "" {
		return clients.ChangeEvent{}, false
	}
	return clients.ChangeEvent{
		ID:               SyntheticID(RosterSource, clientID, InitialKind),
		EffectiveDate:    startDate,
		Kind:             clients.EventNewEnrollment,
		Provenance:       clients.ProvenanceMachine,
		Source:           RosterSource,
		SourceEventID:    clientID,
		SourceKind:       InitialKind,
		Office:           office,
		UsageCategory:    clients.UsageInsuredRental,
		WholesalerStatus: clients.StatusNotHandled,
	}, true
}
