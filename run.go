package careroster

import (
	"context"
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/dedup"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/identity"
	"github.com/agentstation/careroster/pkg/inference"
	"github.com/agentstation/careroster/pkg/logging"
	"github.com/agentstation/careroster/pkg/normalize"
	"github.com/agentstation/careroster/pkg/overlay"
	"github.com/agentstation/careroster/pkg/provenance"
	"github.com/agentstation/careroster/pkg/reconciler"
	"github.com/agentstation/careroster/pkg/sources"
)

// run holds the working state of one pass. Nothing in it outlives Run.
type run struct {
	cfg    *config
	hooks  *hooks
	rec    reconciler.Reconciler
	report *Report
	state  State

	extract  *sources.Extract
	existing *clients.Registry
	overlays map[string]*overlay.Overlay
	index    *identity.Index

	roster    map[string]sources.BaselineRow
	events    []resolved[sources.EventRow]
	equipment []resolved[sources.EquipmentRow]

	inputs map[string]*reconciler.Input
	result *reconciler.Result
}

// resolved pairs a source row with the client it resolved to.
type resolved[T any] struct {
	id  string
	row T
}

type stage struct {
	state State
	fn    func(ctx context.Context) error
}

// Run performs one reconciliation pass.
func (p *pipeline) Run(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	ctx = logging.WithRun(ctx, runID)
	logger := logging.FromContext(ctx)

	rec, err := reconciler.New(
		reconciler.WithAuthorities(p.config.authorities),
		reconciler.WithProvenance(p.config.provenanceFile != ""),
		reconciler.WithClock(p.config.clock),
	)
	if err != nil {
		return nil, err
	}

	r := &run{
		cfg:    p.config,
		hooks:  p.hooks,
		rec:    rec,
		report: newReport(runID, p.config.dryRun, p.config.registry.Location()),
		inputs: make(map[string]*reconciler.Input),
		roster: make(map[string]sources.BaselineRow),
	}
	r.report.StartedAt = time.Now()

	logger.Info().
		Str("registry", r.report.Location).
		Int("sources", len(p.config.sources)).
		Bool("dry_run", p.config.dryRun).
		Msg("Starting reconciliation run")

	stages := []stage{
		{StateExtracting, r.extractStage},
		{StateResolving, r.resolveStage},
		{StateNormalizing, r.normalizeStage},
		{StateInferring, r.inferStage},
		{StateDeduplicating, r.dedupStage},
		{StateMerging, r.mergeStage},
		{StateSerializing, r.serializeStage},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, err)
		}
		r.transition(ctx, st.state)

		stageCtx := logging.WithStage(ctx, st.state.String())
		if st.state == StateSerializing {
			stageCtx = context.WithoutCancel(stageCtx)
		}
		if err := st.fn(stageCtx); err != nil {
			return r.fail(ctx, err)
		}
	}

	r.transition(ctx, StateDone)
	r.finish()
	r.hooks.triggerRegistryUpdate(r.existing, r.result.Registry, r.result.Changed)

	logger.Info().
		Dur("duration", r.report.Duration).
		Bool("written", r.report.Written).
		Int("recovered", r.report.Recovered).
		Msg(r.report.Summary())
	return r.report, nil
}

func (r *run) transition(ctx context.Context, to State) {
	from := r.state
	r.state = to
	r.report.Trace = append(r.report.Trace, Transition{From: from, To: to, At: time.Now()})
	logging.FromContext(ctx).Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("State transition")
	r.hooks.triggerStateChange(from, to)
}

func (r *run) fail(ctx context.Context, err error) (*Report, error) {
	err = contextError(err, r.cfg.timeout)
	failedIn := r.state
	r.transition(ctx, StateFailed)
	r.report.Err = err
	r.report.Fatal = 1
	r.finish()

	logging.FromContext(ctx).Error().
		Err(err).
		Str("stage", failedIn.String()).
		Msg("Reconciliation run failed; registry left unchanged")
	return r.report, err
}

func (r *run) finish() {
	r.report.State = r.state
	r.report.FinishedAt = time.Now()
	r.report.Duration = r.report.FinishedAt.Sub(r.report.StartedAt)
}

// contextError maps context errors onto the cancellation and timeout
// sentinels, keeping the cause.
func contextError(err error, timeout time.Duration) error {
	switch {
	case errors.IsCanceled(err) || errors.IsTimeout(err):
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		var after string
		if timeout > 0 {
			after = timeout.String()
		}
		te := errors.NewTimeoutError("reconciliation run", after, err.Error())
		te.Err = err
		return te
	case stderrors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return err
}

func (r *run) warn(ctx context.Context, msg string) {
	r.report.Warnings = append(r.report.Warnings, msg)
	logging.FromContext(ctx).Warn().Msg(msg)
}

// malformed records a value that fell back to its default.
func (r *run) malformed(ctx context.Context, feed sources.ID, row int, clientID string, err error) {
	r.report.Malformed++
	r.report.recover(fmt.Errorf("%s row %d (%s): %w", feed, row, clientID, err))
	logging.FromContext(ctx).Debug().
		Err(err).
		Str("source", feed.String()).
		Int("row", row).
		Str("client_id", clientID).
		Msg("Malformed value")
}

// input returns the merge input for id, creating it on first use.
func (r *run) input(id string) *reconciler.Input {
	if in, ok := r.inputs[id]; ok {
		return in
	}
	in := &reconciler.Input{ID: id, Overlay: r.overlays[id]}
	if c, ok := r.existing.Get(id); ok {
		in.Existing = &c
	}
	r.inputs[id] = in
	return in
}

func (r *run) inputIDs() []string {
	return slices.Sorted(maps.Keys(r.inputs))
}

// extractStage fetches every source and loads the registry and overlay.
func (r *run) extractStage(ctx context.Context) error {
	ext, err := sources.FetchAll(ctx, r.cfg.retry, r.cfg.sources...)
	if err != nil {
		return err
	}
	r.extract = ext
	r.report.Rows = ext.Counts()

	existing, err := r.cfg.registry.Load(ctx)
	if err != nil {
		return err
	}
	r.existing = existing

	overlays, err := overlay.Index(ctx, r.cfg.overlay)
	if err != nil {
		return errors.WrapResource("list", "overlay", "", err)
	}
	r.overlays = overlays

	logging.FromContext(ctx).Info().
		Int("baseline", len(ext.Baseline)).
		Int("events", len(ext.Events)).
		Int("equipment", len(ext.Equipment)).
		Int("registry", existing.Len()).
		Int("overlays", len(overlays)).
		Msg("Extracted sources")
	return nil
}

// resolveStage maps every row onto a stable ID. Baseline rows may create
// clients; event and equipment rows must match one.
func (r *run) resolveStage(ctx context.Context) error {
	r.index = identity.NewIndex(r.existing)

	var baseline identity.Stats
	for _, row := range r.extract.Baseline {
		name, kana := normalize.Text(row.Name), normalize.Text(row.NameKana)
		res := identity.Resolve(r.index, identity.Candidate{
			StableID: normalize.Compact(row.ID),
			Name:     name,
			Kana:     kana,
		}, identity.MatchOrCreate)
		baseline.Record(res)
		if !res.Resolved() {
			r.report.recover(res.Err(sources.BaselineID.String(), row.Row))
			continue
		}
		if res.Status == identity.StatusCreated {
			r.index.Add(res.ID, name, kana)
		}
		if prev, dup := r.roster[res.ID]; dup {
			r.warn(ctx, fmt.Sprintf("baseline rows %d and %d both map to %s; using row %d", prev.Row, row.Row, res.ID, row.Row))
		}
		r.roster[res.ID] = row
	}
	r.report.Resolution[sources.BaselineID] = baseline

	var events identity.Stats
	for _, row := range r.extract.Events {
		res := r.match(row.ClientID, row.Name, row.NameKana)
		events.Record(res)
		if !res.Resolved() {
			r.report.Events.Unresolved++
			r.report.recover(res.Err(sources.EventsID.String(), row.Row))
			continue
		}
		r.events = append(r.events, resolved[sources.EventRow]{id: res.ID, row: row})
	}
	r.report.Resolution[sources.EventsID] = events

	var equipment identity.Stats
	for _, row := range r.extract.Equipment {
		res := r.match(row.ClientID, row.Name, row.NameKana)
		equipment.Record(res)
		if !res.Resolved() {
			r.report.recover(res.Err(sources.EquipmentID.String(), row.Row))
			continue
		}
		r.equipment = append(r.equipment, resolved[sources.EquipmentRow]{id: res.ID, row: row})
	}
	r.report.Resolution[sources.EquipmentID] = equipment

	logging.FromContext(ctx).Info().
		Int("clients", len(r.roster)).
		Int("events", len(r.events)).
		Int("equipment", len(r.equipment)).
		Int("unresolved", r.report.Unresolved()).
		Msg("Resolved identities")
	return nil
}

func (r *run) match(id, name, kana string) identity.Resolution {
	return identity.Resolve(r.index, identity.Candidate{
		StableID: normalize.Compact(id),
		Name:     normalize.Text(name),
		Kana:     normalize.Text(kana),
	}, identity.MatchOnly)
}

// normalizeStage turns each roster row into a baseline patch.
func (r *run) normalizeStage(ctx context.Context) error {
	for _, id := range slices.Sorted(maps.Keys(r.roster)) {
		row := r.roster[id]
		in := r.input(id)
		in.Baseline, in.WelfareFlag = r.baselinePatch(ctx, id, row)
	}
	for _, id := range slices.Sorted(maps.Keys(r.overlays)) {
		r.input(id)
	}

	logging.FromContext(ctx).Debug().
		Int("inputs", len(r.inputs)).
		Int("malformed", r.report.Malformed).
		Msg("Normalized baseline rows")
	return nil
}

// baselineField binds a roster column to the client field it feeds.
type baselineField struct {
	field clients.Field
	raw   func(sources.BaselineRow) string
	parse func(string) (any, bool)
}

var baselineFields = []baselineField{
	{clients.FieldName, func(r sources.BaselineRow) string { return r.Name }, textValue},
	{clients.FieldNameKana, func(r sources.BaselineRow) string { return r.NameKana }, textValue},
	{clients.FieldBirthDate, func(r sources.BaselineRow) string { return r.BirthDate }, lift(normalize.Date)},
	{clients.FieldGender, func(r sources.BaselineRow) string { return r.Gender }, lift(normalize.Gender)},
	{clients.FieldCareLevel, func(r sources.BaselineRow) string { return r.CareLevel }, lift(normalize.CareLevel)},
	{clients.FieldCopayRate, func(r sources.BaselineRow) string { return r.CopayCode }, lift(normalize.CopayRate)},
	{clients.FieldCareManager, func(r sources.BaselineRow) string { return r.CareManager }, textValue},
	{clients.FieldCareSupportOffice, func(r sources.BaselineRow) string { return r.CareSupportOffice }, textValue},
	{clients.FieldFacilityName, func(r sources.BaselineRow) string { return r.FacilityName }, textValue},
	{clients.FieldRoomNumber, func(r sources.BaselineRow) string { return r.RoomNumber }, textValue},
	{clients.FieldAddress, func(r sources.BaselineRow) string { return r.Address }, textValue},
	{clients.FieldStartDate, func(r sources.BaselineRow) string { return r.StartDate }, lift(normalize.Date)},
}

func (r *run) baselinePatch(ctx context.Context, id string, row sources.BaselineRow) (*clients.Patch, bool) {
	p := &clients.Patch{}
	for _, b := range baselineFields {
		raw := b.raw(row)
		v, ok := b.parse(raw)
		if !ok {
			r.malformed(ctx, sources.BaselineID, row.Row, id,
				errors.NewMalformedValueError(b.field.String(), raw, fmt.Sprint(clients.Baseline(b.field))))
			continue
		}
		if clients.IsBaseline(b.field, v) {
			continue
		}
		// A type the field table rejects leaves the field at its baseline.
		if err := p.Set(b.field, v); err != nil {
			bad := errors.NewMalformedValueError(b.field.String(), raw, fmt.Sprint(clients.Baseline(b.field)))
			bad.Err = err
			r.malformed(ctx, sources.BaselineID, row.Row, id, bad)
		}
	}

	welfare, ok := normalize.Flag(row.WelfareFlag)
	if !ok {
		r.malformed(ctx, sources.BaselineID, row.Row, id,
			errors.NewMalformedValueError("welfare_flag", row.WelfareFlag, "false"))
	}
	return p, welfare
}

func textValue(raw string) (any, bool) { return normalize.Text(raw), true }

func lift[T any](fn func(string) (T, bool)) func(string) (any, bool) {
	return func(raw string) (any, bool) {
		v, ok := fn(raw)
		return v, ok
	}
}

// inferStage proposes values for fields still at their baseline.
func (r *run) inferStage(ctx context.Context) error {
	engine := inference.NewEngine(r.cfg.rules...)
	for _, id := range r.inputIDs() {
		in := r.inputs[id]
		if in.Existing == nil && in.Baseline == nil {
			continue
		}
		snap := r.rec.Snapshot(*in)
		for _, prop := range engine.Infer(snap) {
			if in.Overlay != nil {
				if _, edited := in.Overlay.Fields.Get(prop.Field); edited {
					r.report.Gated++
					continue
				}
			}
			in.Inferred = append(in.Inferred, prop)
			r.report.Inferred[prop.Rule]++
		}
	}
	r.report.Gated += engine.Stats().Gated

	logging.FromContext(ctx).Debug().
		Interface("inferred", r.report.Inferred).
		Int("gated", r.report.Gated).
		Msg("Inference complete")
	return nil
}

// dedupStage builds keyed collection items. Rows sharing a key within the
// run collapse to the last one.
func (r *run) dedupStage(ctx context.Context) error {
	for _, id := range slices.Sorted(maps.Keys(r.roster)) {
		in := r.inputs[id]
		if in.Baseline == nil || in.Baseline.StartDate == nil {
			continue
		}
		if ev, ok := dedup.InitialEvent(id, *in.Baseline.StartDate, r.cfg.office); ok {
			in.Events, _ = dedup.Upsert(in.Events, ev)
		}
	}

	for _, e := range r.events {
		ev, err := dedup.BuildEvent(dedup.EventInput{
			Source:        e.row.Source,
			SourceEventID: e.row.SourceEventID,
			Kind:          e.row.Kind,
			EffectiveDate: e.row.EffectiveDate,
			Note:          e.row.Note,
			Office:        e.row.Office,
			Recorder:      e.row.Recorder,
			UsageCategory: e.row.UsageCategory,
		})
		if err != nil {
			r.report.Events.Malformed++
			r.malformed(ctx, sources.EventsID, e.row.Row, e.id, err)
			continue
		}
		in := r.input(e.id)
		in.Events, _ = dedup.Upsert(in.Events, ev)
	}

	for _, e := range r.equipment {
		if normalize.Text(e.row.RowID) == "" {
			r.malformed(ctx, sources.EquipmentID, e.row.Row, e.id,
				errors.NewMalformedValueError("row_id", e.row.RowID, ""))
			continue
		}
		item, sales, errs := dedup.BuildEquipment(dedup.EquipmentInput{
			Source:      e.row.Source,
			RowID:       e.row.RowID,
			ProductName: e.row.ProductName,
			Category:    e.row.Category,
			Status:      e.row.Status,
			UnitPrice:   e.row.UnitPrice,
			Quantity:    e.row.Quantity,
			TaxType:     e.row.TaxType,
			TaxIncluded: e.row.TaxIncluded,
			Date:        e.row.Date,
		})
		for _, err := range errs {
			r.malformed(ctx, sources.EquipmentID, e.row.Row, e.id, err)
		}
		in := r.input(e.id)
		in.Equipment, _ = dedup.Upsert(in.Equipment, item)
		for _, s := range sales {
			in.Sales, _ = dedup.Upsert(in.Sales, s)
		}
	}

	logging.FromContext(ctx).Debug().
		Int("events", len(r.events)).
		Int("equipment", len(r.equipment)).
		Msg("Built collection items")
	return nil
}

// mergeStage folds every input into a copy of the registry.
func (r *run) mergeStage(ctx context.Context) error {
	inputs := make([]reconciler.Input, 0, len(r.inputs))
	for _, id := range r.inputIDs() {
		inputs = append(inputs, *r.inputs[id])
	}

	result, err := r.rec.Registry(ctx, r.existing, inputs)
	if err != nil {
		return err
	}
	r.result = result

	r.report.Merge = result.Stats
	r.report.Changed = result.Changed
	r.report.Events.Appended = result.Stats.Events.Appended
	r.report.Events.Replaced = result.Stats.Events.Replaced
	r.report.Events.Unchanged = result.Stats.Events.Unchanged
	r.report.Events.Conflicts = result.Stats.Conflicts
	for _, w := range result.Warnings {
		r.warn(ctx, w)
	}
	return nil
}

// serializeStage replaces the persisted registry. It runs detached from the
// caller's cancellation.
func (r *run) serializeStage(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	switch {
	case r.cfg.dryRun:
		logger.Info().Int("changed", len(r.result.Changed)).Msg("Dry run; registry not written")
		return nil
	case !r.result.HasChanges():
		logger.Info().Msg("No changes; registry not written")
		return nil
	}

	if err := r.cfg.registry.Save(ctx, r.result.Registry); err != nil {
		return err
	}
	r.report.Written = true
	logger.Info().
		Str("location", r.cfg.registry.Location()).
		Int("clients", r.result.Registry.Len()).
		Msg("Registry written")

	if r.cfg.provenanceFile != "" {
		if err := provenance.Save(r.cfg.provenanceFile, r.result.Provenance); err != nil {
			r.warn(ctx, fmt.Sprintf("provenance not saved: %v", err))
		}
	}
	return nil
}
