package reconciler

import (
	"slices"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/dedup"
	"github.com/agentstation/careroster/pkg/overlay"
)

// mergeCollections merges each owned collection: existing items first, then
// machine items, then overlay items, then overlay tombstones. A machine item
// whose key the overlay holds or tombstones is skipped as a conflict.
func mergeCollections(in Input, merged *clients.Client, changes *Changes) {
	ov := in.Overlay
	if ov == nil {
		ov = &overlay.Overlay{}
	}
	tombstones := ov.Tombstones()

	merged.Meetings = mergeItems(merged.Meetings, nil, ov.Meetings, ov, tombstones, changes, nil)
	merged.ChangeEvents = mergeItems(merged.ChangeEvents, in.Events, ov.ChangeEvents, ov, tombstones, changes, &changes.Events)
	merged.PlannedEquipment = mergeItems(merged.PlannedEquipment, nil, ov.PlannedEquipment, ov, tombstones, changes, nil)
	merged.SelectedEquipment = mergeItems(merged.SelectedEquipment, in.Equipment, ov.SelectedEquipment, ov, tombstones, changes, nil)
	merged.SalesRecords = mergeItems(merged.SalesRecords, in.Sales, ov.SalesRecords, ov, tombstones, changes, nil)
	merged.SalesRecords = dropStaleSales(merged.SalesRecords, in, ov, changes)
}

// dropStaleSales removes the derived sales record of each machine equipment
// item that no longer yields one, such as a rental moved from self-pay to
// insurance. Records the overlay holds are kept.
func dropStaleSales(records []clients.SalesRecord, in Input, ov *overlay.Overlay, changes *Changes) []clients.SalesRecord {
	derived := make(map[string]bool, len(in.Sales))
	for _, s := range in.Sales {
		derived[s.Key()] = true
	}
	stale := make(map[string]bool)
	for _, e := range in.Equipment {
		id := clients.SalesRecordID(e.ID)
		if derived[id] || ov.Owns(e.Key()) || ov.Owns(id) {
			continue
		}
		stale[id] = true
	}

	records, removed := dedup.Remove(records, stale)
	if removed > 0 {
		changes.Removed += removed
		changes.Collections = true
	}
	return records
}

// mergeItems upserts machine and human items into items. Machine outcomes
// are counted in machineStats when given, otherwise as generic item upserts.
func mergeItems[T clients.Keyed](
	items, machine, human []T,
	ov *overlay.Overlay,
	tombstones map[string]bool,
	changes *Changes,
	machineStats *dedup.Stats,
) []T {
	before := slices.Clone(items)

	for _, it := range machine {
		if ov.Owns(it.Key()) {
			changes.Conflicts++
			continue
		}
		var o dedup.Outcome
		items, o = dedup.Upsert(items, it)
		if machineStats != nil {
			machineStats.Record(o)
		} else if o != dedup.Unchanged {
			changes.Items++
		}
	}

	for _, it := range human {
		var o dedup.Outcome
		items, o = dedup.Upsert(items, it)
		if o != dedup.Unchanged {
			changes.Items++
		}
	}

	var removed int
	items, removed = dedup.Remove(items, tombstones)
	changes.Removed += removed

	if !slices.Equal(before, items) {
		changes.Collections = true
	}
	return items
}
