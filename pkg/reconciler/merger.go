package reconciler

import (
	"github.com/agentstation/careroster/pkg/authority"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/provenance"
)

// winner is the value a field resolved to and the layer that supplied it.
// An empty layer means no layer supplied a value and the field is at baseline.
type winner struct {
	value any
	layer authority.Layer
	rule  string
}

// resolve walks the layers for a field in precedence order. An overlay value
// counts whenever present, since a person may deliberately set a field back
// to its baseline. Every other layer counts only when it differs from the
// baseline.
func (r *reconciler) resolve(in Input, f clients.Field, withInference bool) winner {
	for _, layer := range r.authorities.Order(f) {
		switch layer {
		case authority.LayerOverlay:
			if in.Overlay == nil {
				continue
			}
			if v, ok := in.Overlay.Fields.Get(f); ok {
				return winner{value: v, layer: layer}
			}
		case authority.LayerInference:
			if !withInference {
				continue
			}
			for _, p := range in.Inferred {
				if p.Field == f && !clients.IsBaseline(f, p.Value) {
					return winner{value: p.Value, layer: layer, rule: p.Rule}
				}
			}
		case authority.LayerBaseline:
			if v, ok := in.Baseline.Get(f); ok && !clients.IsBaseline(f, v) {
				return winner{value: v, layer: layer}
			}
		case authority.LayerExisting:
			if in.Existing == nil {
				continue
			}
			if v := in.Existing.Get(f); !clients.IsBaseline(f, v) {
				return winner{value: v, layer: layer}
			}
		}
	}
	return winner{value: clients.Baseline(f)}
}

// mergeFields assigns every scalar field its winning value.
func (r *reconciler) mergeFields(in Input, merged *clients.Client, changes *Changes) error {
	for _, f := range clients.Fields() {
		w := r.resolve(in, f, true)
		prev := merged.Get(f)

		if w.layer != "" {
			r.provenance.Track(in.ID, f, provenance.Provenance{
				Layer:         w.layer,
				Rule:          w.rule,
				Value:         w.value,
				PreviousValue: prev,
			})
		}
		if prev == w.value {
			continue
		}
		if err := merged.Set(f, w.value); err != nil {
			return errors.NewMergeError(in.ID, string(f), err)
		}
		changes.Fields = append(changes.Fields, f)
		if w.layer == authority.LayerInference {
			changes.Inferred = append(changes.Inferred, f)
		}
	}
	return nil
}
