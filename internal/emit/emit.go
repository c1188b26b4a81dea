// Package emit implements the work-unit emitter (spec 4.5): for every
// (major fragment x minor id) pair in a fully-assigned PlanningSet, it
// re-materializes the operator tree, serializes it under the configured
// codec, extracts collectors, and assembles a PlanFragment.
package emit

import (
	"encoding/json"

	"github.com/distquery/parallelizer/internal/codec"
	"github.com/distquery/parallelizer/internal/perrors"
	"github.com/distquery/parallelizer/internal/planmodel"
)

// Params bundles the emission-time inputs that are not derived from the
// PlanningSet itself (spec 6's getFragments parameter list).
type Params struct {
	QueryID      [16]byte
	Foreman      planmodel.Endpoint
	Credentials  []byte
	Codec        planmodel.Codec
	Priority     int32
	OptionsBytes []byte
}

// Run emits the full WorkUnit for set, in PlanningSet iteration order x
// ascending minor id (spec 5). Assumes every wrapper in set has already
// reached StateAssigned (I2), as guaranteed by a prior, successful
// parallelizer.Run call over the same set.
func Run(set *planmodel.PlanningSet, params Params) (planmodel.WorkUnit, error) {
	root := set.Root()
	if root != nil && root.Width != 1 {
		return nil, perrors.NewForemanSetupError(
			perrors.CodeRootWidth, "root fragment width must be 1", root.Fragment.MajorID)
	}

	senderAssignments := make(map[int32][]planmodel.Endpoint, set.Len())
	widths := make(map[int32]int, set.Len())
	for _, w := range set.Wrappers() {
		senderAssignments[w.Fragment.MajorID] = w.AssignedEndpoints
		widths[w.Fragment.MajorID] = w.Width
	}

	optionsBytes, err := codec.Encode(params.Codec, params.OptionsBytes)
	if err != nil {
		// Not tied to any one fragment, so no major id is attached.
		return nil, &perrors.PlanSetupError{
			Code: perrors.CodeSerialization, Message: "failed to encode session options", MajorID: noMajorID, Err: err}
	}

	var unit planmodel.WorkUnit
	for _, w := range set.Wrappers() {
		for minorID := 0; minorID < w.Width; minorID++ {
			pf, err := emitOne(w, minorID, senderAssignments, widths, optionsBytes, params)
			if err != nil {
				return nil, err
			}
			unit = append(unit, pf)
		}
	}

	return unit, nil
}

const noMajorID int32 = -1

func emitOne(w *planmodel.Wrapper, minorID int, senderAssignments map[int32][]planmodel.Endpoint, widths map[int32]int, optionsBytes []byte, params Params) (planmodel.PlanFragment, error) {
	w.ResetAllocation()

	var split planmodel.SplitSet
	if minorID < len(w.SplitSets) {
		split = w.SplitSets[minorID]
	}

	materialized := materialize(w.Fragment.Root, minorID, widths, split)
	if materialized == nil || materialized.Kind != planmodel.OperatorFragmentRoot {
		return planmodel.PlanFragment{}, perrors.NewPlanSetupErrorForFragment(
			perrors.CodeRootTypeMismatch, "materialized fragment root is not a FragmentRoot operator", w.Fragment.MajorID)
	}

	raw, err := json.Marshal(materialized)
	if err != nil {
		return planmodel.PlanFragment{}, perrors.WrapPlanSetupError(
			perrors.CodeSerialization, "failed to marshal materialized operator tree", w.Fragment.MajorID, err)
	}
	fragmentBytes, err := codec.Encode(params.Codec, raw)
	if err != nil {
		return planmodel.PlanFragment{}, perrors.WrapPlanSetupError(
			perrors.CodeSerialization, "failed to encode fragment bytes", w.Fragment.MajorID, err)
	}

	collectors := extractCollectors(materialized, minorID, w.Width, senderAssignments)

	return planmodel.PlanFragment{
		Handle: planmodel.Handle{
			QueryID: params.QueryID,
			MajorID: w.Fragment.MajorID,
			MinorID: int32(minorID),
		},
		Foreman:          params.Foreman,
		AssignedEndpoint: w.AssignedEndpoints[minorID],
		MemInitial:       w.Initial,
		MemMax:           w.Max,
		FragmentBytes:    fragmentBytes,
		OptionsBytes:     optionsBytes,
		Credentials:      params.Credentials,
		Collectors:       collectors,
		Leaf:             w.Fragment.IsLeaf(),
		Priority:         params.Priority,
		Codec:            params.Codec,
	}, nil
}
