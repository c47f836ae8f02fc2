package matdb

import "github.com/ce2cdb/matcdb/internal/archive"

// wellKnownParents is the "Parent" root table get_json_material consults
// to find a material's layered-root ancestor. The original tool's full
// table was not recoverable from the retrieved sources within budget
// (SPEC_FULL.md §4 records this as a resolved open question): rather than
// guess at its contents, it is kept as small, editable, append-only data,
// seeded only with the root spec §8 scenario S5 names.
var wellKnownParents = map[archive.ResourceID]string{
	archive.ResourceIDFromPath("materials/layered/root/materials.mat"): "materials/layered/root/materials.mat",
}

// WellKnownParent reports the editable root-table entry for id, if any.
func WellKnownParent(id archive.ResourceID) (string, bool) {
	p, ok := wellKnownParents[id]
	return p, ok
}

// RegisterWellKnownParent lets an operator extend the root table at
// runtime without a code change.
func RegisterWellKnownParent(id archive.ResourceID, path string) {
	wellKnownParents[id] = path
}
