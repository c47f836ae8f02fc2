package matdb

import "golang.org/x/xerrors"

// resolveLink resolves a Ref/Link-kind Value into the MaterialObject it
// points to. When both wantClass and the link's own LinkClass tag are
// non-empty they must match; a link with no LinkClass is accepted for any
// wantClass, and the target object's components are not inspected. The
// original's ComponentInfo::readBSComponentDB2ID rejects a link whose
// target doesn't match the expected type (e.g. a LayerID field pointing at
// something other than a Layer object); the LinkClass comparison is this
// package's form of that check (SUPPLEMENTED FEATURES, SPEC_FULL.md).
func (db *Database) resolveLink(v Value, wantClass string) (*MaterialObject, error) {
	if v.Kind != KindRef && v.Kind != KindLink {
		return nil, xerrors.Errorf("matdb: value is not a reference (kind %d)", v.Kind)
	}
	obj, ok := db.Object(v.Ref)
	if !ok {
		return nil, xerrors.Errorf("matdb: dangling reference to object %d", v.Ref)
	}
	if wantClass != "" && v.LinkClass != "" && v.LinkClass != wantClass {
		return nil, xerrors.Errorf("matdb: reference expected class %s, link names %s", wantClass, v.LinkClass)
	}
	return obj, nil
}

// ResolveComponent looks up a named field of obj's resolved component tree
// and follows it as a link, the shared primitive every typed projection
// reader builds on.
func (db *Database) ResolveComponent(c *MaterialComponent, field, wantClass string) (*MaterialObject, error) {
	if c == nil {
		return nil, xerrors.New("matdb: component is nil")
	}
	v, ok := c.Value.Field(field)
	if !ok {
		return nil, xerrors.Errorf("matdb: component %s has no field %s", c.ClassName, field)
	}
	return db.resolveLink(v, wantClass)
}
