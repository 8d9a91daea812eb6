package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptors_AllValid(t *testing.T) {
	for _, d := range Descriptors() {
		require.NoError(t, d.Validate(), "descriptor %s", d.Kind)
	}
}

func TestDescriptors_UniqueKindsAndTables(t *testing.T) {
	kinds := make(map[EntityKind]struct{})
	tables := make(map[string]struct{})

	for _, d := range Descriptors() {
		_, dupKind := kinds[d.Kind]
		require.False(t, dupKind, "duplicate kind %s", d.Kind)
		kinds[d.Kind] = struct{}{}

		_, dupTable := tables[d.LocalTable]
		require.False(t, dupTable, "duplicate local table %s", d.LocalTable)
		tables[d.LocalTable] = struct{}{}
	}
}

func TestDescriptors_MappingInvertible(t *testing.T) {
	// Every remote name must map back to exactly one local name per kind,
	// otherwise the download codec cannot translate rows losslessly.
	for _, d := range Descriptors() {
		byRemote := make(map[string]string, len(d.Fields))
		for _, f := range d.Fields {
			prev, seen := byRemote[f.Remote]
			require.False(t, seen, "%s: remote %q maps to both %q and %q", d.Kind, f.Remote, prev, f.Local)
			byRemote[f.Remote] = f.Local
		}
	}
}

func TestDescriptors_ParentsRegisteredBeforeChildren(t *testing.T) {
	seen := make(map[EntityKind]bool)
	for _, d := range Descriptors() {
		if d.Parent != "" {
			assert.True(t, seen[d.Parent], "%s: parent %s must be registered first", d.Kind, d.Parent)
		}
		seen[d.Kind] = true
	}
}

func TestDescriptors_AppendOnlyShape(t *testing.T) {
	for _, d := range Descriptors() {
		if !d.AppendOnly {
			continue
		}
		assert.False(t, d.HasUpdatedAt, "%s: append-only kind must not carry updated_at", d.Kind)
		if d.DedupeWindow > 0 {
			def, ok := d.Field(d.DedupeField)
			require.True(t, ok, "%s: dedupe field missing", d.Kind)
			assert.Equal(t, KindTime, def.Kind)
		}
	}
}

func TestEntityDescriptor_ValidateRejectsDuplicates(t *testing.T) {
	d := EntityDescriptor{
		Kind:       "broken",
		LocalTable: "broken",
		Fields: []FieldDef{
			{Local: "a", Remote: "a", Kind: KindString},
			{Local: "a", Remote: "b", Kind: KindString},
		},
	}
	require.Error(t, d.Validate())

	d.Fields[1].Local = "b"
	d.Fields[1].Remote = "a"
	require.Error(t, d.Validate())
}

func TestDescriptorFor(t *testing.T) {
	d, ok := DescriptorFor(KindFavorites)
	require.True(t, ok)
	assert.Equal(t, "favorite_songs", d.RemoteTable)

	_, ok = DescriptorFor("no_such_kind")
	assert.False(t, ok)
}
