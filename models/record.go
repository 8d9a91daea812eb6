package models

import "time"

// FieldKind enumerates the value types a syncable payload field can hold.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

// Value is a typed, explicitly-present payload field value.
//
// Presence is tracked with the valid flag rather than by comparing against
// zero values: boolean false, numeric 0 and the empty string are all
// legitimate synced values and must survive conflict resolution unchanged.
type Value struct {
	kind  FieldKind
	valid bool

	str   string
	num   int64
	float float64
	flag  bool
	ts    time.Time
}

func String(s string) Value  { return Value{kind: KindString, valid: true, str: s} }
func Int(n int64) Value      { return Value{kind: KindInt, valid: true, num: n} }
func Float(f float64) Value  { return Value{kind: KindFloat, valid: true, float: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, valid: true, flag: b} }
func Time(t time.Time) Value { return Value{kind: KindTime, valid: true, ts: t} }

// Null returns an absent value of the given kind.
func Null(kind FieldKind) Value { return Value{kind: kind} }

// Valid reports whether the value is present.
func (v Value) Valid() bool { return v.valid }

// Kind returns the declared type of the value, meaningful even when absent.
func (v Value) Kind() FieldKind { return v.kind }

func (v Value) Str() string     { return v.str }
func (v Value) Int() int64      { return v.num }
func (v Value) Float() float64  { return v.float }
func (v Value) Bool() bool      { return v.flag }
func (v Value) Time() time.Time { return v.ts }

// Any returns the underlying value as an interface, or nil when absent.
// Used by the SQL and JSON codecs.
func (v Value) Any() any {
	if !v.valid {
		return nil
	}
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.float
	case KindBool:
		return v.flag
	case KindTime:
		return v.ts
	}
	return nil
}

// Equal compares two values by presence, kind and content.
func (v Value) Equal(other Value) bool {
	if v.valid != other.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.num == other.num
	case KindFloat:
		return v.float == other.float
	case KindBool:
		return v.flag == other.flag
	case KindTime:
		return v.ts.Equal(other.ts)
	}
	return false
}

// Record is the local copy of one syncable entity instance.
//
// ID is assigned by the record store on creation and never reused; it is a
// purely local identifier and is not assumed to match any remote id.
// PendingUpload is true while the record carries mutations not yet confirmed
// durable on the remote; only the record store may flip it, inside the same
// transaction as the field change it describes.
type Record struct {
	ID            string
	OwnerID       string
	Fields        map[string]Value
	CreatedAt     time.Time
	UpdatedAt     time.Time // zero for append-only kinds
	PendingUpload bool
}

// Field returns the named payload field, or an invalid Value when the record
// does not carry it.
func (r Record) Field(name string) Value {
	if r.Fields == nil {
		return Value{}
	}
	return r.Fields[name]
}

// CloneFields returns a shallow copy of the payload field map, never nil.
func (r Record) CloneFields() map[string]Value {
	out := make(map[string]Value, len(r.Fields))
	for k, v := range r.Fields {
		out[k] = v
	}
	return out
}

// EffectiveTimestamp is the record's last-mutation time, falling back to the
// creation time for kinds without update-in-place semantics.
func (r Record) EffectiveTimestamp() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// RemoteRecord is one entity instance as returned by the remote store,
// already translated to local field names. Remote numeric ids are not
// carried: local counterparts are matched by owner plus natural key.
type RemoteRecord struct {
	OwnerID   string
	Fields    map[string]Value
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field returns the named payload field, or an invalid Value when absent.
func (r RemoteRecord) Field(name string) Value {
	if r.Fields == nil {
		return Value{}
	}
	return r.Fields[name]
}

// EffectiveTimestamp mirrors Record.EffectiveTimestamp for the remote side.
func (r RemoteRecord) EffectiveTimestamp() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}
