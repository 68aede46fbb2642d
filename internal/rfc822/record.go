package rfc822

// Field is a single named value within a record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered mapping of field names to values together with
// the origin of the text it was parsed from. Records are immutable
// once constructed.
type Record struct {
	fields  []Field
	index   map[string]int
	origin  Origin
	offsets map[string]int
}

// NewRecord builds a record from explicit fields. A repeated name
// keeps the last value; the parser, by contrast, rejects duplicates.
func NewRecord(origin Origin, fields ...Field) *Record {
	r := &Record{origin: origin, index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if i, ok := r.index[f.Name]; ok {
			r.fields[i].Value = f.Value
			continue
		}
		r.index[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// Get returns the value of the named field, or "" when absent.
func (r *Record) Get(name string) string {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the value of the named field and whether it exists.
func (r *Record) Lookup(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.fields[i].Value, true
}

func (r *Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Fields returns the fields in their original order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r *Record) Len() int {
	return len(r.fields)
}

func (r *Record) Origin() Origin {
	return r.origin
}

// FieldOffset returns the 0-based line offset, counted from the
// record's first line, of the line that introduced the named field.
// Only parsed records carry offsets.
func (r *Record) FieldOffset(name string) (int, bool) {
	off, ok := r.offsets[name]
	return off, ok
}

// Equal reports whether both records carry the same field mapping.
// Field order and origins are ignored.
func (r *Record) Equal(other *Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	for _, f := range r.fields {
		if v, ok := other.Lookup(f.Name); !ok || v != f.Value {
			return false
		}
	}
	return true
}
