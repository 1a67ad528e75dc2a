package record

// Record is an insertion-ordered mapping of field name to value. It is the
// row shape handed to the storage sinks, so column order must match the
// order fields were set in.
type Record struct {
	keys   []string
	values map[string]any
}

// New creates an empty Record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value under the given field name. Setting an existing field
// replaces its value but keeps its original position.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for a field and whether it was set.
func (r *Record) Get(key string) (any, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Columns returns the field names in insertion order.
func (r *Record) Columns() []string {
	columns := make([]string, len(r.keys))
	copy(columns, r.keys)
	return columns
}

// Values returns the field values in insertion order.
func (r *Record) Values() []any {
	values := make([]any, 0, len(r.keys))
	for _, key := range r.keys {
		values = append(values, r.values[key])
	}
	return values
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}
