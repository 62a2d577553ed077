package models

// Todo is the single entity managed by the service.
type Todo struct {
	ID         int64   `json:"id"`
	Name       *string `json:"name"`
	IsComplete bool    `json:"isComplete"`
}

// Apply copies the mutable fields of in onto t. Name is only replaced when in
// carries a name; IsComplete is always taken from in.
func (t *Todo) Apply(in Todo) {
	if in.Name != nil {
		name := *in.Name
		t.Name = &name
	}
	t.IsComplete = in.IsComplete
}

// Clone returns a copy of t that shares no memory with it.
func (t Todo) Clone() Todo {
	if t.Name != nil {
		name := *t.Name
		t.Name = &name
	}
	return t
}

// NameOrEmpty returns the name, or "" when none is set.
func (t Todo) NameOrEmpty() string {
	if t.Name == nil {
		return ""
	}
	return *t.Name
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
