package types

// Todo is a single record held by a Store.
// ID is assigned by the store on creation and never changes.
type Todo struct {
	ID     uint32 `json:"id"`
	Title  string `json:"title"`
	Status bool   `json:"status"`
}

// Update describes a partial change to a Todo. A nil field is left unchanged;
// an Update with both fields nil is a valid no-op.
type Update struct {
	Title  *string
	Status *bool
}

// SetTitle returns an Update that replaces only the title.
func SetTitle(title string) Update {
	return Update{Title: &title}
}

// SetStatus returns an Update that replaces only the status.
func SetStatus(status bool) Update {
	return Update{Status: &status}
}

// IsEmpty reports whether the Update carries no fields.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Status == nil
}

// Apply returns t with the present fields of u written over it.
// The ID is never touched.
func (u Update) Apply(t Todo) Todo {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	return t
}
