package archive

// Cursor tracks the progress of one search across successive FindNext calls.
// Enumeration is strictly forward through physical scan order: a cursor never
// revisits an earlier record, even if the template would match it again.
// Restarting requires a new FindFirst. Cursors are independent; any number
// may coexist over the same session.
type Cursor struct {
	session   *Session
	template  RecordKey
	position  int
	exhausted bool
}

// Template returns the search template the cursor was created with.
func (c *Cursor) Template() RecordKey {
	return c.template
}

// Position returns the scan position of the last match.
func (c *Cursor) Position() int {
	return c.position
}

// Exhausted reports whether enumeration has reached the end of the directory.
func (c *Cursor) Exhausted() bool {
	return c.exhausted
}
