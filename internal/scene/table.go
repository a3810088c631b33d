package scene

// Table is the ordered list of scene declarations produced by the last
// script execution, plus the current scene index. Exactly one table is
// active at a time; its length defines the valid index range [0, len).
//
// The table is not self-synchronizing: the engine's control loop is the
// only writer.
type Table struct {
	scenes  []Scene
	current int
}

// NewTable returns an empty table with current index 0.
func NewTable() *Table {
	return &Table{}
}

// Len returns the number of scenes.
func (t *Table) Len() int { return len(t.scenes) }

// Scene returns the declaration at index i.
func (t *Table) Scene(i int) (Scene, bool) {
	if i < 0 || i >= len(t.scenes) {
		return Scene{}, false
	}
	return t.scenes[i], true
}

// Scenes returns a copy of the current declarations.
func (t *Table) Scenes() []Scene {
	out := make([]Scene, len(t.scenes))
	copy(out, t.scenes)
	return out
}

// Replace swaps the declaration at an existing index.
func (t *Table) Replace(i int, s Scene) bool {
	if i < 0 || i >= len(t.scenes) {
		return false
	}
	t.scenes[i] = s
	return true
}

// Append registers a declaration at the next index.
func (t *Table) Append(s Scene) {
	t.scenes = append(t.scenes, s)
}

// Truncate drops declarations beyond length n. Dropped scenes are not torn
// down; only the currently loaded scene ever has live objects.
func (t *Table) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(t.scenes) {
		t.scenes = t.scenes[:n]
	}
}

// Clear removes every declaration and resets the index.
func (t *Table) Clear() {
	t.scenes = nil
	t.current = 0
}

// Current returns the active scene index. The index reflects the most
// recently attempted load target and may sit outside the table bounds right
// after a truncating reconciliation.
func (t *Table) Current() int { return t.current }

// SetCurrent records the attempted load target.
func (t *Table) SetCurrent(i int) { t.current = i }

// CurrentScene returns the declaration at the current index, when valid.
func (t *Table) CurrentScene() (Scene, bool) {
	return t.Scene(t.current)
}
