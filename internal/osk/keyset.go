package osk

// SpecialKeySet is one named page of keys shown in Special mode,
// grounded on original_source/terminal_state.h's SpecialKeySet struct.
// The built-in CONTROL set always occupies index 0; every other set is
// either statically configured at construction or attached later via a
// LoadSet key or Model.LoadKeySet.
type SpecialKeySet struct {
	Name          string
	FilePath      string
	IsDynamic     bool
	Keys          []KeyDescriptor
	ActiveModMask uint8 // declared via LoadKeySet (zero for .keys files); surfaced in modifier indicators
}

const controlSetName = "CONTROL"

// dynamicSetRef names a set discoverable by LoadSet but not currently
// attached, matching original_source/osk.c's
// available_dynamic_key_sets bookkeeping.
type dynamicSetRef struct {
	Name string
	Path string
}

// MakeSetAvailable registers a dynamically loadable set (by name and file
// path) without loading it, the way an embedder's startup config walks a
// key-sets directory and calls osk_make_set_available for each file
// found. The set becomes selectable via a "+NAME" key synthesized into
// the CONTROL set.
func (m *Model) MakeSetAvailable(name, path string) {
	for _, d := range m.available {
		if d.Name == name {
			return
		}
	}
	m.available = append(m.available, dynamicSetRef{Name: name, Path: path})
	m.rebuildControlSet()
	m.generation++
}

// LoadedSetNames returns the names of every currently attached
// special-key set, CONTROL included.
func (m *Model) LoadedSetNames() []string {
	names := make([]string, len(m.sets))
	for i, s := range m.sets {
		names[i] = s.Name
	}
	return names
}

// loadSetByPath reads a `.keys` file and attaches it, synthesizing the
// CONTROL set's "-NAME" unload key for it and removing its own
// "+NAME" load key from the available list.
func (m *Model) loadSetByPath(path string) error {
	name, keys, mask, err := loadKeysFile(path, m.log)
	if err != nil {
		return err
	}
	return m.attachSet(name, path, keys, mask, true)
}

// LoadKeySet attaches an already-parsed set directly, used by an
// embedder that wants to seed a static (non-dynamic) set at startup
// instead of going through a `.keys` file. loadSetByPath above shares
// its attachSet step.
func (m *Model) LoadKeySet(name string, keys []KeyDescriptor, mask uint8) {
	m.attachSet(name, "", keys, mask, false)
}

func (m *Model) attachSet(name, path string, keys []KeyDescriptor, mask uint8, dynamic bool) error {
	for _, s := range m.sets {
		if s.Name == name {
			return nil // already loaded; idempotent
		}
	}
	m.sets = append(m.sets, &SpecialKeySet{
		Name:          name,
		FilePath:      path,
		IsDynamic:     dynamic,
		Keys:          keys,
		ActiveModMask: mask,
	})
	// remove from the available list now that it's loaded
	for i, d := range m.available {
		if d.Name == name {
			m.available = append(m.available[:i], m.available[i+1:]...)
			break
		}
	}
	m.rebuildControlSet()
	m.generation++
	return nil
}

// UnloadSetByName detaches a loaded set by name (CONTROL itself cannot
// be unloaded) and, if it was originally discovered via
// MakeSetAvailable, re-adds it to the available list so it can be
// reloaded later.
func (m *Model) UnloadSetByName(name string) {
	if name == controlSetName {
		return
	}
	for i, s := range m.sets {
		if s.Name != name {
			continue
		}
		if s.FilePath != "" {
			m.available = append(m.available, dynamicSetRef{Name: s.Name, Path: s.FilePath})
		}
		m.sets = append(m.sets[:i], m.sets[i+1:]...)
		if m.setIdx >= len(m.sets) {
			m.setIdx = len(m.sets) - 1
		}
		break
	}
	m.rebuildControlSet()
	m.generation++
}

// rebuildControlSet regenerates the CONTROL set's key list from the
// current available/loaded registries, synthesizing one "+NAME" key per
// available-but-unloaded set and one "-NAME" key per loaded dynamic set,
// grounded on original_source/osk.c's
// osk_rebuild_control_set_dynamic_keys. It must be called atomically
// with respect to any in-progress navigation read, which Go's
// single-threaded-core invariant (§5) already guarantees without a lock.
func (m *Model) rebuildControlSet() {
	ctrl := m.sets[0]
	keys := append([]KeyDescriptor{}, m.staticControlKeys...)
	for _, d := range m.available {
		keys = append(keys, LoadSet{Path: d.Path})
	}
	for _, s := range m.sets[1:] {
		if s.IsDynamic {
			keys = append(keys, UnloadSet{Name: s.Name})
		}
	}
	ctrl.Keys = keys
	if m.setIdx >= len(m.sets) {
		m.setIdx = 0
	}
}
