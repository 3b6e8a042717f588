package input

// DefaultKeyMap maps host key names (as reported by a backend, e.g. tcell's
// key/rune names) to Actions. Backends translate their own event types into
// these strings before looking them up here, so the mapping is shared
// across every backend rather than duplicated per UI toolkit.
var DefaultKeyMap = map[string]Action{
	"z":      ButtonA,
	"x":      ButtonB,
	"Enter":  ButtonStart,
	"Shift":  ButtonSelect,
	"Up":     DPadUp,
	"Down":   DPadDown,
	"Left":   DPadLeft,
	"Right":  DPadRight,
	"w":      DPadUp,
	"s":      DPadDown,
	"a":      DPadLeft,
	"d":      DPadRight,
	"Space":  PauseToggle,
	"p":      PauseToggle,
	"o":      StepFrame,
	"Escape": Quit,
	"q":      Quit,
}

// Manager tracks which Actions are currently held, resolving raw
// key-down/key-up events through its keymap. It does not call into a
// joypad itself.
type Manager struct {
	keymap map[string]Action
	held   map[Action]bool
}

// NewManager returns a Manager using the given keymap (DefaultKeyMap if nil).
func NewManager(keymap map[string]Action) *Manager {
	if keymap == nil {
		keymap = DefaultKeyMap
	}
	return &Manager{keymap: keymap, held: make(map[Action]bool)}
}

// Resolve looks up the Action bound to a key name.
func (m *Manager) Resolve(key string) (Action, bool) {
	a, ok := m.keymap[key]
	return a, ok
}

// KeyDown records a key as held and returns the resolved Action, if mapped.
func (m *Manager) KeyDown(key string) (Action, bool) {
	a, ok := m.keymap[key]
	if ok {
		m.held[a] = true
	}
	return a, ok
}

// KeyUp clears a key's held state and returns the resolved Action, if mapped.
func (m *Manager) KeyUp(key string) (Action, bool) {
	a, ok := m.keymap[key]
	if ok {
		delete(m.held, a)
	}
	return a, ok
}

// Held reports whether an Action is currently held down.
func (m *Manager) Held(a Action) bool { return m.held[a] }
