package core

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_PAUSE     KeyCode = 0x13
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_A         KeyCode = 0x41
	KEY_D         KeyCode = 0x44
	KEY_S         KeyCode = 0x53
	KEY_W         KeyCode = 0x57
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEYS_MAX_KEYS KeyCode = 0x100
)

var keyNames = map[string]KeyCode{
	"backspace": KEY_BACKSPACE,
	"tab":       KEY_TAB,
	"enter":     KEY_ENTER,
	"shift":     KEY_SHIFT,
	"pause":     KEY_PAUSE,
	"escape":    KEY_ESCAPE,
	"space":     KEY_SPACE,
	"end":       KEY_END,
	"home":      KEY_HOME,
	"left":      KEY_LEFT,
	"up":        KEY_UP,
	"right":     KEY_RIGHT,
	"down":      KEY_DOWN,
	"delete":    KEY_DELETE,
	"lshift":    KEY_LSHIFT,
	"rshift":    KEY_RSHIFT,
	"lcontrol":  KEY_LCONTROL,
	"rcontrol":  KEY_RCONTROL,
}

var buttonNames = map[string]Button{
	"left":   BUTTON_LEFT,
	"right":  BUTTON_RIGHT,
	"middle": BUTTON_MIDDLE,
}

/**
 * @brief Resolves a key name: a single letter or digit ("w", "7"), "f1"
 * to "f12", or one of the named keys ("space", "escape", "left", ...).
 */
func KeyFromName(name string) (KeyCode, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return KEY_A + KeyCode(c-'a'), true
		case c >= '0' && c <= '9':
			return KEY_0 + KeyCode(c-'0'), true
		}
	}
	if len(name) >= 2 && name[0] == 'f' {
		n := 0
		for _, c := range name[1:] {
			if c < '0' || c > '9' {
				n = 0
				break
			}
			n = n*10 + int(c-'0')
		}
		if n >= 1 && n <= 12 {
			return KEY_F1 + KeyCode(n-1), true
		}
	}
	key, ok := keyNames[name]
	return key, ok
}

// ButtonFromName resolves "left", "right" or "middle".
func ButtonFromName(name string) (Button, bool) {
	b, ok := buttonNames[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Mouse state structure
type MouseState struct {
	X       uint16
	Y       uint16
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input state structure that holds current and previous states for keyboard and mouse
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

/**
 * @brief Input tracks keyboard and mouse state for one engine context.
 * The platform layer feeds it through the Process* methods, which fire
 * the matching events when the state actually changes. Queries on a nil
 * Input report nothing pressed.
 */
type Input struct {
	mutex  sync.RWMutex
	state  InputState
	events *EventBus
	logger *log.Logger
}

// NewInput creates the input state. events may be nil.
func NewInput(events *EventBus, logger *log.Logger) *Input {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Input{
		events: events,
		logger: logger.WithPrefix("input"),
	}
}

// Update copies the current states to the previous ones. Called once at
// the end of every frame.
func (in *Input) Update() {
	if in == nil {
		return
	}
	in.mutex.Lock()
	in.state.KeyboardPrevious = in.state.KeyboardCurrent
	in.state.MousePrevious = in.state.MouseCurrent
	in.mutex.Unlock()
}

// keyboard input
func (in *Input) IsKeyDown(key KeyCode) bool {
	if in == nil || key >= KEYS_MAX_KEYS {
		return false
	}
	in.mutex.RLock()
	defer in.mutex.RUnlock()
	return in.state.KeyboardCurrent.Keys[key]
}

func (in *Input) IsKeyUp(key KeyCode) bool {
	return !in.IsKeyDown(key)
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	if in == nil || key >= KEYS_MAX_KEYS {
		return false
	}
	in.mutex.RLock()
	defer in.mutex.RUnlock()
	return in.state.KeyboardPrevious.Keys[key]
}

func (in *Input) WasKeyUp(key KeyCode) bool {
	return !in.WasKeyDown(key)
}

// ProcessKey records a key transition. Repeats of the current state are
// ignored.
func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		in.logger.Debug("key out of range", "key", key)
		return
	}
	in.mutex.Lock()
	changed := in.state.KeyboardCurrent.Keys[key] != pressed
	in.state.KeyboardCurrent.Keys[key] = pressed
	in.mutex.Unlock()
	if !changed {
		return
	}

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	ctx := EventContext{}
	ctx.Data.U32[0] = uint32(key)
	in.fire(code, ctx)
}

// mouse input
func (in *Input) IsButtonDown(button Button) bool {
	if in == nil || button >= BUTTON_MAX_BUTTONS {
		return false
	}
	in.mutex.RLock()
	defer in.mutex.RUnlock()
	return in.state.MouseCurrent.Buttons[button]
}

func (in *Input) IsButtonUp(button Button) bool {
	return !in.IsButtonDown(button)
}

func (in *Input) WasButtonDown(button Button) bool {
	if in == nil || button >= BUTTON_MAX_BUTTONS {
		return false
	}
	in.mutex.RLock()
	defer in.mutex.RUnlock()
	return in.state.MousePrevious.Buttons[button]
}

func (in *Input) WasButtonUp(button Button) bool {
	return !in.WasButtonDown(button)
}

func (in *Input) MousePosition() (int32, int32) {
	if in == nil {
		return 0, 0
	}
	in.mutex.RLock()
	defer in.mutex.RUnlock()
	return int32(in.state.MouseCurrent.X), int32(in.state.MouseCurrent.Y)
}

func (in *Input) PreviousMousePosition() (int32, int32) {
	if in == nil {
		return 0, 0
	}
	in.mutex.RLock()
	defer in.mutex.RUnlock()
	return int32(in.state.MousePrevious.X), int32(in.state.MousePrevious.Y)
}

func (in *Input) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	in.mutex.Lock()
	changed := in.state.MouseCurrent.Buttons[button] != pressed
	in.state.MouseCurrent.Buttons[button] = pressed
	in.mutex.Unlock()
	if !changed {
		return
	}

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	ctx := EventContext{}
	ctx.Data.U32[0] = uint32(button)
	in.fire(code, ctx)
}

func (in *Input) ProcessMouseMove(x, y uint16) {
	in.mutex.Lock()
	changed := in.state.MouseCurrent.X != x || in.state.MouseCurrent.Y != y
	in.state.MouseCurrent.X = x
	in.state.MouseCurrent.Y = y
	in.mutex.Unlock()
	if !changed {
		return
	}

	in.logger.Debug("mouse moved", "x", x, "y", y)
	ctx := EventContext{}
	ctx.Data.U32[0] = uint32(x)
	ctx.Data.U32[1] = uint32(y)
	in.fire(EVENT_CODE_MOUSE_MOVED, ctx)
}

func (in *Input) ProcessMouseWheel(zDelta int8) {
	ctx := EventContext{}
	ctx.Data.I64[0] = int64(zDelta)
	in.fire(EVENT_CODE_MOUSE_WHEEL, ctx)
}

func (in *Input) fire(code SystemEventCode, ctx EventContext) {
	if in.events != nil {
		in.events.Fire(code, in, ctx)
	}
}
