package viewer

import "slices"

// Action is something a key press asks the viewer to do.
type Action int

const (
	ActionNone Action = iota
	ActionPitchUp
	ActionPitchDown
	ActionYawLeft
	ActionYawRight
	ActionRollLeft
	ActionRollRight
	ActionSpin
	ActionReset
	ActionZoomIn
	ActionZoomOut
	ActionWireframe
	ActionDepthView
	ActionNextMode
	ActionNormalMapping
	ActionHUD
	ActionQuit
)

// Binding maps a set of key names, as understood by ultraviolet's
// MatchString, to an action.
type Binding struct {
	Keys   []string
	Action Action
	Help   string
}

// DefaultBindings lists the viewer controls in help order.
var DefaultBindings = []Binding{
	{Keys: []string{"w", "up"}, Action: ActionPitchUp, Help: "pitch up"},
	{Keys: []string{"s", "down"}, Action: ActionPitchDown, Help: "pitch down"},
	{Keys: []string{"a", "left"}, Action: ActionYawLeft, Help: "yaw left"},
	{Keys: []string{"d", "right"}, Action: ActionYawRight, Help: "yaw right"},
	{Keys: []string{"q"}, Action: ActionRollLeft, Help: "roll left"},
	{Keys: []string{"e"}, Action: ActionRollRight, Help: "roll right"},
	{Keys: []string{"space"}, Action: ActionSpin, Help: "random spin"},
	{Keys: []string{"r"}, Action: ActionReset, Help: "reset view"},
	{Keys: []string{"+", "="}, Action: ActionZoomIn, Help: "zoom in"},
	{Keys: []string{"-", "_"}, Action: ActionZoomOut, Help: "zoom out"},
	{Keys: []string{"x"}, Action: ActionWireframe, Help: "wireframe overlay"},
	{Keys: []string{"z"}, Action: ActionDepthView, Help: "depth view"},
	{Keys: []string{"m"}, Action: ActionNextMode, Help: "next shading mode"},
	{Keys: []string{"n"}, Action: ActionNormalMapping, Help: "normal mapping"},
	{Keys: []string{"?", "shift+/"}, Action: ActionHUD, Help: "toggle HUD"},
	{Keys: []string{"esc", "ctrl+c"}, Action: ActionQuit, Help: "quit"},
}

// Lookup returns the first action whose keys satisfy match. match is
// typically a key event's MatchString method.
func Lookup(bindings []Binding, match func(...string) bool) Action {
	for _, b := range bindings {
		if match(b.Keys...) {
			return b.Action
		}
	}
	return ActionNone
}

// Key returns an action lookup for a plain key name, for tests and scripted
// input.
func Key(bindings []Binding, key string) Action {
	return Lookup(bindings, func(keys ...string) bool {
		return slices.Contains(keys, key)
	})
}
