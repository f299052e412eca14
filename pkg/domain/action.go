package domain

import "encoding/json"

// Action is the intent attached to an interactive node.
// It is passive data; the host decides what to do with it.
type Action struct {
	Type    string            `json:"type" yaml:"type"`
	Payload map[string]string `json:"payload" yaml:"payload"`
}

// Action types understood by the built-in handlers.
const (
	// ActionNavigate moves to another screen. Payload: PayloadScreen.
	ActionNavigate = "navigate"
	// ActionOpenURL opens an external location. Payload: PayloadURL.
	ActionOpenURL = "openURL"
)

// Payload keys used by the built-in action types.
const (
	PayloadScreen = "screen"
	PayloadURL    = "url"
)

func (a *Action) UnmarshalJSON(data []byte) error {
	var w struct {
		Type    *string            `json:"type"`
		Payload *map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == nil {
		return &MissingFieldError{Field: "action.type"}
	}
	if w.Payload == nil {
		return &MissingFieldError{Field: "action.payload"}
	}
	a.Type = *w.Type
	a.Payload = *w.Payload
	if a.Payload == nil {
		a.Payload = map[string]string{}
	}
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	type plain Action
	if a.Payload == nil {
		a.Payload = map[string]string{}
	}
	return json.Marshal(plain(a))
}

// Get returns the payload value for key, or "" when absent.
func (a *Action) Get(key string) string {
	if a == nil {
		return ""
	}
	return a.Payload[key]
}

// Clone returns a copy that shares nothing with a.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	payload := make(map[string]string, len(a.Payload))
	for k, v := range a.Payload {
		payload[k] = v
	}
	return &Action{Type: a.Type, Payload: payload}
}
