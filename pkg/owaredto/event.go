package owaredto

// Inbound event types.
const (
	EventSlot  = "slot"
	EventStart = "start"
	EventUndo  = "undo"
	EventAI    = "ai"
	EventSync  = "sync"
)

// Event is one user action sent by a viewer.
// Depth is the raw text of the depth input; it is parsed by the receiver.
type Event struct {
	Type  string `json:"type"`
	Slot  *int   `json:"slot,omitempty"`
	Depth string `json:"depth,omitempty"`
}
