package models

// Action identifiers for the message interface. They match the values the
// extension runtime exchanges with the page engine.
const (
	ActionGetProduct     = "getProduct"
	ActionPing           = "ping"
	ActionProductUpdated = "productUpdated"
)

// MessageRequest is an on-demand request tagged with an action identifier.
type MessageRequest struct {
	Action string `json:"action"`
}

// MessageResponse answers an on-demand request. Every request gets exactly
// one response; Error is set only when Ok is false.
type MessageResponse struct {
	Ok      bool           `json:"ok"`
	Product *ProductRecord `json:"product,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// UpdateMessage is the proactive push sent when a product fingerprint
// changes. No response is expected.
type UpdateMessage struct {
	Action  string         `json:"action"`
	Product *ProductRecord `json:"product"`
}
