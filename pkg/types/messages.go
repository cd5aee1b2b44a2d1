package types

import "fmt"

// JSON-RPC method names served by a lead node
const (
	MethodFetchPage = "leads.fetchPage"
	MethodPing      = "leads.ping"
)

// PageRequest asks for Limit leads starting at Offset in the given order
type PageRequest struct {
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
	Sort   SortKey `json:"sort"`
}

// Key identifies the request for de-duplication
func (r PageRequest) Key() string {
	return fmt.Sprintf("%s:%d:%d", r.Sort, r.Offset, r.Limit)
}

// Page is one slice of the lead list. Total is nil while the source does
// not know how many leads exist.
type Page struct {
	Items  []Lead `json:"items"`
	Offset int    `json:"offset"`
	Total  *int   `json:"total,omitempty"`
}

// PingResult reports the state of a lead node
type PingResult struct {
	Node  string `json:"node"`
	Total *int   `json:"total,omitempty"`
}

// MessageType classifies status line messages
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageWarning
	MessageError
)

// String returns the label of a MessageType
func (m MessageType) String() string {
	switch m {
	case MessageInfo:
		return "info"
	case MessageWarning:
		return "warning"
	case MessageError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a transient status line message
type Notification struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}
