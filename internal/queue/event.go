// Package queue defines message payloads exchanged over the message broker.
package queue

// ListActivityEvent is published after every successful shopping list
// mutation. It carries enough for downstream consumers to log or feed
// analytics without querying the primary database. Index is -1 for
// operations that are not index-addressed.
type ListActivityEvent struct {
	UserID     string `json:"user_id"`
	Action     string `json:"action"`
	Item       string `json:"item,omitempty"`
	Index      int    `json:"index"`
	ItemsCount int    `json:"items_count"`
	OccurredAt string `json:"occurred_at"`
}

// Actions carried by ListActivityEvent.
const (
	ActionAddItem        = "add_item"
	ActionUpdateQuantity = "update_quantity"
	ActionToggleChecked  = "toggle_checked"
	ActionDeleteItem     = "delete_item"
	ActionClearList      = "clear_list"
)
