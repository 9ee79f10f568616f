package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// validTransitions defines the allowed order lifecycle transitions. A
// pending order can only move forward; cancelling needs work in progress.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

var statusLabels = map[OrderStatus]string{
	StatusPending:    "Pending",
	StatusInProgress: "In progress",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Current reports whether the order is still open (pending or in progress).
func (s OrderStatus) Current() bool {
	return s == StatusPending || s == StatusInProgress
}

// Label returns a human-readable status, falling back to the raw value.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// OrderItem is one line of an order: a service reference and its quantity.
type OrderItem struct {
	ID          int64  `json:"id,omitempty"`
	ServiceID   int64  `json:"service"`
	ServiceName string `json:"service_name"`
	Quantity    int    `json:"quantity"`
}

// Order is read from the backend; the portal never mutates it directly.
type Order struct {
	ID                int64       `json:"id"`
	ApplicantUsername string      `json:"applicant_username"`
	SupplierUsername  string      `json:"supplier_username"`
	RecipientID       int64       `json:"recipient_id,omitempty"`
	RecipientUsername string      `json:"recipient_username,omitempty"`
	Status            OrderStatus `json:"status"`
	TimeEstimated     int         `json:"time_estimated"`
	Items             []OrderItem `json:"items"`
	TotalPrice        float64     `json:"total_price"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	CompletedAt       *time.Time  `json:"completed_at"`
}

// Service is an entry of the backend's service catalog.
type Service struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Recipient is a user an applicant can address an order to.
type Recipient struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// UserProfile carries the applicant attributes the portal reads.
type UserProfile struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Budget     float64 `json:"budget"`
	OrderCount int     `json:"order_count"`
}

// LineItem is a service selection submitted with a new order.
type LineItem struct {
	ServiceID int64 `json:"service_id"`
	Quantity  int   `json:"quantity"`
}

// Action is something the current user may do with an order.
type Action string

const (
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionRepeat   Action = "repeat"
	ActionRate     Action = "rate"
)

// AllowedActions lists what role may do with an order in status s.
func AllowedActions(role Role, s OrderStatus) []Action {
	var out []Action
	if s.CanTransitionTo(StatusCancelled) {
		out = append(out, ActionCancel)
	}
	switch role {
	case RoleSupplier:
		if s.CanTransitionTo(StatusCompleted) {
			out = append(out, ActionComplete)
		}
	case RoleApplicant:
		out = append(out, ActionRepeat)
		if s == StatusCompleted {
			out = append(out, ActionRate)
		}
	}
	return out
}
