package handler

import (
	"time"

	"github.com/99minutos/service-portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Requests ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type lineItemRequest struct {
	ServiceID int64 `json:"service_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"   minimum:"0" maximum:"999"`
}

type quoteRequest struct {
	Items []lineItemRequest `json:"items" validate:"dive"`
}

type placeOrderRequest struct {
	Items       []lineItemRequest `json:"items"        validate:"dive"`
	RecipientID int64             `json:"recipient_id"`
}

type rateRequest struct {
	Rating int `json:"rating"`
}

// --- Responses ---

type surfaceLink struct {
	Role  string `json:"role"`
	Login string `json:"login"`
}

type homeResponse struct {
	Surfaces  []surfaceLink `json:"surfaces"`
	Role      string        `json:"role,omitempty"`
	Dashboard string        `json:"dashboard,omitempty"`
}

type loginLinks struct {
	Dashboard string `json:"dashboard"`
}

type loginResponse struct {
	Role  string     `json:"role"`
	Links loginLinks `json:"_links"`
}

type orderItemResponse struct {
	ServiceID   int64  `json:"service_id"`
	ServiceName string `json:"service_name"`
	Quantity    int    `json:"quantity"`
}

type orderLinks struct {
	Self   string `json:"self"`
	Repeat string `json:"repeat,omitempty"`
}

type orderResponse struct {
	ID                int64               `json:"id"`
	Status            string              `json:"status"`
	StatusLabel       string              `json:"status_label"`
	ApplicantUsername string              `json:"applicant_username"`
	SupplierUsername  string              `json:"supplier_username"`
	RecipientID       int64               `json:"recipient_id,omitempty"`
	RecipientUsername string              `json:"recipient_username,omitempty"`
	TimeEstimated     int                 `json:"time_estimated"`
	TotalPrice        float64             `json:"total_price"`
	Items             []orderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	Actions           []string            `json:"actions"`
	Links             orderLinks          `json:"_links"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Error  string          `json:"error,omitempty"`
}

type dashboardResponse struct {
	Role          string            `json:"role"`
	Current       orderListResponse `json:"current"`
	Past          orderListResponse `json:"past"`
	NextOrderFree *bool             `json:"next_order_free,omitempty"`
	OrderCount    *int              `json:"order_count,omitempty"`
	ProfileError  string            `json:"profile_error,omitempty"`
}

type quoteResponse struct {
	Lines           []domain.CartLine `json:"lines"`
	Subtotal        float64           `json:"subtotal"`
	Total           float64           `json:"total"`
	RemainingBudget float64           `json:"remaining_budget"`
	Free            bool              `json:"free"`
	CanIncrement    map[int64]bool    `json:"can_increment"`
}

type orderFormResponse struct {
	Services      []domain.Service   `json:"services"`
	Recipients    []domain.Recipient `json:"recipients"`
	Budget        float64            `json:"budget"`
	OrderCount    int                `json:"order_count"`
	NextOrderFree bool               `json:"next_order_free"`
	Quote         quoteResponse      `json:"quote"`
}

type placeOrderResponse struct {
	Order orderResponse `json:"order"`
	Quote quoteResponse `json:"quote"`
}

type repeatPreviewResponse struct {
	Source      orderResponse     `json:"source"`
	Items       []domain.LineItem `json:"items"`
	RecipientID int64             `json:"recipient_id"`
	Quote       quoteResponse     `json:"quote"`
}

type statusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}
