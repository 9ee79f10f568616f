package handler

import (
	"errors"
	"strconv"

	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
)

// --- Request → Service input ---

func toLineItems(reqs []lineItemRequest) []domain.LineItem {
	items := make([]domain.LineItem, len(reqs))
	for i, r := range reqs {
		items[i] = domain.LineItem{ServiceID: r.ServiceID, Quantity: r.Quantity}
	}
	return items
}

// --- Service result → HTTP response ---

func orderPath(id int64) string {
	return "/orders/" + strconv.FormatInt(id, 10)
}

func toOrderResponse(o *domain.Order, role domain.Role) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{ServiceID: it.ServiceID, ServiceName: it.ServiceName, Quantity: it.Quantity}
	}

	allowed := domain.AllowedActions(role, o.Status)
	actions := make([]string, len(allowed))
	links := orderLinks{Self: orderPath(o.ID)}
	for i, a := range allowed {
		actions[i] = string(a)
		if a == domain.ActionRepeat {
			links.Repeat = orderPath(o.ID) + "/repeat"
		}
	}

	return orderResponse{
		ID:                o.ID,
		Status:            string(o.Status),
		StatusLabel:       o.Status.Label(),
		ApplicantUsername: o.ApplicantUsername,
		SupplierUsername:  o.SupplierUsername,
		RecipientID:       o.RecipientID,
		RecipientUsername: o.RecipientUsername,
		TimeEstimated:     o.TimeEstimated,
		TotalPrice:        o.TotalPrice,
		Items:             items,
		CreatedAt:         o.CreatedAt.UTC(),
		UpdatedAt:         o.UpdatedAt.UTC(),
		CompletedAt:       o.CompletedAt,
		Actions:           actions,
		Links:             links,
	}
}

func toOrderList(l ports.OrderList, role domain.Role) orderListResponse {
	resp := orderListResponse{Orders: make([]orderResponse, 0, len(l.Orders))}
	if l.Err != nil {
		resp.Error = listError(l.Err)
		return resp
	}
	for i := range l.Orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&l.Orders[i], role))
	}
	return resp
}

func listError(err error) string {
	if errors.Is(err, domain.ErrUnauthorized) {
		return "your session was rejected, please log in again"
	}
	return "orders could not be loaded"
}

func toDashboardResponse(d *ports.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Role:    d.Role.String(),
		Current: toOrderList(d.Current, d.Role),
		Past:    toOrderList(d.Past, d.Role),
	}
	if d.Role != domain.RoleApplicant {
		return resp
	}
	if d.ProfileMissing {
		resp.ProfileError = "profile could not be loaded"
		return resp
	}
	free, count := d.NextOrderFree, d.OrderCount
	resp.NextOrderFree = &free
	resp.OrderCount = &count
	return resp
}

func toQuoteResponse(q ports.Quote) quoteResponse {
	lines := q.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return quoteResponse{
		Lines:           lines,
		Subtotal:        q.Subtotal,
		Total:           q.Total,
		RemainingBudget: q.RemainingBudget,
		Free:            q.Free,
		CanIncrement:    q.CanIncrement,
	}
}

func toOrderFormResponse(f *ports.OrderForm) orderFormResponse {
	return orderFormResponse{
		Services:      f.Services,
		Recipients:    f.Recipients,
		Budget:        f.Budget,
		OrderCount:    f.OrderCount,
		NextOrderFree: f.NextOrderFree,
		Quote:         toQuoteResponse(f.Quote),
	}
}

func toPlaceOrderResponse(r *ports.PlaceOrderResult) placeOrderResponse {
	return placeOrderResponse{
		Order: toOrderResponse(r.Order, domain.RoleApplicant),
		Quote: toQuoteResponse(r.Quote),
	}
}

func toRepeatPreviewResponse(p *ports.RepeatPreview) repeatPreviewResponse {
	return repeatPreviewResponse{
		Source:      toOrderResponse(p.Source, domain.RoleApplicant),
		Items:       p.Items,
		RecipientID: p.Recipient,
		Quote:       toQuoteResponse(p.Quote),
	}
}
