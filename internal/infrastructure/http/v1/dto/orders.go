package dto

import (
	"time"

	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/orders"
)

// OrderItemRequest is one product line of an order payload.
type OrderItemRequest struct {
	LineID    string `json:"lineId"`
	ProductID string `json:"productId" binding:"required"`

	Size  string `json:"size"`
	Color string `json:"color"`

	Quantity  int64       `json:"quantity" binding:"required,min=1"`
	UnitPrice types.Money `json:"unitPrice"`

	EstimatedLaborHours types.Quantity `json:"estimatedLaborHours"`
}

func (r OrderItemRequest) toItem() (orders.OrderItem, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return orders.OrderItem{}, err
	}
	item := orders.OrderItem{
		ProductID:           productID,
		Size:                r.Size,
		Color:               r.Color,
		Quantity:            r.Quantity,
		UnitPrice:           r.UnitPrice,
		EstimatedLaborHours: r.EstimatedLaborHours,
	}
	if r.LineID != "" {
		lineID, err := id.Parse(r.LineID)
		if err != nil {
			return orders.OrderItem{}, err
		}
		item.LineID = lineID
	}
	return item, nil
}

// CreateOrderRequest opens a draft production order.
type CreateOrderRequest struct {
	ClientID     string             `json:"clientId" binding:"required"`
	DeliveryDate *time.Time         `json:"deliveryDate"`
	Priority     string             `json:"priority"`
	Comment      string             `json:"comment"`
	Items        []OrderItemRequest `json:"items"`
}

// ToEntity converts the request to a draft order.
func (r CreateOrderRequest) ToEntity() (*orders.Order, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, err
	}
	o := orders.NewOrder(clientID)
	o.DeliveryDate = r.DeliveryDate
	if r.Priority != "" {
		o.Priority = orders.Priority(r.Priority)
	}
	o.Comment = r.Comment
	o.Items, err = mapItems(r.Items)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateOrderRequest edits a draft order. Items replace the stored lines
// wholesale; lines keeping their lineId keep their allocations.
type UpdateOrderRequest struct {
	ClientID     string             `json:"clientId" binding:"required"`
	DeliveryDate *time.Time         `json:"deliveryDate"`
	Priority     string             `json:"priority"`
	Comment      string             `json:"comment"`
	Items        []OrderItemRequest `json:"items"`
	Version      int                `json:"version" binding:"required,min=1"`
}

// ToEntity converts the request to the draft replacement.
func (r UpdateOrderRequest) ToEntity(orderID id.ID) (*orders.Order, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, err
	}
	o := &orders.Order{ClientID: clientID}
	o.ID = orderID
	o.Version = r.Version
	o.DeliveryDate = r.DeliveryDate
	if r.Priority != "" {
		o.Priority = orders.Priority(r.Priority)
	} else {
		o.Priority = orders.PriorityMedium
	}
	o.Comment = r.Comment
	o.Items, err = mapItems(r.Items)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func mapItems(in []OrderItemRequest) ([]orders.OrderItem, error) {
	items := make([]orders.OrderItem, len(in))
	for i, req := range in {
		item, err := req.toItem()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

// ChangeStatusRequest moves a document through its state machine.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ApproveOrderRequest confirms a draft order.
type ApproveOrderRequest struct {
	Notes string `json:"notes"`
}

// AssignContractorRequest hands a confirmed order to one contractor.
type AssignContractorRequest struct {
	ContractorID string `json:"contractorId" binding:"required"`
	Notes        string `json:"notes"`
}

// CancelRequest cancels a document with a reason.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ThreadAllocationRequest reserves, frees or consumes thread for one
// order item.
type ThreadAllocationRequest struct {
	ItemLineID    string         `json:"itemLineId" binding:"required"`
	RawMaterialID string         `json:"rawMaterialId" binding:"required"`
	QuantityKg    types.Quantity `json:"quantityKg" binding:"required"`
	Notes         string         `json:"notes"`
}

// SetItemStatusRequest moves one order item.
type SetItemStatusRequest struct {
	ItemLineID string `json:"itemLineId" binding:"required"`
	Status     string `json:"status" binding:"required"`
}
