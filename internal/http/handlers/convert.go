package handlers

import (
	"order-service/internal/domain"
	"order-service/internal/service/orders"
)

func (r createOrderRequest) toInput() orders.CreateInput {
	return orders.CreateInput{
		ClientID:        r.ClientID,
		Priority:        r.Priority,
		PickupAddress:   r.PickupAddress,
		DeliveryAddress: r.DeliveryAddress,
		Recipient:       domain.Recipient{Name: r.Recipient.Name, Phone: r.Recipient.Phone, Email: r.Recipient.Email},
		Notes:           r.Notes,
	}
}

func orderToResponse(o domain.Order) orderDTO {
	return orderDTO{
		ID:              o.ID,
		ClientID:        o.ClientID,
		Status:          o.Status,
		Priority:        o.Priority,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		Recipient:       recipientDTO{Name: o.Recipient.Name, Phone: o.Recipient.Phone, Email: o.Recipient.Email},
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ordersToResponse(list []domain.Order) []orderDTO {
	out := make([]orderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

func historyToResponse(list []domain.StatusHistory) []historyDTO {
	out := make([]historyDTO, 0, len(list))
	for _, h := range list {
		out = append(out, historyDTO{
			ID:        h.ID,
			Status:    h.Status,
			ActorID:   h.ActorID,
			ActorType: h.ActorType,
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return out
}

func (r assignRequest) toModel(orderID int64) domain.AssignRequest {
	return domain.AssignRequest{
		OrderID:           orderID,
		DriverID:          r.DriverID,
		EstimatedPickup:   r.EstimatedPickup,
		EstimatedDelivery: r.EstimatedDelivery,
		Notes:             r.Notes,
	}
}

func assignmentToResponse(a domain.AssignResult) assignmentDTO {
	return assignmentDTO{
		AssignmentID: a.AssignmentID,
		OrderID:      a.OrderID,
		DriverID:     a.DriverID,
		OrderStatus:  a.OrderStatus,
		AssignedAt:   a.AssignedAt,
	}
}

func bulkToResponse(res domain.BulkAssignResult) bulkAssignDTO {
	out := bulkAssignDTO{
		Successful: make([]assignmentDTO, 0, len(res.Successful)),
		Failed:     make([]bulkFailureDTO, 0, len(res.Failed)),
	}
	for _, s := range res.Successful {
		out.Successful = append(out.Successful, assignmentToResponse(s))
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, bulkFailureDTO{OrderID: f.OrderID, DriverID: f.DriverID, Reason: f.Reason})
	}
	out.SuccessfulCount = len(out.Successful)
	out.FailedCount = len(out.Failed)
	out.Total = out.SuccessfulCount + out.FailedCount
	return out
}

func driverToResponse(d domain.Driver) driverDTO {
	return driverDTO{
		ID:              d.ID,
		UserID:          d.UserID,
		Name:            d.Name,
		Phone:           d.Phone,
		Status:          d.Status,
		VehicleType:     d.VehicleType,
		VehiclePlate:    d.VehiclePlate,
		VehicleCapacity: d.VehicleCapacity,
		Rating:          d.Rating,
		IsActive:        d.IsActive,
	}
}

func driversToResponse(list []domain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(list))
	for _, d := range list {
		out = append(out, driverToResponse(d))
	}
	return out
}

func (r createDriverRequest) toModel() *domain.Driver {
	return &domain.Driver{
		UserID:          r.UserID,
		Name:            r.Name,
		Phone:           r.Phone,
		Status:          r.Status,
		VehicleType:     r.VehicleType,
		VehiclePlate:    r.VehiclePlate,
		VehicleCapacity: r.VehicleCapacity,
	}
}

func integrationsToResponse(list []domain.IntegrationSync) []integrationDTO {
	out := make([]integrationDTO, 0, len(list))
	for _, s := range list {
		out = append(out, integrationDTO{
			System:      s.System,
			Status:      s.Status,
			Attempts:    s.Attempts,
			ExternalRef: s.ExternalRef,
			LastError:   s.LastError,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return out
}
