package trade

// ShippingStatus tracks fulfilment of a sale independently of stock and money
type ShippingStatus int

const (
	ShippingStatusReceived  ShippingStatus = 1
	ShippingStatusPreparing ShippingStatus = 2
	ShippingStatusShipped   ShippingStatus = 3
	ShippingStatusDelivered ShippingStatus = 4
	ShippingStatusCancelled ShippingStatus = 5
	ShippingStatusReturned  ShippingStatus = 6
)

// IsValid checks if the status is a valid ShippingStatus
func (s ShippingStatus) IsValid() bool {
	return s >= ShippingStatusReceived && s <= ShippingStatusReturned
}

// String returns the string representation of ShippingStatus
func (s ShippingStatus) String() string {
	switch s {
	case ShippingStatusReceived:
		return "RECEIVED"
	case ShippingStatusPreparing:
		return "PREPARING"
	case ShippingStatusShipped:
		return "SHIPPED"
	case ShippingStatusDelivered:
		return "DELIVERED"
	case ShippingStatusCancelled:
		return "CANCELLED"
	case ShippingStatusReturned:
		return "RETURNED"
	default:
		return "UNKNOWN"
	}
}

// CanTransitionTo checks if the status can move to target
func (s ShippingStatus) CanTransitionTo(target ShippingStatus) bool {
	switch s {
	case ShippingStatusReceived:
		return target == ShippingStatusPreparing || target == ShippingStatusCancelled
	case ShippingStatusPreparing:
		return target == ShippingStatusShipped || target == ShippingStatusCancelled
	case ShippingStatusShipped:
		return target == ShippingStatusDelivered || target == ShippingStatusCancelled || target == ShippingStatusReturned
	case ShippingStatusDelivered:
		return target == ShippingStatusReturned
	case ShippingStatusCancelled, ShippingStatusReturned:
		return false // Terminal states
	}
	return false
}
