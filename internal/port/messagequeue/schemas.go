package messagequeue

// BookingEventPayload is the schema for bookings.* messages.
type BookingEventPayload struct {
	TenantID   string `json:"tenant_id"`
	BookingID  string `json:"booking_id"`
	ContractID string `json:"contract_id,omitempty"`
	SpaceID    string `json:"space_id,omitempty"`
	EventDate  string `json:"event_date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	Warnings   int    `json:"warnings,omitempty"`
}

// ContractEventPayload is the schema for contracts.* messages.
type ContractEventPayload struct {
	TenantID   string `json:"tenant_id"`
	ContractID string `json:"contract_id"`
	CustomerID string `json:"customer_id"`
	Members    int    `json:"members"`
	TotalCents int64  `json:"total_cents"`
	Warnings   int    `json:"warnings,omitempty"`
}
