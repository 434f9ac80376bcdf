package model

type ErrorResponse struct {
	Error string `json:"error"`
	Data  any    `json:"data,omitempty"`
}

type OrderErrorData struct {
	Kind         string `json:"kind"`
	TicketTypeID string `json:"ticket_type_id,omitempty"`
	Retryable    bool   `json:"retryable"`
}

type TransitionErrorData struct {
	Entity string `json:"entity"`
	State  string `json:"state"`
	Action string `json:"action"`
}
