package api

// Request is an errand posted to a group.
type Request struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	GroupID         string `json:"groupId"`
	ItemDescription string `json:"itemDescription"`
	StorePreference string `json:"storePreference,omitempty"`
	NeededBy        int64  `json:"neededBy"`
	PickupNotes     string `json:"pickupNotes,omitempty"`
	// Status is one of open, claimed, fulfilled, expired.
	Status      string `json:"status"`
	ClaimedBy   string `json:"claimedBy,omitempty"`
	ClaimedAt   int64  `json:"claimedAt,omitempty"`
	FulfilledAt int64  `json:"fulfilledAt,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

type CreateRequestRequest struct {
	GroupID         string `json:"groupId"`
	ItemDescription string `json:"itemDescription"`
	StorePreference string `json:"storePreference"`
	NeededBy        int64  `json:"neededBy"`
	PickupNotes     string `json:"pickupNotes"`
}

type CreateRequestResponse struct {
	Request *Request `json:"request"`
}

type UpdateRequestRequest struct {
	RequestID       string `json:"requestId"`
	ItemDescription string `json:"itemDescription"`
	StorePreference string `json:"storePreference"`
	NeededBy        int64  `json:"neededBy"`
	PickupNotes     string `json:"pickupNotes"`
}

type UpdateRequestResponse struct {
	Request *Request `json:"request"`
}

type GetRequestRequest struct {
	RequestID string `json:"requestId"`
}

type GetRequestResponse struct {
	Request *Request `json:"request"`
}

type ListGroupRequestsRequest struct {
	GroupID string `json:"groupId"`
}

type ListGroupRequestsResponse struct {
	Requests []*Request `json:"requests"`
}

type ListMyRequestsRequest struct{}

type ListMyRequestsResponse struct {
	Requests []*Request `json:"requests"`
}

type ListMyClaimsRequest struct{}

type ListMyClaimsResponse struct {
	Requests []*Request `json:"requests"`
}

type ClaimRequestRequest struct {
	RequestID string `json:"requestId"`
}

type ClaimRequestResponse struct {
	Request *Request `json:"request"`
}

type UnclaimRequestRequest struct {
	RequestID string `json:"requestId"`
}

type UnclaimRequestResponse struct {
	Request *Request `json:"request"`
}

type FulfillRequestRequest struct {
	RequestID string `json:"requestId"`
}

type FulfillRequestResponse struct {
	Request *Request `json:"request"`
}

type DeleteRequestRequest struct {
	RequestID string `json:"requestId"`
}

// DeleteRequestResponse carries the request as it was before removal.
type DeleteRequestResponse struct {
	Request *Request `json:"request"`
}
