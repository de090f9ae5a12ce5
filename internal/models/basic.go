package models

// BasicResponse is a minimal status payload for utility endpoints
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
