// Package api defines the request and response types of the HTTP surface.
package api

import "github.com/dokuchat/dokuchat/types"

// ChatRequest is the body of POST /chat. History is the caller-held
// conversation log returned by the previous response.
type ChatRequest struct {
	Query   string       `json:"query"`
	History []types.Turn `json:"history"`
}

// ClearHistoryResponse acknowledges POST /clear_history. History is
// caller-owned, so there is nothing to clear server side; the endpoint exists
// for client compatibility.
type ClearHistoryResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Documents int    `json:"documents,omitempty"`
}
