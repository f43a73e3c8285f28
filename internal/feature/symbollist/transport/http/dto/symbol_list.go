// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem represents a symbol in the API response.
type SymbolItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SymbolListResponse is the body of GET /api/symbols.
type SymbolListResponse struct {
	Status  string       `json:"status"`
	Count   int          `json:"count"`
	Symbols []SymbolItem `json:"symbols"`
}
