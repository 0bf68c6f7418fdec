package models

// @Description Error payload returned by the API
type ErrorResponse struct {
	// @Description Error code, e.g. GIVEAWAY_NOT_FOUND
	Code string `json:"code" example:"GIVEAWAY_NOT_FOUND"`
	// @Description Human readable message
	Message string `json:"message" example:"Giveaway not found: 7d0c..."`
}
