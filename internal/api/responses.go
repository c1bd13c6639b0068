package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type PaginatedResponse struct {
	Items interface{} `json:"items"`
	Page  int         `json:"page" example:"1"`
	Limit int         `json:"limit" example:"20"`
	Total int         `json:"total" example:"42"`
}
