package main

type ErrorResponse struct {
	Request string `json:"request"`
	Error   any    `json:"error"`
}

func NewErrorResponse(request string, error any) ErrorResponse {
	return ErrorResponse{
		Request: request,
		Error:   error,
	}
}

type HealthResponse struct {
	Status string `json:"status"`
	Zones  int    `json:"zones"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
	Graphs int    `json:"graphs"`
}
