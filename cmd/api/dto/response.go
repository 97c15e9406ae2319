package dto

// ErrorResponseDTO 는 /api/content 의 공통 에러 응답 형식이다.
type ErrorResponseDTO struct {
	Error   string `json:"error" example:"Failed to query Notion database"`
	Message string `json:"message,omitempty" example:"notion QueryDatabase: status=401 code=unauthorized message=API token is invalid."`
}

// HealthResponseDTO 는 /health 응답이다.
type HealthResponseDTO struct {
	Status     string   `json:"status" example:"ok"`
	Database   string   `json:"database,omitempty" example:"Research"`
	Properties []string `json:"properties,omitempty"`
	Notion     string   `json:"notion,omitempty" example:"down"`
	Error      string   `json:"error,omitempty"`
}
