package server

type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"` //nolint:tagliatelle
}

type MeResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type RoleRequest struct {
	Role string `json:"role"`
}
