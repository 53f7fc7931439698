package authservice

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"` //nolint:tagliatelle
	UserID      int64  `json:"user_id"`      //nolint:tagliatelle
}
