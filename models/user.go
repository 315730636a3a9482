package models

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsMaster bool   `json:"is_master"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the response of POST /auth/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
