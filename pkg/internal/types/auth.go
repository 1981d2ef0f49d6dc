package types

// MeResponse 当前用户.
type MeResponse struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}
