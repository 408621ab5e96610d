package model

type User struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	PasswordHash string `json:"-"`
	Ctime        int64  `json:"ctime"`
}
