package models

// User is created at registration and never mutated afterwards.
type User struct {
	ID           uint   `gorm:"primaryKey" bson:"_id" json:"id"`
	Username     string `gorm:"size:80;uniqueIndex;not null" bson:"username" json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string `gorm:"size:128" bson:"password_hash" json:"-"` // Never expose in JSON

	CartItems []CartItem `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" bson:"-" json:"-"`
	Orders    []Order    `gorm:"foreignKey:UserID" bson:"-" json:"-"`
}

// RegisterRequest represents the request payload for creating a new user
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=1"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}
