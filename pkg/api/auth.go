package api

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	GeneralArea string `json:"generalArea,omitempty"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest replaces the caller's editable profile fields.
type UpdateProfileRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	GeneralArea string `json:"generalArea"`
}

type UpdateProfileResponse struct {
	User *User `json:"user"`
}
