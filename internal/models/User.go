package models

// User is an operator account allowed to work on itineraries. There is no
// role model: a request is either authenticated or it is not.
type User struct {
	Base
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-"`
	Phone    string `json:"phone"`
}
