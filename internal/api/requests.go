package api

import (
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

type startRequest struct {
	UserID string `json:"user_id"`
	Skill  string `json:"skill"`
}

func (r startRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.UserID, ozzo.Required),
		ozzo.Field(&r.Skill, ozzo.Required, ozzo.Length(1, 100)),
	)
}

type submitRequest struct {
	SessionID string            `json:"session_id"`
	Answers   map[string]string `json:"answers"`
}

func (r submitRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.SessionID, ozzo.Required),
	)
}

type computeRequest struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

func (r computeRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.User1, ozzo.Required),
		ozzo.Field(&r.User2, ozzo.Required),
	)
}
