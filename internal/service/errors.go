package service

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrNotTaskOwner       = errors.New("task belongs to another user")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrIncorrectPassword  = errors.New("incorrect password")
)
