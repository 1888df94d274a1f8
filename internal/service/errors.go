package service

import "errors"

var (
	ErrValidation  = errors.New("validation error")
	ErrWrongStep   = errors.New("action is not allowed in the current step")
	ErrInvalidCode = errors.New("invalid verification code")
)
