package service

import "errors"

var (
	ErrUnauthorized    = errors.New("invalid owner token")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrJobNotFound     = errors.New("publish attempt not found")
	ErrJobFinished     = errors.New("publish attempt already finished")
)
