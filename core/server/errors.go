package server

import "errors"

var (
	// Configuration errors
	ErrInvalidConfig = errors.New("server: invalid configuration")

	// TLS bootstrap errors
	ErrTLSInitialization = errors.New("server: tls initialization failed")
	ErrKeyLoad           = errors.New("server: private key load failed")

	// Lifecycle errors
	ErrBind            = errors.New("server: listener bind failed")
	ErrInvalidState    = errors.New("server: invalid lifecycle state")
	ErrInvalidArgument = errors.New("server: invalid argument")
)
