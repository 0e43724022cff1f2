package exception

import "github.com/yanun0323/errors"

// General errors
var (
	ErrNilInstance       = errors.New("nil instance")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrConnectionClose   = errors.New("connection closed")
	ErrInternal          = errors.New("internal error")
)
