package domain

import "errors"

var ErrUnknownStation = errors.New("unknown station")
