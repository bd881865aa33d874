package materials

import "errors"

var (
	ErrUnnamedMaterial = errors.New("material has no name")
	ErrNoProperties    = errors.New("resolver produced no properties")
)
