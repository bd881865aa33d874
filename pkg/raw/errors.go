package raw

import "errors"

// Structural errors reported by AddTriangle and Validate.
var (
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInvalidTextureSlot = errors.New("invalid texture slot")
	ErrBlendChannelCount  = errors.New("blend delta count does not match surface blend channels")
	ErrIndexWidthExceeded = errors.New("sub-model exceeds 16-bit index range")
)
