package display

import "errors"

var (
	ErrZeroViewport      = errors.New("viewport has zero area")
	ErrTextureAllocation = errors.New("failed to allocate render texture")
)
