package core

import (
	"errors"
)

var (
	// ErrSwapchainOutOfDate signals that the presentation surface no
	// longer matches the swapchain and a full recreation is required.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")

	// ErrFrameSkipped signals that the current loop iteration produced
	// no frame (recreation or a minimized window consumed it). Not fatal.
	ErrFrameSkipped = errors.New("frame skipped")

	// ErrNoSuitableMemoryType signals that no device memory type matched
	// a requested type mask and property set.
	ErrNoSuitableMemoryType = errors.New("no suitable memory type")
)
