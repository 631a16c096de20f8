//go:build !windows

package encode

import "github.com/windowpane-rc/core/internal/platform"

// NewMFTVP9Encoder only exists on Windows; other platforms have no
// dedicated VP9 backend wired up yet (see DESIGN.md), so callers get a
// clear error instead of a silently broken publish pipeline.
func NewMFTVP9Encoder() (Encoder, error) {
	return nil, platform.ErrNotSupported
}
