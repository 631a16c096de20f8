//go:build darwin

package main

import (
	"github.com/windowpane-rc/core/internal/platform"
	"github.com/windowpane-rc/core/internal/platform/darwin"
)

func newAdapter() platform.Adapter {
	return darwin.New()
}
