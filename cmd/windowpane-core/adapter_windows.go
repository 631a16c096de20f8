//go:build windows

package main

import (
	"github.com/windowpane-rc/core/internal/platform"
	"github.com/windowpane-rc/core/internal/platform/windows"
)

func newAdapter() platform.Adapter {
	return windows.New()
}
