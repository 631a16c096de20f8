//go:build linux

package main

import (
	"github.com/windowpane-rc/core/internal/platform"
	"github.com/windowpane-rc/core/internal/platform/linux"
)

func newAdapter() platform.Adapter {
	return linux.New()
}
