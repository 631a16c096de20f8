//go:build !windows && !darwin && !linux

package main

import (
	"github.com/windowpane-rc/core/internal/platform"
	"github.com/windowpane-rc/core/internal/platform/other"
)

func newAdapter() platform.Adapter {
	return other.New()
}
