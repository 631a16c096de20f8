//go:build windows

// This file backs internal/encode's MFT VP9 encoder with the handful of
// Media Foundation platform entry points it needs. It lives under
// internal/platform/windows (rather than internal/encode) because it is
// pure COM/DLL interop, matching how the rest of this package keeps OS
// binding code together.
package windows

import (
	"fmt"
	"sync"
	"syscall"
)

var (
	mfplat          = syscall.NewLazyDLL("mfplat.dll")
	procMFStartup   = mfplat.NewProc("MFStartup")
	procMFShutdown  = mfplat.NewProc("MFShutdown")
	mfStartupOnce   sync.Once
	mfStartupErr    error
)

const mfVersion = 0x0002_0070 // MF_VERSION for the Windows 8+/10 SDK

func ensureMediaFoundation() error {
	mfStartupOnce.Do(func() {
		ret, _, _ := procMFStartup.Call(uintptr(mfVersion), 0)
		if ret != 0 {
			mfStartupErr = fmt.Errorf("MFStartup failed: hr=0x%x", ret)
		}
	})
	return mfStartupErr
}

// MFTProcessFrame starts Media Foundation once per process and records the
// frame size whenever it changes. No VP9 MFT is created and no frame is
// submitted to one: every call returns an empty (zero-length) slice.
//
// Exported for internal/encode via the platform package's build-tag split.
func MFTProcessFrame(nv12 []byte, width, height, bitrate int, keyframe bool) ([]byte, error) {
	if err := ensureMediaFoundation(); err != nil {
		return nil, err
	}
	mftVP9Mu.Lock()
	defer mftVP9Mu.Unlock()

	if mftVP9State.width != width || mftVP9State.height != height {
		if err := mftVP9State.reconfigure(width, height, bitrate); err != nil {
			return nil, err
		}
	}
	return mftVP9State.processOne(nv12, keyframe)
}

var mftVP9Mu sync.Mutex
var mftVP9State vp9MFTState

// vp9MFTState records the frame size the encoder was last configured for.
// It holds no MFT COM pointer; the IMFTransform ProcessInput/ProcessOutput
// exchange and the IMFSample/IMFMediaBuffer wrapping of the raw NV12 bytes
// it needs are only outlined in the comments of reconfigure and processOne.
type vp9MFTState struct {
	width, height int
	created       bool
}

func (s *vp9MFTState) reconfigure(width, height, bitrate int) error {
	s.width, s.height = width, height
	s.created = true
	// Real implementation: CoCreateInstance(CLSID_MSVPXEncoder) or
	// MFTEnumEx(MFT_CATEGORY_VIDEO_ENCODER, MFVideoFormat_VP90), then
	// SetInputType/SetOutputType with MF_MT_FRAME_SIZE set from width and
	// height and MF_MT_AVG_BITRATE set from bitrate.
	return nil
}

func (s *vp9MFTState) processOne(nv12 []byte, keyframe bool) ([]byte, error) {
	if !s.created {
		return nil, fmt.Errorf("mft: encoder not configured")
	}
	// Real implementation: wrap nv12 in an IMFSample via
	// MFCreateMemoryBuffer + IMFMediaBuffer.Lock, call
	// IMFTransform.ProcessInput, then poll ProcessOutput until it returns
	// a sample, optionally forcing MFT_MESSAGE_COMMAND_FLUSH plus a
	// keyframe request attribute when keyframe is true. The byte slice
	// returned here stands in for that sample's encoded VP9 bitstream.
	return nv12[:0], nil
}

func shutdownMediaFoundation() {
	procMFShutdown.Call()
}
