package avs

import (
	"fmt"
	"unsafe"
)

// VideoInfo mirrors the AVS_VideoInfo C struct layout.
type VideoInfo struct {
	Width                 int32
	Height                int32
	FPSNumerator          uint32
	FPSDenominator        uint32
	NumFrames             int32
	PixelType             int32
	AudioSamplesPerSecond int32
	SampleType            int32
	NumAudioSamples       int64
	NumChannels           int32
	ImageType             int32
}

// HasVideo reports whether the clip carries a video stream.
func (vi *VideoInfo) HasVideo() bool {
	return vi.Width != 0
}

// HasAudio reports whether the clip carries an audio stream.
func (vi *VideoInfo) HasAudio() bool {
	return vi.AudioSamplesPerSecond != 0
}

// Clip wraps an AVS_Clip handle. The wrapper owns the handle; Release must be
// called exactly once when done (idempotent afterwards).
type Clip struct {
	handle uintptr
	api    *API

	releaseClip  func(clip uintptr)
	clipGetError func(clip uintptr) uintptr
	getVersion   func(clip uintptr) int32
	getParity    func(clip uintptr, n int32) int32
	getFrame     func(clip uintptr, n int32) uintptr
	getVideoInfo func(clip uintptr) uintptr
}

// WrapClip wraps a raw AVS_Clip handle obtained from a table slot the
// wrapper layer does not cover (avs_take_clip, filter callbacks).
func WrapClip(api *API, handle uintptr) (*Clip, error) {
	if api == nil {
		return nil, fmt.Errorf("AviSynth API table is nil, call GetAPI first")
	}
	if handle == 0 {
		return nil, fmt.Errorf("clip handle is nil")
	}
	return &Clip{
		handle:       handle,
		api:          api,
		releaseClip:  bindSlot[func(clip uintptr)](api.ReleaseClip),
		clipGetError: bindSlot[func(clip uintptr) uintptr](api.ClipGetError),
		getVersion:   bindSlot[func(clip uintptr) int32](api.GetVersion),
		getParity:    bindSlot[func(clip uintptr, n int32) int32](api.GetParity),
		getFrame:     bindSlot[func(clip uintptr, n int32) uintptr](api.GetFrame),
		getVideoInfo: bindSlot[func(clip uintptr) uintptr](api.GetVideoInfo),
	}, nil
}

// Handle returns the raw AVS_Clip pointer.
func (c *Clip) Handle() uintptr {
	return c.handle
}

// Error returns the clip's pending error message, empty when none
// (avs_clip_get_error).
func (c *Clip) Error() (string, error) {
	if c.clipGetError == nil {
		return "", fmt.Errorf("host does not export avs_clip_get_error")
	}
	return CstringToGo(c.clipGetError(c.handle)), nil
}

// Version returns the host version the clip was produced by
// (avs_get_version).
func (c *Clip) Version() (int, error) {
	if c.getVersion == nil {
		return 0, fmt.Errorf("host does not export avs_get_version")
	}
	return int(c.getVersion(c.handle)), nil
}

// Parity reports the field parity of frame n: nonzero means top field first
// (avs_get_parity).
func (c *Clip) Parity(n int) (bool, error) {
	if c.getParity == nil {
		return false, fmt.Errorf("host does not export avs_get_parity")
	}
	return c.getParity(c.handle, int32(n)) != 0, nil
}

// VideoInfo returns a copy of the clip's AVS_VideoInfo (avs_get_video_info).
func (c *Clip) VideoInfo() (VideoInfo, error) {
	if c.getVideoInfo == nil {
		return VideoInfo{}, fmt.Errorf("host does not export avs_get_video_info")
	}
	ptr := c.getVideoInfo(c.handle)
	if ptr == 0 {
		return VideoInfo{}, fmt.Errorf("avs_get_video_info returned null")
	}
	return *videoInfoFromPtr(ptr), nil
}

// GetFrame fetches frame n (avs_get_frame). The returned frame owns its
// handle and must be released.
func (c *Clip) GetFrame(n int) (*VideoFrame, error) {
	if c.getFrame == nil {
		return nil, fmt.Errorf("host does not export avs_get_frame")
	}
	frame := c.getFrame(c.handle, int32(n))
	if frame == 0 {
		msg, _ := c.Error()
		if msg == "" {
			msg = fmt.Sprintf("frame %d unavailable", n)
		}
		return nil, fmt.Errorf("failed to get frame %d: %s", n, msg)
	}
	return wrapVideoFrame(c.api, frame), nil
}

// Release drops the clip handle (avs_release_clip). Safe to call more than
// once.
func (c *Clip) Release() {
	if c.handle == 0 || c.releaseClip == nil {
		return
	}
	c.releaseClip(c.handle)
	c.handle = 0
}

func videoInfoFromPtr(ptr uintptr) *VideoInfo {
	return (*VideoInfo)(unsafe.Pointer(ptr))
}
