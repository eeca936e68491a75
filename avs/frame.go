package avs

import "fmt"

// VideoFrame wraps an AVS_VideoFrame handle with the per-plane accessors.
// The wrapper owns the handle; Release must be called when done.
type VideoFrame struct {
	handle uintptr
	api    *API

	releaseFrame func(frame uintptr)
	getPitch     func(frame uintptr, plane int32) int32
	getRowSize   func(frame uintptr, plane int32) int32
	getHeight    func(frame uintptr, plane int32) int32
	getReadPtr   func(frame uintptr, plane int32) uintptr
	getWritePtr  func(frame uintptr, plane int32) uintptr
	isWritable   func(frame uintptr) int32
	getPixelType func(frame uintptr) int32
}

// WrapVideoFrame wraps a raw AVS_VideoFrame handle obtained from a table
// slot the wrapper layer does not cover.
func WrapVideoFrame(api *API, handle uintptr) (*VideoFrame, error) {
	if api == nil {
		return nil, fmt.Errorf("AviSynth API table is nil, call GetAPI first")
	}
	if handle == 0 {
		return nil, fmt.Errorf("video frame handle is nil")
	}
	return wrapVideoFrame(api, handle), nil
}

func wrapVideoFrame(api *API, handle uintptr) *VideoFrame {
	return &VideoFrame{
		handle:       handle,
		api:          api,
		releaseFrame: bindSlot[func(frame uintptr)](api.ReleaseVideoFrame),
		getPitch:     bindSlot[func(frame uintptr, plane int32) int32](api.GetPitchP),
		getRowSize:   bindSlot[func(frame uintptr, plane int32) int32](api.GetRowSizeP),
		getHeight:    bindSlot[func(frame uintptr, plane int32) int32](api.GetHeightP),
		getReadPtr:   bindSlot[func(frame uintptr, plane int32) uintptr](api.GetReadPtrP),
		getWritePtr:  bindSlot[func(frame uintptr, plane int32) uintptr](api.GetWritePtrP),
		isWritable:   bindSlot[func(frame uintptr) int32](api.IsWritable),
		getPixelType: bindSlot[func(frame uintptr) int32](api.VideoFrameGetPixelType),
	}
}

// Handle returns the raw AVS_VideoFrame pointer.
func (f *VideoFrame) Handle() uintptr {
	return f.handle
}

// Pitch returns the byte stride of the given plane (avs_get_pitch_p).
func (f *VideoFrame) Pitch(plane Plane) (int, error) {
	if f.getPitch == nil {
		return 0, fmt.Errorf("host does not export avs_get_pitch_p")
	}
	return int(f.getPitch(f.handle, int32(plane))), nil
}

// RowSize returns the byte width of a row of the given plane
// (avs_get_row_size_p).
func (f *VideoFrame) RowSize(plane Plane) (int, error) {
	if f.getRowSize == nil {
		return 0, fmt.Errorf("host does not export avs_get_row_size_p")
	}
	return int(f.getRowSize(f.handle, int32(plane))), nil
}

// Height returns the row count of the given plane (avs_get_height_p).
func (f *VideoFrame) Height(plane Plane) (int, error) {
	if f.getHeight == nil {
		return 0, fmt.Errorf("host does not export avs_get_height_p")
	}
	return int(f.getHeight(f.handle, int32(plane))), nil
}

// ReadPtr returns a read-only pointer to the first byte of the given plane
// (avs_get_read_ptr_p).
func (f *VideoFrame) ReadPtr(plane Plane) (uintptr, error) {
	if f.getReadPtr == nil {
		return 0, fmt.Errorf("host does not export avs_get_read_ptr_p")
	}
	return f.getReadPtr(f.handle, int32(plane)), nil
}

// WritePtr returns a writable pointer to the first byte of the given plane
// (avs_get_write_ptr_p). The frame must be writable.
func (f *VideoFrame) WritePtr(plane Plane) (uintptr, error) {
	if f.getWritePtr == nil {
		return 0, fmt.Errorf("host does not export avs_get_write_ptr_p")
	}
	return f.getWritePtr(f.handle, int32(plane)), nil
}

// IsWritable reports whether the frame buffer may be written in place
// (avs_is_writable).
func (f *VideoFrame) IsWritable() (bool, error) {
	if f.isWritable == nil {
		return false, fmt.Errorf("host does not export avs_is_writable")
	}
	return f.isWritable(f.handle) != 0, nil
}

// PixelType returns the frame's pixel format
// (avs_video_frame_get_pixel_type, interface V8+).
func (f *VideoFrame) PixelType() (int, error) {
	if f.getPixelType == nil {
		return 0, fmt.Errorf("host does not export avs_video_frame_get_pixel_type")
	}
	return int(f.getPixelType(f.handle)), nil
}

// Release drops the frame handle (avs_release_video_frame). Safe to call
// more than once.
func (f *VideoFrame) Release() {
	if f.handle == 0 || f.releaseFrame == nil {
		return
	}
	f.releaseFrame(f.handle)
	f.handle = 0
}
