//go:build windows

package beep

// No cue playback on Windows.

func Init()      {}
func PlayStart() {}
func PlayStop()  {}
func PlayError() {}
