package audio

// Provider is the pull-style audio surface a backend drives: advance the
// synthesis engine by Tick, then pull one stereo frame at a time with
// Sample at the backend's own output rate.
type Provider interface {
	// Tick advances audio generation by the given number of CPU T-cycles.
	Tick(cycles int)

	// Sample pops one pending stereo frame, scaled to [-1, 1]. Returns
	// silence if generation hasn't produced a frame since the last call.
	Sample() (left, right float32)

	// Debug controls, used by introspection backends.
	ToggleChannel(channel int)
	SoloChannel(channel int)
	GetChannelStatus() (ch1, ch2, ch3, ch4 bool)
	GetChannelVolumes() (ch1, ch2, ch3, ch4 uint8)
}

var _ Provider = (*APU)(nil)
