// Package audio implements the DMG's Audio Processing Unit: four channels
// (CH1 square+sweep, CH2 square, CH3 wave, CH4 noise) mixed to stereo and
// exposed to the rest of the emulator both as a memory-mapped device
// ($FF10-$FF3F) and as a pull-style float32 sample source.
package audio

import (
	"log/slog"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/bit"
	"github.com/rgcarr/dmgcore/mem"
)

// APU is the Audio Processing Unit of a DMG Game Boy. It's basically a
// bunch of counters and timers that tick at certain frequency steps, whose
// outputs get mixed down to stereo.
type APU struct {
	enabled           bool
	ch                [4]Channel
	vinLeft, vinRight bool  // from NR50
	volLeft, volRight uint8 // volume for left/right, values 0 to 7
	vinSample         int16 // external VIN input sample (Pan Docs: Audio mixing - VIN)

	// accumulators for mixing samples
	mixLeftAcc     int64
	mixRightAcc    int64
	mixAccumCycles int

	// pending is a small queue of stereo frames produced by Tick and
	// drained one at a time by Sample.
	pending        []stereoSample
	sampleCycleAcc float64
	cyclesPerFrame float64
	hostSampleRate int

	// frame sequencer state
	step   int // current step (0-7)
	cycles int // cycles since last frame sequencer tick

	// raw memory + registers
	NR10, NR11, NR12, NR13, NR14 uint8 // Channel 1
	NR21, NR22, NR23, NR24       uint8 // Channel 2
	NR30, NR31, NR32, NR33, NR34 uint8 // Channel 3
	NR41, NR42, NR43, NR44       uint8 // Channel 4
	NR50, NR51, NR52             uint8 // Global controls
	waveRAM                      [waveRAMSize]uint8

	logger *slog.Logger
}

type stereoSample struct {
	left, right float32
}

// Channel represents one of the four APU channels.
//
//   - duty: for square waves (ch1-2), which pattern/shape to use (0-3)
//   - sweep: changes frequency over time (only for ch1)
//   - envelope: changes volume over time (for ch1-2, ch4)
//   - period: how often to make a cycle, frequency = 2048 - period (for ch1-3)
//   - DAC: Digital-to-Analog Converter, if off the channel is silent (for ch1-3)
//   - LFSR: Linear Feedback Shift Register, a pseudo-random bit generator (for ch4)
type Channel struct {
	enabled bool

	// panning: which side is this channel heard on. If neither, it's
	// effectively muted and skipped during mixing.
	left, right bool

	duty   uint8  // for square waves, values 0 to 3
	timer  uint8  // initial length timer value, 6 bits for ch1-2-4, 8 bits for ch3
	length uint16 // current length counter, can hold up to 256 for CH3
	volume uint8  // initial volume, 4 bits -> values 0 to 15

	// Frequency sweep (CH1 only)
	sweepPeriod  uint8  // "pace" per pandocs (NR10 6-4), 3 bits -> values 0 to 7
	sweepDown    bool   // sweep direction, 0=up, 1=down
	sweepStep    uint8  // sweep step, 3 bits -> values 0 to 7
	sweepEnabled bool   // true if sweep is enabled (either period or step non-zero)
	sweepTimer   uint8  // timer for sweep calculations
	shadowFreq   uint16 // shadow frequency for sweep calculations
	sweepNegUsed bool   // flag for subtract-mode calculations (Pan Docs: Audio details - sweep negate bug)

	envelopePace    uint8 // NRx2 bits 2-0, 3 bits -> values 0 to 7
	envelopeUp      bool  // NRx2 bit 3, 0=down, 1=up
	envelopeCounter uint8
	envelopeLatched bool

	period       uint16 // frequency period, 11 bits -> values 0 to 2047
	trigger      bool   // trigger flag, write-only, when written it "triggers" the channel
	lengthEnable bool   // length enable flag
	freqTimer    int
	dutyStep     uint8
	waveIndex    uint8
	waveSample   uint8
	noiseTimer   int

	// CH4 Noise channel specific
	lfsr        uint16 // 15-bit LFSR for noise generation
	use7bitLFSR bool   // from NR43 bit 3, when set use 7-bit LFSR, otherwise 15-bit
	shift       uint8  // from NR43, 4 bits -> values 0 to 15
	divider     uint8  // from NR43, 3 bits -> values 0 to 7

	dacEnabled bool // DAC enable flag, derived from the volume/envelope (or NR30 for CH3)

	muted bool // debug mute, separate from enabled/dacEnabled
}

// calculateSweepFrequency performs the sweep frequency calculation.
func (ch *Channel) calculateSweepFrequency() (newFreq uint16, overflow bool) {
	if ch.sweepStep == 0 {
		return ch.shadowFreq, false
	}
	return ch.checkSweepOverflow()
}

// checkSweepOverflow computes the sweep target regardless of sweepStep
// being zero. Used for the periodic overflow check that occurs even when
// shift==0. It does NOT mutate channel state.
func (ch *Channel) checkSweepOverflow() (newFreq uint16, overflow bool) {
	freqChange := ch.shadowFreq >> ch.sweepStep
	if ch.sweepDown {
		if freqChange > ch.shadowFreq {
			newFreq = 0
		} else {
			newFreq = ch.shadowFreq - freqChange
		}
	} else {
		newFreq = ch.shadowFreq + freqChange
	}
	return newFreq, newFreq > 2047
}

// New returns an APU producing samples at hostSampleRate Hz (e.g. 44100).
func New(hostSampleRate int, logger *slog.Logger) *APU {
	if logger == nil {
		logger = slog.Default()
	}
	if hostSampleRate <= 0 {
		hostSampleRate = 44100
	}
	a := &APU{hostSampleRate: hostSampleRate, logger: logger}
	a.cyclesPerFrame = float64(cpuFrequency) / float64(hostSampleRate)
	return a
}

// cpuFrequency is the DMG's master clock rate in Hz; kept local to avoid a
// dependency on the emulator's board/timing wiring from this package.
const cpuFrequency = 4194304

// Reset restores power-on state in place, keeping the configured host
// sample rate and logger.
func (a *APU) Reset() {
	hostSampleRate, cyclesPerFrame, logger := a.hostSampleRate, a.cyclesPerFrame, a.logger
	*a = APU{}
	a.hostSampleRate, a.cyclesPerFrame, a.logger = hostSampleRate, cyclesPerFrame, logger
}

// Tick advances the APU by CPU T-cycles.
func (a *APU) Tick(cycles int) {
	if !a.enabled {
		return
	}

	a.tickGenerators(cycles)

	a.cycles += cycles

	// Every 512Hz, advance the frame sequencer (length/sweep/envelope).
	for a.cycles >= cyclesPerStep {
		a.cycles -= cyclesPerStep
		a.tickSequence()
	}
}

func (a *APU) tickGenerators(cycles int) {
	if cycles <= 0 {
		return
	}

	var leftLevel, rightLevel int64
	for i := range 4 {
		ch := &a.ch[i]
		if !ch.enabled || !ch.dacEnabled || ch.muted {
			continue
		}

		var level int64
		switch i {
		case 0, 1:
			level = a.stepSquare(ch, cycles)
		case 2:
			level = a.stepWave(ch, cycles)
		case 3:
			level = a.stepNoise(ch, cycles)
		}
		if level == 0 {
			continue
		}

		if ch.left {
			leftLevel += level
		}
		if ch.right {
			rightLevel += level
		}
	}
	// VIN pin is optional; it feeds each mixer lane directly.
	if a.vinLeft {
		leftLevel += int64(a.vinSample)
	}
	if a.vinRight {
		rightLevel += int64(a.vinSample)
	}

	a.mixLeftAcc += leftLevel * int64(cycles)
	a.mixRightAcc += rightLevel * int64(cycles)
	a.mixAccumCycles += cycles
	a.flushMix(cycles)
}

func (a *APU) flushMix(cycles int) {
	if a.hostSampleRate <= 0 || a.cyclesPerFrame == 0 {
		return
	}

	a.sampleCycleAcc += float64(cycles)
	if a.sampleCycleAcc < a.cyclesPerFrame {
		return
	}
	a.sampleCycleAcc -= a.cyclesPerFrame

	left, right := a.exportMixedSample()
	a.pending = append(a.pending, stereoSample{left, right})
}

// exportMixedSample averages the accumulated per-channel levels since the
// last call, applies NR50 master volume, and scales to [-1, 1].
func (a *APU) exportMixedSample() (float32, float32) {
	if a.mixAccumCycles == 0 {
		return 0, 0
	}

	leftAvg := float64(a.mixLeftAcc) / float64(a.mixAccumCycles)
	rightAvg := float64(a.mixRightAcc) / float64(a.mixAccumCycles)

	left, right := scaleToFloat(leftAvg, a.volLeft), scaleToFloat(rightAvg, a.volRight)

	a.mixLeftAcc = 0
	a.mixRightAcc = 0
	a.mixAccumCycles = 0

	return left, right
}

// Sample pops the oldest pending stereo frame, or returns silence if
// generation hasn't caught up since the last call.
func (a *APU) Sample() (left, right float32) {
	if len(a.pending) == 0 {
		return 0, 0
	}
	s := a.pending[0]
	a.pending = a.pending[1:]
	return s.left, s.right
}

func (a *APU) stepSquare(ch *Channel, cycles int) int64 {
	period := a.squarePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.dutyStep = (ch.dutyStep + 1) & 0x7
	}

	pattern := dutyPatterns[ch.duty&0x3][ch.dutyStep]
	if ch.volume == 0 {
		return 0
	}
	level := int64(ch.volume)
	if pattern == 0 {
		// Per Pan Docs: if the duty cycle is 0, the output is 0, mirrored
		// to keep the signal DC-free.
		return -level
	}
	return level
}

func (a *APU) stepWave(ch *Channel, cycles int) int64 {
	period := a.wavePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.waveIndex = (ch.waveIndex + 1) & 0x1F
	}

	sample := int64(a.readWaveSample(ch.waveIndex)) - 8
	switch ch.volume & 0b11 {
	case 0:
		return 0
	case 1:
		return sample
	case 2:
		return sample / 2
	case 3:
		return sample / 4
	default:
		return sample
	}
}

func (a *APU) stepNoise(ch *Channel, cycles int) int64 {
	period := a.noisePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.lfsr == 0 {
		ch.lfsr = 0x7FFF
	}
	if ch.noiseTimer <= 0 {
		ch.noiseTimer = period
	}

	ch.noiseTimer -= cycles
	for ch.noiseTimer <= 0 {
		ch.noiseTimer += period
		feedback := (ch.lfsr & 1) ^ ((ch.lfsr >> 1) & 1)
		ch.lfsr = (ch.lfsr >> 1) | (feedback << 14)
		if ch.use7bitLFSR {
			ch.lfsr = (ch.lfsr &^ (1 << 6)) | (feedback << 6)
		}
	}

	if ch.volume == 0 {
		return 0
	}
	level := int64(ch.volume)
	if bit.IsSet(0, uint8(ch.lfsr)) {
		// Per Pan Docs: noise output bit is inverted before it hits the DAC.
		return -level
	}
	return level
}

func (a *APU) squarePeriodCycles(ch *Channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 4
}

func (a *APU) wavePeriodCycles(ch *Channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 2
}

var noiseDividers = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

func (a *APU) noisePeriodCycles(ch *Channel) int {
	div := noiseDividers[ch.divider&0x7]
	period := div << ch.shift
	if period <= 0 {
		return 0
	}
	return period
}

func (a *APU) readWaveSample(index uint8) uint8 {
	byteIdx := index >> 1
	value := a.waveRAM[byteIdx]
	a.ch[2].waveSample = value
	if index&1 == 0 {
		return value >> 4
	}
	return value & 0x0F
}

// waveRAMLocked reports whether wave RAM is currently routed to CH3's
// playback buffer instead of being directly addressable — per Pan Docs,
// true while CH3 is enabled with its DAC on.
func (a *APU) waveRAMLocked() bool {
	return a.enabled && a.ch[2].enabled && a.ch[2].dacEnabled
}

var dutyPatterns = [4][8]int64{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

// scaleToFloat applies NR50 master volume (0-7, actual gain = (vol+1)/8)
// and normalizes the averaged channel level to [-1, 1].
func scaleToFloat(avg float64, masterVol uint8) float32 {
	gain := float64(masterVol+1) / 8.0
	const peak = 15.0 // max per-channel level magnitude
	value := avg * gain / peak
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}
	return float32(value)
}

// tickSequence advances the sequencer by one step. It ticks every 512Hz
// (8192 T-cycles); which of length/sweep/envelope fire depends on the step:
//
//	Step | Length (256Hz) | Sweep (128Hz) | Envelope (64Hz)
//	------------------------------------------------------
//	0    | yes            | -             | -
//	1    | -              | -             | -
//	2    | yes            | yes           | -
//	3    | -              | -             | -
//	4    | yes            | -             | -
//	5    | -              | -             | -
//	6    | yes            | yes           | -
//	7    | -              | -             | yes
func (a *APU) tickSequence() {
	switch a.step {
	case 0:
		a.tickLength()
	case 2:
		a.tickLength()
		a.tickSweep()
	case 4:
		a.tickLength()
	case 6:
		a.tickLength()
		a.tickSweep()
	case 7:
		a.tickEnvelope()
	}

	a.step++
	a.step %= 8
}

func (a *APU) tickLength() {
	// CH1/CH2/CH4: length = (64 - NRx1), counts down from 64 to 0.
	// CH3: length = (256 - NR31), counts down from 256 to 0.
	for i := range 4 {
		if a.ch[i].lengthEnable && a.ch[i].length > 0 {
			a.ch[i].length--
			if a.ch[i].length == 0 {
				a.ch[i].enabled = false
			}
		}
	}
}

func (a *APU) tickSweep() {
	ch := &a.ch[0] // sweep only applies to CH1

	if !ch.sweepEnabled {
		return
	}

	ch.sweepTimer--
	if ch.sweepTimer > 0 {
		return
	}

	ch.sweepTimer = ch.sweepPeriod
	if ch.sweepTimer == 0 {
		ch.sweepTimer = 8
	}

	// Per dmg_sound tests: if period==0, no calculation happens on ticks.
	if ch.sweepPeriod == 0 {
		return
	}

	newFrequency, overflow := ch.checkSweepOverflow()
	if overflow {
		ch.enabled = false
		return
	}
	// Mark negate-used on any subtract-mode calculation tick, even if shift==0.
	if ch.sweepDown {
		ch.sweepNegUsed = true
	}
	if ch.sweepStep == 0 {
		return
	}
	ch.shadowFreq = newFrequency
	ch.period = newFrequency
	a.NR14 = (a.NR14 & 0b11111000) | uint8((newFrequency>>8)&0b111)
	a.NR13 = uint8(newFrequency)

	// Do the calculation again for overflow check only (documented quirk,
	// Pan Docs: "sweep negate bug").
	if _, overflow := ch.checkSweepOverflow(); overflow {
		ch.enabled = false
	}
}

func (a *APU) tickEnvelope() {
	for _, idx := range []int{0, 1, 3} {
		ch := &a.ch[idx]
		// Per Pan Docs: envelope timer keeps running even while the
		// channel is silent, so we don't gate on ch.enabled here.
		if !ch.dacEnabled {
			continue
		}
		if ch.envelopeLatched {
			continue
		}

		pace := ch.envelopePace
		if pace == 0 {
			pace = 8
		}

		if ch.envelopeCounter == 0 {
			ch.envelopeCounter = pace
		}
		ch.envelopeCounter--
		if ch.envelopeCounter > 0 {
			continue
		}

		if ch.envelopeUp {
			if ch.volume < 15 {
				ch.volume++
				ch.envelopeCounter = pace
			} else {
				ch.envelopeLatched = true
				ch.envelopeCounter = 0
			}
		} else {
			if ch.volume > 0 {
				ch.volume--
				ch.envelopeCounter = pace
			} else {
				ch.envelopeLatched = true
				ch.envelopeCounter = 0
			}
		}
	}
}

// Read implements mem.Device for the $FF10-$FF3F audio register block.
// Write-only and unused bits read back as 1.
func (a *APU) Read(address uint16) (uint8, error) {
	switch address {
	case addr.NR10:
		return a.NR10 | 0b1000_0000, nil
	case addr.NR11:
		return a.NR11 | 0b0011_1111, nil
	case addr.NR12:
		return a.NR12, nil
	case addr.NR13:
		return 0xFF, nil // write-only
	case addr.NR14:
		return a.NR14 | 0b1011_1111, nil
	case addr.NR21:
		return a.NR21 | 0b0011_1111, nil
	case addr.NR22:
		return a.NR22, nil
	case addr.NR23:
		return 0xFF, nil // write-only
	case addr.NR24:
		return a.NR24 | 0b1011_1111, nil
	case addr.NR30:
		return a.NR30 | 0b0111_1111, nil
	case addr.NR31:
		return 0xFF, nil // write-only
	case addr.NR32:
		return a.NR32 | 0b1001_1111, nil
	case addr.NR33:
		return 0xFF, nil // write-only
	case addr.NR34:
		return a.NR34 | 0b1011_1111, nil
	case addr.NR41:
		return 0xFF, nil // write-only
	case addr.NR42:
		return a.NR42, nil
	case addr.NR43:
		return a.NR43, nil
	case addr.NR44:
		return a.NR44 | 0b1011_1111, nil
	case addr.NR50:
		return a.NR50, nil
	case addr.NR51:
		return a.NR51, nil
	case addr.NR52:
		status := uint8(0b0111_0000)
		if a.enabled {
			status = bit.Set(7, status)
		}
		for i := range 4 {
			if a.ch[i].enabled {
				status = bit.Set(uint8(i), status)
			}
		}
		return status, nil
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if a.waveRAMLocked() {
			// Per Pan Docs: while CH3 is active, the CPU sees the
			// current sample buffer instead of RAM.
			return a.ch[2].waveSample, nil
		}
		return a.waveRAM[address-addr.WaveRAMStart], nil
	}
	return 0, mem.NewFault(mem.Range, address)
}

// Write implements mem.Device, then re-derives the internal channel state
// from the raw register bytes via mapRegistersToState.
func (a *APU) Write(address uint16, value uint8) error {
	isInWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isInWaveRAM {
		// Ignore writes to audio regs except NR52/wave RAM while powered off.
		return nil
	}

	switch address {
	case addr.NR10:
		a.NR10 = value
	case addr.NR11:
		a.NR11 = value
		a.ch[0].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR12:
		a.NR12 = value
		ch := &a.ch[0]
		pace := bit.ExtractBits(value, 2, 0)
		if pace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = pace
		}
		ch.envelopeLatched = false
	case addr.NR13:
		a.NR13 = value
	case addr.NR14:
		a.NR14 = value
	case addr.NR21:
		a.NR21 = value
		a.ch[1].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR22:
		a.NR22 = value
		ch := &a.ch[1]
		pace := bit.ExtractBits(value, 2, 0)
		if pace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = pace
		}
		ch.envelopeLatched = false
	case addr.NR23:
		a.NR23 = value
	case addr.NR24:
		a.NR24 = value
	case addr.NR30:
		a.NR30 = value
	case addr.NR31:
		a.NR31 = value
		a.ch[2].length = 256 - uint16(value)
	case addr.NR32:
		a.NR32 = value
	case addr.NR33:
		a.NR33 = value
	case addr.NR34:
		a.NR34 = value
	case addr.NR41:
		a.NR41 = value
		a.ch[3].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR42:
		a.NR42 = value
		ch := &a.ch[3]
		pace := bit.ExtractBits(value, 2, 0)
		if pace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = pace
		}
		ch.envelopeLatched = false
	case addr.NR43:
		a.NR43 = value
	case addr.NR44:
		a.NR44 = value
	case addr.NR50:
		a.NR50 = value
	case addr.NR51:
		a.NR51 = value
	case addr.NR52:
		a.NR52 = value
	default:
		if !isInWaveRAM {
			return mem.NewFault(mem.Range, address)
		}
	}

	if isInWaveRAM {
		offset := address - addr.WaveRAMStart
		if a.waveRAMLocked() {
			// Per Pan Docs: writes during playback update the
			// currently buffered sample instead of RAM.
			idx := a.ch[2].waveIndex >> 1
			a.waveRAM[idx] = value
			a.ch[2].waveSample = value
		} else {
			a.waveRAM[offset] = value
		}
	}

	a.mapRegistersToState()
	return nil
}

// handleLengthEnableTransition centralizes the oddities around enabling
// length and triggering channels:
//   - enabling length in the second half of a sequencer period clocks once
//   - triggers reload length from zero before that clock
//   - a trigger after a clocked-to-zero reloads before the forced extra clock
//   - the extra clock also occurs while already enabled when a trigger
//     reloads from zero (the "force" path)
//
// Reference: https://gbdev.io/pandocs/Audio_details.html#obscure-behavior.
func (a *APU) handleLengthEnableTransition(prevEnabled bool, lengthBefore uint16, triggered bool, maxLength uint16, chIdx int) {
	ch := &a.ch[chIdx]
	lengthWasZero := lengthBefore == 0
	clockOnEnable := !prevEnabled && ch.lengthEnable && a.step%2 == 1 && lengthBefore > 0

	if triggered && (lengthWasZero || (clockOnEnable && lengthBefore == 1)) {
		ch.length = maxLength
	}

	if !ch.lengthEnable {
		return
	}

	forceClock := lengthWasZero && triggered && ch.length > 0
	if !forceClock && prevEnabled {
		return
	}

	if a.step%2 == 1 && ch.length > 0 {
		ch.length--
		if ch.length == 0 {
			ch.enabled = false
		}
	}
}

func (a *APU) mapRegistersToState() {
	// NR52 - Master Audio Control
	a.enabled = bit.IsSet(7, a.NR52)

	if !a.enabled {
		a.NR10, a.NR11, a.NR12, a.NR13, a.NR14 = 0, 0, 0, 0, 0
		a.NR21, a.NR22, a.NR23, a.NR24 = 0, 0, 0, 0
		a.NR30, a.NR31, a.NR32, a.NR33, a.NR34 = 0, 0, 0, 0, 0
		a.NR41, a.NR42, a.NR43, a.NR44 = 0, 0, 0, 0
		a.NR50, a.NR51 = 0, 0
		for i := range a.ch {
			a.ch[i].enabled = false
		}
	}

	// NR51 - Sound Panning
	for i := range 4 {
		a.ch[i].right = bit.IsSet(uint8(i), a.NR51)
		a.ch[i].left = bit.IsSet(uint8(i+4), a.NR51)
	}

	// NR50 - Master Volume & VIN Panning
	a.vinLeft, a.vinRight = bit.IsSet(7, a.NR50), bit.IsSet(3, a.NR50)
	a.volLeft, a.volRight = bit.ExtractBits(a.NR50, 6, 4), bit.ExtractBits(a.NR50, 2, 0)

	// Channel 1 (Square + Sweep) - NR10-NR14
	prevSweepDown := a.ch[0].sweepDown
	a.ch[0].sweepPeriod = bit.ExtractBits(a.NR10, 6, 4)
	a.ch[0].sweepDown = bit.IsSet(3, a.NR10)
	a.ch[0].sweepStep = bit.ExtractBits(a.NR10, 2, 0)
	if !a.ch[0].sweepDown && prevSweepDown && a.ch[0].sweepNegUsed && (a.ch[0].sweepPeriod > 0 || a.ch[0].sweepStep > 0) {
		// Per Pan Docs: switching sweep from subtract to add after a
		// subtract calc disables CH1 immediately.
		a.ch[0].enabled = false
	}

	a.ch[0].duty = bit.ExtractBits(a.NR11, 7, 6)
	a.ch[0].timer = bit.ExtractBits(a.NR11, 5, 0)

	a.ch[0].volume = bit.ExtractBits(a.NR12, 7, 4)
	a.ch[0].envelopeUp = bit.IsSet(3, a.NR12)
	a.ch[0].envelopePace = bit.ExtractBits(a.NR12, 2, 0)
	a.ch[0].dacEnabled = (a.ch[0].volume > 0) || a.ch[0].envelopeUp

	a.ch[0].period = bit.Combine(a.NR14&0b111, a.NR13)

	prevLenEnable := a.ch[0].lengthEnable
	lengthBefore := a.ch[0].length
	triggered := bit.IsSet(7, a.NR14)
	a.ch[0].lengthEnable = bit.IsSet(6, a.NR14)
	a.ch[0].trigger = triggered
	if a.ch[0].trigger {
		if a.ch[0].dacEnabled {
			a.ch[0].enabled = true
		}
		a.ch[0].envelopeLatched = false
		if a.ch[0].envelopePace == 0 {
			a.ch[0].envelopeCounter = 8
		} else {
			a.ch[0].envelopeCounter = a.ch[0].envelopePace
		}
		a.ch[0].dutyStep = 0
		a.ch[0].freqTimer = a.squarePeriodCycles(&a.ch[0])
		a.ch[0].sweepEnabled = a.ch[0].sweepPeriod > 0 || a.ch[0].sweepStep > 0
		a.ch[0].sweepTimer = a.ch[0].sweepPeriod
		if a.ch[0].sweepTimer == 0 {
			a.ch[0].sweepTimer = 8
		}
		a.ch[0].shadowFreq = a.ch[0].period
		a.ch[0].sweepNegUsed = false

		if a.ch[0].sweepStep != 0 {
			if a.ch[0].sweepDown {
				a.ch[0].sweepNegUsed = true
			}
			if _, overflow := a.ch[0].calculateSweepFrequency(); overflow {
				a.ch[0].enabled = false
			}
		}

		a.NR14 = bit.Reset(7, a.NR14)
		a.ch[0].trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 0)

	// Channel 2 (Square) - NR21-NR24
	a.ch[1].duty = bit.ExtractBits(a.NR21, 7, 6)
	a.ch[1].timer = bit.ExtractBits(a.NR21, 5, 0)

	a.ch[1].volume = bit.ExtractBits(a.NR22, 7, 4)
	a.ch[1].envelopeUp = bit.IsSet(3, a.NR22)
	a.ch[1].envelopePace = bit.ExtractBits(a.NR22, 2, 0)
	a.ch[1].dacEnabled = (a.ch[1].volume > 0) || a.ch[1].envelopeUp

	a.ch[1].period = bit.Combine(a.NR24&0b111, a.NR23)

	prevLenEnable = a.ch[1].lengthEnable
	lengthBefore = a.ch[1].length
	triggered = bit.IsSet(7, a.NR24)
	a.ch[1].lengthEnable = bit.IsSet(6, a.NR24)
	a.ch[1].trigger = triggered
	if a.ch[1].trigger {
		if a.ch[1].dacEnabled {
			a.ch[1].enabled = true
		}
		a.ch[1].envelopeLatched = false
		if a.ch[1].envelopePace == 0 {
			a.ch[1].envelopeCounter = 8
		} else {
			a.ch[1].envelopeCounter = a.ch[1].envelopePace
		}
		a.ch[1].dutyStep = 0
		a.ch[1].freqTimer = a.squarePeriodCycles(&a.ch[1])
		a.NR24 = bit.Reset(7, a.NR24)
		a.ch[1].trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 1)

	// Channel 3 (Wave) - NR30-NR34
	a.ch[2].dacEnabled = bit.IsSet(7, a.NR30)
	a.ch[2].timer = a.NR31
	a.ch[2].volume = bit.ExtractBits(a.NR32, 6, 5)
	a.ch[2].period = bit.Combine(a.NR34&0b111, a.NR33)

	prevLenEnable = a.ch[2].lengthEnable
	lengthBefore = a.ch[2].length
	triggered = bit.IsSet(7, a.NR34)
	a.ch[2].lengthEnable = bit.IsSet(6, a.NR34)
	a.ch[2].trigger = triggered
	if a.ch[2].trigger {
		if a.ch[2].dacEnabled {
			a.ch[2].enabled = true
		}
		a.ch[2].freqTimer = a.wavePeriodCycles(&a.ch[2])
		a.ch[2].waveIndex = 0
		a.ch[2].waveSample = a.waveRAM[0]
		a.NR34 = bit.Reset(7, a.NR34)
		a.ch[2].trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 256, 2)

	// Channel 4 (Noise) - NR41-NR44
	a.ch[3].timer = bit.ExtractBits(a.NR41, 5, 0)

	a.ch[3].volume = bit.ExtractBits(a.NR42, 7, 4)
	a.ch[3].envelopeUp = bit.IsSet(3, a.NR42)
	a.ch[3].envelopePace = bit.ExtractBits(a.NR42, 2, 0)

	a.ch[3].shift = bit.ExtractBits(a.NR43, 7, 4)
	a.ch[3].use7bitLFSR = bit.IsSet(3, a.NR43)
	a.ch[3].divider = bit.ExtractBits(a.NR43, 2, 0)
	a.ch[3].dacEnabled = (a.ch[3].volume > 0) || a.ch[3].envelopeUp

	prevLenEnable = a.ch[3].lengthEnable
	lengthBefore = a.ch[3].length
	triggered = bit.IsSet(7, a.NR44)
	a.ch[3].lengthEnable = bit.IsSet(6, a.NR44)
	a.ch[3].trigger = triggered
	if a.ch[3].trigger {
		if a.ch[3].dacEnabled {
			a.ch[3].enabled = true
		}
		a.ch[3].envelopeLatched = false
		if a.ch[3].envelopePace == 0 {
			a.ch[3].envelopeCounter = 8
		} else {
			a.ch[3].envelopeCounter = a.ch[3].envelopePace
		}
		a.ch[3].lfsr = 0x7FFF
		a.ch[3].noiseTimer = a.noisePeriodCycles(&a.ch[3])
		a.NR44 = bit.Reset(7, a.NR44)
		a.ch[3].trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 3)

	for i := range a.ch {
		if !a.ch[i].dacEnabled {
			a.ch[i].enabled = false
		}
	}
}

// ToggleChannel toggles the mute state of a channel, for debug backends.
func (a *APU) ToggleChannel(idx int) {
	if idx < 0 || idx >= 4 {
		return
	}
	a.ch[idx].muted = !a.ch[idx].muted
}

// SoloChannel mutes every channel except idx; calling it again with the
// same index un-mutes everything.
func (a *APU) SoloChannel(channel int) {
	if channel < 0 || channel >= 4 {
		return
	}

	soloed := !a.ch[channel].muted
	for i := range a.ch {
		if i != channel && !a.ch[i].muted {
			soloed = false
		}
	}

	for i := range a.ch {
		a.ch[i].muted = !soloed && i != channel
	}
}

// GetChannelStatus reports whether each channel is currently producing
// sound (not whether it's muted/soloed for debug purposes).
func (a *APU) GetChannelStatus() (bool, bool, bool, bool) {
	return a.ch[0].enabled, a.ch[1].enabled, a.ch[2].enabled, a.ch[3].enabled
}

// GetChannelVolumes returns each channel's current envelope volume (0-15).
func (a *APU) GetChannelVolumes() (ch1, ch2, ch3, ch4 uint8) {
	return a.ch[0].volume, a.ch[1].volume, a.ch[2].volume, a.ch[3].volume
}
