package display

// SSD1309 command set. Values are wire-level protocol constants; do not
// change them without checking against the panel datasheet.
const (
	cmdDisplayOff         = 0xAE
	cmdDisplayOn          = 0xAF
	cmdSetClockDiv        = 0xD5
	cmdSetMultiplex       = 0xA8
	cmdSetDisplayOffset   = 0xD3
	cmdSetStartLine       = 0x40
	cmdSetMasterConfig    = 0xAD // SSD1309 master configuration
	cmdChargePump         = 0x8D // SSD1306 charge pump
	cmdMemoryMode         = 0x20
	cmdSegRemapNormal     = 0xA0
	cmdSegRemapFlip       = 0xA1
	cmdComScanInc         = 0xC0
	cmdComScanDec         = 0xC8
	cmdSetComPins         = 0xDA
	cmdSetContrast        = 0x81
	cmdSetPrecharge       = 0xD9
	cmdSetVComDeselect    = 0xDB
	cmdDeactivateScroll   = 0x2E
	cmdDisplayAllOnResume = 0xA4
	cmdNormalDisplay      = 0xA6
	cmdInverseDisplay     = 0xA7
)

// Command is one controller command with an optional parameter byte.
type Command struct {
	Op       byte
	Param    byte
	HasParam bool
}

func cmd(op byte) Command {
	return Command{Op: op}
}

func cmdP(op, param byte) Command {
	return Command{Op: op, Param: param, HasParam: true}
}

// Opts configures panel initialization.
type Opts struct {
	// Contrast is the initial contrast value (0x00-0xFF).
	Contrast byte

	// Flip rotates the image 180 degrees by swapping segment remap and COM
	// scan direction.
	Flip bool

	// ChargePump enables the internal charge pump (SSD1306 style panels).
	// SSD1309 boards with external VCC leave this off and get the master
	// configuration command instead.
	ChargePump bool

	// FrameRate is the sync engine cadence in frames per second.
	FrameRate int
}

// DefaultOpts matches the panel wiring this firmware was built for.
var DefaultOpts = Opts{
	Contrast:  0x6F,
	FrameRate: 30,
}

// initSequence is the one-time power-up command sequence.
//
// Memory addressing is set to horizontal mode (0x20, 0x00) so the whole
// 1024-byte frame can be streamed as a single block; the address pointer
// wraps back to page 0, column 0 after the last byte.
func initSequence(o Opts) []Command {
	seq := []Command{
		cmd(cmdDisplayOff),
		cmdP(cmdSetClockDiv, 0xA0),
		cmdP(cmdSetMultiplex, Height-1),
		cmdP(cmdSetDisplayOffset, 0x00),
		cmd(cmdSetStartLine),
	}

	if o.ChargePump {
		seq = append(seq, cmdP(cmdChargePump, 0x14))
	} else {
		seq = append(seq, cmdP(cmdSetMasterConfig, 0x8E))
	}

	seq = append(seq, cmdP(cmdMemoryMode, 0x00))
	seq = append(seq, flipSequence(o.Flip)...)
	seq = append(seq,
		cmdP(cmdSetComPins, 0x12),
		cmdP(cmdSetContrast, o.Contrast),
		cmdP(cmdSetPrecharge, 0xF1),
		cmdP(cmdSetVComDeselect, 0x30),
		cmd(cmdDeactivateScroll),
		cmd(cmdDisplayAllOnResume),
		cmd(cmdNormalDisplay),
	)
	return seq
}

// flipSequence selects the mirroring commands. The default orientation scans
// COM lines in decreasing order with segment remap off.
func flipSequence(flip bool) []Command {
	if flip {
		return []Command{cmd(cmdSegRemapFlip), cmd(cmdComScanInc)}
	}
	return []Command{cmd(cmdSegRemapNormal), cmd(cmdComScanDec)}
}
