package tm16xx

import "github.com/sweeney/tm16xx-scan/internal/gpio"

// Chip simulators for tests. They watch fake pins through their callbacks and
// model DIO as a wired-AND: the host drives it only in output mode, the chip
// can only pull it low.

const (
	phaseIdle = iota
	phaseWrite
	phaseAck
	phaseRead
	phaseReadAck
	phaseDone
)

// Sim1637 is a TM1637 as seen from its CLK and DIO pins.
type Sim1637 struct {
	dio *gpio.FakePin
	clk *gpio.FakePin

	// Key is returned by key reads.
	Key byte
	// NoAck makes the chip never acknowledge.
	NoAck bool
	// Frames contains the bytes of every completed start..stop frame.
	Frames [][]byte

	chipLow bool
	clkHigh bool
	lastDIO bool
	inFrame bool
	phase   int
	bits    int
	cur     byte
	readIdx int
	frame   []byte
}

// NewSim1637 attaches a simulated TM1637 to the given pins.
func NewSim1637(dio, clk *gpio.FakePin) *Sim1637 {
	s := &Sim1637{dio: dio, clk: clk, clkHigh: clk.Level}
	s.lastDIO = s.level()
	dio.Input = func() bool { return !s.chipLow }
	dio.OnWrite = func(bool) { s.dioChanged() }
	dio.OnMode = func(gpio.Mode) { s.dioChanged() }
	clk.OnWrite = s.clkWrite
	return s
}

func (s *Sim1637) level() bool {
	if s.dio.Mode == gpio.ModeOutput {
		return s.dio.Level && !s.chipLow
	}
	return !s.chipLow
}

// hold makes the chip pull DIO low (or release it) outside any frame.
func (s *Sim1637) hold(low bool) {
	s.chipLow = low
	s.lastDIO = s.level()
}

func (s *Sim1637) dioChanged() {
	l := s.level()
	if l == s.lastDIO {
		return
	}
	s.lastDIO = l
	if !s.clkHigh {
		return
	}
	if !l {
		s.inFrame = true
		s.phase = phaseWrite
		s.bits, s.cur = 0, 0
		s.frame = nil
		return
	}
	if s.inFrame {
		s.Frames = append(s.Frames, s.frame)
	}
	s.inFrame = false
	s.phase = phaseIdle
}

func (s *Sim1637) clkWrite(high bool) {
	if high == s.clkHigh {
		return
	}
	s.clkHigh = high
	if !s.inFrame {
		return
	}
	if high {
		if s.phase == phaseWrite && s.bits < 8 {
			if s.level() {
				s.cur |= 1 << s.bits
			}
			s.bits++
		}
		return
	}

	switch s.phase {
	case phaseWrite:
		if s.bits == 8 {
			s.hold(!s.NoAck)
			s.phase = phaseAck
		}
	case phaseAck:
		s.frame = append(s.frame, s.cur)
		read := len(s.frame) == 1 && s.cur == CmdKeyRead
		s.bits, s.cur = 0, 0
		if read {
			// The first key bit goes out on the edge that ends the ACK.
			s.hold(s.Key&0x01 == 0)
			s.readIdx = 1
			s.phase = phaseRead
			return
		}
		s.hold(false)
		s.phase = phaseWrite
	case phaseRead:
		if s.readIdx < 8 {
			s.hold(s.Key&(1<<s.readIdx) == 0)
			s.readIdx++
			return
		}
		s.hold(!s.NoAck)
		s.phase = phaseReadAck
	case phaseReadAck:
		s.hold(false)
		s.phase = phaseDone
	}
}

// Sim1638 is a TM1638 as seen from its STB, CLK and DIO pins.
type Sim1638 struct {
	dio *gpio.FakePin
	clk *gpio.FakePin
	stb *gpio.FakePin

	// Keys is returned by key reads.
	Keys [4]byte
	// Frames contains the bytes of every completed STB-low frame.
	Frames [][]byte

	chipLow bool
	clkHigh bool
	stbHigh bool
	inFrame bool
	reading bool
	bits    int
	cur     byte
	readIdx int
	frame   []byte
}

// NewSim1638 attaches a simulated TM1638 to the given pins.
func NewSim1638(dio, clk, stb *gpio.FakePin) *Sim1638 {
	s := &Sim1638{dio: dio, clk: clk, stb: stb, clkHigh: clk.Level, stbHigh: stb.Level}
	dio.Input = func() bool { return !s.chipLow }
	clk.OnWrite = s.clkWrite
	stb.OnWrite = s.stbWrite
	return s
}

func (s *Sim1638) level() bool {
	if s.dio.Mode == gpio.ModeOutput {
		return s.dio.Level && !s.chipLow
	}
	return !s.chipLow
}

func (s *Sim1638) stbWrite(high bool) {
	if high == s.stbHigh {
		return
	}
	s.stbHigh = high
	if !high {
		s.inFrame = true
		s.reading = false
		s.bits, s.cur = 0, 0
		s.frame = nil
		return
	}
	if s.inFrame {
		s.Frames = append(s.Frames, s.frame)
	}
	s.inFrame = false
	s.reading = false
	s.chipLow = false
}

func (s *Sim1638) clkWrite(high bool) {
	if high == s.clkHigh {
		return
	}
	s.clkHigh = high
	if !s.inFrame {
		return
	}
	if !high {
		if s.reading && s.readIdx < 8*len(s.Keys) {
			s.chipLow = s.Keys[s.readIdx/8]&(1<<(s.readIdx%8)) == 0
			s.readIdx++
		}
		return
	}
	if s.reading {
		return
	}
	if s.level() {
		s.cur |= 1 << s.bits
	}
	s.bits++
	if s.bits < 8 {
		return
	}
	s.frame = append(s.frame, s.cur)
	if len(s.frame) == 1 && s.cur == CmdKeyRead {
		s.reading = true
		s.readIdx = 0
	}
	s.bits, s.cur = 0, 0
}
