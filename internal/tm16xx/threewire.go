package tm16xx

import (
	"fmt"

	"github.com/sweeney/tm16xx-scan/internal/delay"
	"github.com/sweeney/tm16xx-scan/internal/gpio"
)

// TM1638 register layout: even addresses hold digit segments, odd addresses
// the discrete LEDs next to each digit.
const (
	tm1638Registers = 16
	tm1638KeyBytes  = 4
)

// ThreeWire is a TM1638 on a STB/CLK/DIO bus. A frame is everything between
// STB falling and rising; bits go LSB first and are latched on the CLK
// rising edge. There is no acknowledge.
type ThreeWire struct {
	dio   gpio.IOPin
	clk   gpio.OutputPin
	stb   gpio.OutputPin
	delay delay.Delayer
	busUs uint16
}

// NewThreeWire returns a TM1638 driver. dio must be open-drain.
func NewThreeWire(dio gpio.IOPin, clk, stb gpio.OutputPin, d delay.Delayer, busDelayUs uint16) *ThreeWire {
	return &ThreeWire{dio: dio, clk: clk, stb: stb, delay: d, busUs: busDelayUs}
}

// Command sends a single command byte.
func (b *ThreeWire) Command(cmd byte) error {
	if err := b.begin(); err != nil {
		return fmt.Errorf("command %#02x: %w", cmd, err)
	}
	b.writeByte(cmd)
	b.end()
	return nil
}

// Write stores data in the registers starting at addr.
func (b *ThreeWire) Write(addr byte, data []byte) error {
	if err := b.Command(CmdDataWrite); err != nil {
		return fmt.Errorf("data command: %w", err)
	}
	if err := b.begin(); err != nil {
		return fmt.Errorf("address command: %w", err)
	}
	b.writeByte(addr)
	for _, v := range data {
		b.writeByte(v)
	}
	b.end()
	return nil
}

// Show writes digit segments to the even registers and clears the LEDs.
func (b *ThreeWire) Show(segments []byte) error {
	regs := make([]byte, tm1638Registers)
	for i, s := range segments {
		if 2*i >= len(regs) {
			break
		}
		regs[2*i] = s
	}
	return b.Write(CmdAddressBase, regs)
}

// ReadKeys reads the four key-scan bytes.
func (b *ThreeWire) ReadKeys() ([]byte, error) {
	if err := b.begin(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	b.writeByte(CmdKeyRead)

	// Twait: the chip needs a moment before it drives DIO.
	b.dio.SetHigh()
	b.wait()

	keys := make([]byte, tm1638KeyBytes)
	for i := range keys {
		keys[i] = b.readByte()
	}
	b.end()
	return keys, nil
}

func (b *ThreeWire) wait() {
	b.delay.DelayUs(b.busUs)
}

// begin checks the released data line and opens a frame.
func (b *ThreeWire) begin() error {
	b.stb.SetHigh()
	b.clk.SetHigh()
	b.dio.SetHigh()
	b.wait()
	if b.dio.IsLow() {
		return ErrBus
	}

	b.stb.SetLow()
	b.wait()
	return nil
}

func (b *ThreeWire) end() {
	b.clk.SetHigh()
	b.stb.SetHigh()
	b.dio.SetHigh()
	b.wait()
}

func (b *ThreeWire) writeByte(v byte) {
	for i := 0; i < 8; i++ {
		b.clk.SetLow()
		if v&0x01 != 0 {
			b.dio.SetHigh()
		} else {
			b.dio.SetLow()
		}
		b.wait()

		b.clk.SetHigh()
		b.wait()
		v >>= 1
	}
}

// readByte samples 8 bits LSB first; the chip shifts each out on CLK falling.
func (b *ThreeWire) readByte() byte {
	var v byte
	for i := 0; i < 8; i++ {
		b.clk.SetLow()
		b.wait()
		b.clk.SetHigh()
		if b.dio.IsHigh() {
			v |= 1 << i
		}
		b.wait()
	}
	return v
}
