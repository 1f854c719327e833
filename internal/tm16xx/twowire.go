package tm16xx

import (
	"fmt"

	"github.com/sweeney/tm16xx-scan/internal/delay"
	"github.com/sweeney/tm16xx-scan/internal/gpio"
)

// TwoWire is a TM1637 on a CLK/DIO bus. Framing is I2C-like: start and stop
// are DIO edges while CLK is high, bytes go LSB first and every byte is
// acknowledged by the chip pulling DIO low on the ninth clock.
type TwoWire struct {
	dio   gpio.IOPin
	clk   gpio.OutputPin
	delay delay.Delayer
	busUs uint16
}

// NewTwoWire returns a TM1637 driver. dio must be open-drain.
func NewTwoWire(dio gpio.IOPin, clk gpio.OutputPin, d delay.Delayer, busDelayUs uint16) *TwoWire {
	return &TwoWire{dio: dio, clk: clk, delay: d, busUs: busDelayUs}
}

// Command sends a single command byte.
func (b *TwoWire) Command(cmd byte) error {
	if err := b.start(); err != nil {
		return err
	}
	if err := b.writeByte(cmd); err != nil {
		b.stop()
		return fmt.Errorf("command %#02x: %w", cmd, err)
	}
	b.stop()
	return nil
}

// Write stores data in the display registers starting at addr.
func (b *TwoWire) Write(addr byte, data []byte) error {
	if err := b.Command(CmdDataWrite); err != nil {
		return fmt.Errorf("data command: %w", err)
	}

	if err := b.start(); err != nil {
		return err
	}
	if err := b.writeByte(addr); err != nil {
		b.stop()
		return fmt.Errorf("address command: %w", err)
	}
	for i, v := range data {
		if err := b.writeByte(v); err != nil {
			b.stop()
			return fmt.Errorf("write register %d: %w", i, err)
		}
	}
	b.stop()
	return nil
}

// Show writes digit segments from register 0.
func (b *TwoWire) Show(segments []byte) error {
	return b.Write(CmdAddressBase, segments)
}

// ReadKeys reads the single key-scan byte.
func (b *TwoWire) ReadKeys() ([]byte, error) {
	if err := b.start(); err != nil {
		return nil, err
	}
	if err := b.writeByte(CmdKeyRead); err != nil {
		b.stop()
		return nil, fmt.Errorf("read command: %w", err)
	}
	key := b.readByte()
	if err := b.ack(); err != nil {
		b.stop()
		return nil, fmt.Errorf("read key byte: %w", err)
	}
	b.stop()
	return []byte{key}, nil
}

func (b *TwoWire) wait() {
	b.delay.DelayUs(b.busUs)
}

func (b *TwoWire) start() error {
	b.dio.SetHigh()
	b.clk.SetHigh()
	b.wait()
	if b.dio.IsLow() {
		return fmt.Errorf("start: %w", ErrBus)
	}

	b.dio.SetLow()
	b.wait()
	b.clk.SetLow()
	b.wait()
	return nil
}

func (b *TwoWire) stop() {
	b.clk.SetLow()
	b.wait()
	b.dio.SetLow()
	b.wait()

	b.clk.SetHigh()
	b.wait()
	b.dio.SetHigh()
	b.wait()
}

// writeByte clocks out v LSB first. DIO only changes while CLK is low.
func (b *TwoWire) writeByte(v byte) error {
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
	return b.ack()
}

// readByte releases DIO and samples 8 bits LSB first while CLK is high.
func (b *TwoWire) readByte() byte {
	b.dio.SetHigh()

	var v byte
	for i := 0; i < 8; i++ {
		b.clk.SetLow()
		b.wait()
		b.clk.SetHigh()
		b.wait()
		if b.dio.IsHigh() {
			v |= 1 << i
		}
	}
	return v
}

// ack clocks the ninth bit with DIO released and expects the chip to hold it low.
func (b *TwoWire) ack() error {
	b.clk.SetLow()
	b.dio.SetHigh()
	b.wait()

	b.clk.SetHigh()
	b.wait()
	acked := b.dio.IsLow()

	b.clk.SetLow()
	b.wait()

	if !acked {
		return ErrAck
	}
	return nil
}
