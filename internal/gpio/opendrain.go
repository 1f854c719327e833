package gpio

// OpenDrain emulates an open-drain output on a line that only supports
// push-pull. Low is driven; high is released to input so the external
// pull-up raises the line. The Raspberry Pi has no native open-drain mode.
type OpenDrain struct {
	pin ModalPin
	// mode mirrors the hardware direction and is only changed by switchTo.
	mode Mode
}

// NewOpenDrain takes ownership of pin and releases it to input.
func NewOpenDrain(pin ModalPin) *OpenDrain {
	pin.SetMode(ModeInput)
	return &OpenDrain{pin: pin, mode: ModeInput}
}

// IsHigh reports the sensed level. Valid in either mode.
func (o *OpenDrain) IsHigh() bool {
	return o.pin.Read()
}

// IsLow reports the sensed level. Valid in either mode.
func (o *OpenDrain) IsLow() bool {
	return !o.pin.Read()
}

// SetLow pulls the line low.
func (o *OpenDrain) SetLow() {
	o.switchTo(ModeOutput)
	o.pin.SetLow()
}

// SetHigh releases the line. The output latch is set high before the switch
// to input so a late mode change can never leave the line pulled low.
func (o *OpenDrain) SetHigh() {
	o.pin.SetHigh()
	o.switchTo(ModeInput)
}

// Mode returns the current direction.
func (o *OpenDrain) Mode() Mode {
	return o.mode
}

func (o *OpenDrain) switchTo(m Mode) {
	if o.mode == m {
		return
	}
	o.mode = m
	o.pin.SetMode(m)
}
