package tm16xx

import "github.com/sweeney/tm16xx-scan/internal/gpio"

func newSim1637() (*Sim1637, *gpio.OpenDrain) {
	dio, clk := gpio.NewFakePin(), gpio.NewFakePin()
	clk.Mode = gpio.ModeOutput
	s := NewSim1637(dio, clk)
	return s, gpio.NewOpenDrain(dio)
}

func newSim1638() (*Sim1638, *gpio.OpenDrain) {
	dio, clk, stb := gpio.NewFakePin(), gpio.NewFakePin(), gpio.NewFakePin()
	clk.Mode = gpio.ModeOutput
	stb.Mode = gpio.ModeOutput
	stb.Level = true
	s := NewSim1638(dio, clk, stb)
	return s, gpio.NewOpenDrain(dio)
}
