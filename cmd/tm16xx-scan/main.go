// Command tm16xx-scan drives a TM1637 or TM1638 display on Raspberry Pi GPIO
// and prints every change in its key-scan data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sweeney/tm16xx-scan/internal/delay"
	"github.com/sweeney/tm16xx-scan/internal/gpio"
	"github.com/sweeney/tm16xx-scan/internal/mqtt"
	"github.com/sweeney/tm16xx-scan/internal/scan"
	"github.com/sweeney/tm16xx-scan/internal/status"
	"github.com/sweeney/tm16xx-scan/internal/tm16xx"
	"github.com/sweeney/tm16xx-scan/internal/web"
)

// pinFlag is a GPIO line number given on the command line.
type pinFlag struct {
	value uint8
	set   bool
}

func (p *pinFlag) String() string {
	if p == nil || !p.set {
		return ""
	}
	return strconv.Itoa(int(p.value))
}

func (p *pinFlag) Set(s string) error {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return fmt.Errorf("pin %q is not a number in 0-255", s)
	}
	p.value = uint8(v)
	p.set = true
	return nil
}

type options struct {
	clk, dio, stb pinFlag
	backend       string
	chip          string
	brightness    uint
	broker        string
	httpAddr      string
	heartbeat     time.Duration
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.Var(&o.clk, "clk", "CLK pin number (required)")
	fs.Var(&o.dio, "dio", "DIO pin number (required)")
	fs.Var(&o.stb, "stb", "STB pin number for the 3 wire interface (TM1638)")
	fs.StringVar(&o.backend, "backend", gpio.BackendCdev, "GPIO backend: cdev, rpio or periph")
	fs.StringVar(&o.chip, "chip", gpio.DefaultChip, "GPIO character device (cdev backend)")
	fs.UintVar(&o.brightness, "brightness", uint(tm16xx.DefaultBrightness), "Display brightness 0-7")
	fs.StringVar(&o.broker, "broker", "", "MQTT broker address (empty to disable)")
	fs.StringVar(&o.httpAddr, "http", "", "HTTP status address (empty to disable)")
	fs.DurationVar(&o.heartbeat, "heartbeat", 0, "Heartbeat interval (0 to disable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !o.clk.set {
		return nil, errors.New("--clk is required")
	}
	if !o.dio.set {
		return nil, errors.New("--dio is required")
	}
	if o.brightness > uint(tm16xx.MaxBrightness) {
		return nil, fmt.Errorf("--brightness %d out of range 0-%d", o.brightness, tm16xx.MaxBrightness)
	}
	return o, nil
}

func (o *options) variant() scan.Variant {
	if o.stb.set {
		return scan.ThreeWire
	}
	return scan.TwoWire
}

func (o *options) initLine() string {
	stb := "none"
	if o.stb.set {
		stb = o.stb.String()
	}
	return fmt.Sprintf("Initialized using CLK:%d DIO:%d, STB:%s", o.clk.value, o.dio.value, stb)
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o *options, out io.Writer) error {
	fmt.Fprintln(out, o.initLine())
	v := o.variant()

	ctrl, err := gpio.Open(o.backend, o.chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer ctrl.Close()

	dev, err := openDevice(ctrl, o, delay.NewSpin())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, v.Banner())

	demo := tm16xx.NewDemo(v.Digits)
	demo.Brightness = byte(o.brightness)

	tracker := status.NewTracker(time.Now(), statusConfig(o, v))

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if o.broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{Broker: o.broker, Variant: v.Name})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher, mqttStatus = p, p
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case s := <-sigCh:
			cancel(scan.SignalCause{Signal: s})
		case <-ctx.Done():
		}
	}()

	runner := scan.New(scan.Config{
		Variant:    v,
		Device:     dev,
		Demo:       demo,
		Out:        out,
		Publisher:  publisher,
		MQTTStatus: mqttStatus,
		Tracker:    tracker,
		Heartbeat:  o.heartbeat,
	})
	return runner.Run(ctx, pollTicks(ctx, v.Poll))
}

// pollTicks delivers a tick straight away and then one per interval until
// ctx is done, so the first key read follows display init without waiting.
func pollTicks(ctx context.Context, every time.Duration) <-chan time.Time {
	ch := make(chan time.Time)
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		next := time.Now()
		for {
			select {
			case ch <- next:
			case <-ctx.Done():
				return
			}
			select {
			case next = <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// openDevice acquires the pins in CLK, DIO, STB order and builds the bus for
// the variant. DIO is wrapped in an open-drain emulator.
func openDevice(ctrl gpio.Controller, o *options, d delay.Delayer) (tm16xx.Device, error) {
	v := o.variant()

	clk, err := ctrl.Output(o.clk.value)
	if err != nil {
		return nil, fmt.Errorf("acquire CLK pin %d: %w", o.clk.value, err)
	}
	dioPin, err := ctrl.Bidirectional(o.dio.value)
	if err != nil {
		return nil, fmt.Errorf("acquire DIO pin %d: %w", o.dio.value, err)
	}
	dio := gpio.NewOpenDrain(dioPin)

	if !o.stb.set {
		return tm16xx.NewTwoWire(dio, clk, d, v.BusDelayUs), nil
	}
	stb, err := ctrl.Output(o.stb.value)
	if err != nil {
		return nil, fmt.Errorf("acquire STB pin %d: %w", o.stb.value, err)
	}
	return tm16xx.NewThreeWire(dio, clk, stb, d, v.BusDelayUs), nil
}

func statusConfig(o *options, v scan.Variant) status.Config {
	cfg := status.Config{
		Variant:     v.Name,
		Chip:        v.Chip,
		Backend:     o.backend,
		Pins:        status.Pins{CLK: o.clk.value, DIO: o.dio.value},
		PollMs:      v.Poll.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
	}
	if o.stb.set {
		stb := o.stb.value
		cfg.Pins.STB = &stb
	}
	return cfg
}
