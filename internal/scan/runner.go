package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/tm16xx-scan/internal/logic"
	"github.com/sweeney/tm16xx-scan/internal/mqtt"
	"github.com/sweeney/tm16xx-scan/internal/status"
	"github.com/sweeney/tm16xx-scan/internal/tm16xx"
)

// SignalCause is the context cancellation cause used when a signal stops
// the runner. It names the signal in the SHUTDOWN event.
type SignalCause struct {
	Signal os.Signal
}

func (c SignalCause) Error() string {
	return fmt.Sprintf("received %v", c.Signal)
}

// Config wires a Runner. Device is required; everything else is optional.
type Config struct {
	Variant Variant
	Device  tm16xx.Device
	Demo    *tm16xx.Demo // defaults to tm16xx.NewDemo(Variant.Digits)
	Out     io.Writer    // defaults to os.Stdout

	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus
	Tracker    *status.Tracker
	Heartbeat  time.Duration // 0 disables

	Now func() time.Time
}

// Runner owns the device for its lifetime: it performs init and every poll
// on the goroutine that calls Run.
type Runner struct {
	cfg Config
}

// New creates a Runner from cfg, filling in defaults.
func New(cfg Config) *Runner {
	if cfg.Demo == nil {
		cfg.Demo = tm16xx.NewDemo(cfg.Variant.Digits)
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{cfg: cfg}
}

// Run initialises the display once, then polls the keys on every tick until
// ctx is done. Init and poll failures are printed and never end the loop.
// The time sent on tick is used as the poll time.
func (r *Runner) Run(ctx context.Context, tick <-chan time.Time) error {
	initErr := r.cfg.Demo.Init(r.cfg.Device)
	result := "ok"
	if initErr != nil {
		result = initErr.Error()
	}
	fmt.Fprintf(r.cfg.Out, "Display initialized %s\n", result)
	if r.cfg.Tracker != nil {
		r.cfg.Tracker.SetInit(initErr)
	}

	detector := logic.NewDetector(make(logic.Frame, r.cfg.Variant.FrameSize), r.cfg.Now())
	r.publishLifecycle("STARTUP", "")

	for {
		select {
		case <-ctx.Done():
			reason := shutdownReason(context.Cause(ctx))
			log.Printf("stopping key scan: %s", reason)
			r.publishLifecycle("SHUTDOWN", reason)
			return nil

		case t := <-tick:
			r.poll(detector, t)
		}
	}
}

func (r *Runner) poll(detector *logic.Detector, t time.Time) {
	start := time.Now()
	keys, err := r.cfg.Demo.Next(r.cfg.Device)
	pollDurationMetric.Observe(time.Since(start).Seconds())
	pollsCounter.Inc()

	event := detector.Process(logic.Input{Frame: keys, Err: err, Time: t})
	if err != nil {
		errorsCounter.Inc()
		fmt.Fprintf(r.cfg.Out, "Key scan read error %v\n", err)
	}

	if event != nil {
		changesCounter.Inc()
		fmt.Fprintf(r.cfg.Out, "Key scan read: %s\n", event.Frame)
		if r.cfg.Tracker != nil {
			r.cfg.Tracker.RecordChange(*event)
		}
		if r.cfg.Publisher != nil {
			if err := r.cfg.Publisher.Publish(*event); err != nil {
				log.Printf("publish error: %v", err)
				// Don't stop scanning on publish failure
			}
		}
	}

	if r.cfg.Tracker != nil {
		r.cfg.Tracker.Update(detector.Last(), detector.Counts())
		if r.cfg.MQTTStatus != nil {
			r.cfg.Tracker.SetMQTTConnected(r.cfg.MQTTStatus.IsConnected())
		}
	}

	if hb := detector.CheckHeartbeat(t, r.cfg.Heartbeat); hb != nil {
		log.Printf("heartbeat: uptime=%v polls=%d changes=%d errors=%d",
			hb.Uptime, hb.Counts.Polls, hb.Counts.Changes, hb.Counts.Errors)
		r.publishSystem(mqtt.SystemEvent{Timestamp: hb.Timestamp, Event: "HEARTBEAT"})
	}
}

// publishLifecycle sends a retained STARTUP or SHUTDOWN event.
func (r *Runner) publishLifecycle(event, reason string) {
	r.publishSystem(mqtt.SystemEvent{
		Timestamp: r.cfg.Now(),
		Event:     event,
		Reason:    reason,
		Retained:  true,
	})
}

// publishSystem attaches a full status snapshot when a tracker is present.
func (r *Runner) publishSystem(event mqtt.SystemEvent) {
	if r.cfg.Publisher == nil {
		return
	}
	if r.cfg.Tracker != nil {
		if r.cfg.MQTTStatus != nil {
			r.cfg.Tracker.SetMQTTConnected(r.cfg.MQTTStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(r.cfg.Tracker.Snapshot(), event.Event, event.Reason)
	}
	if err := r.cfg.Publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish %s event: %v", event.Event, err)
	}
}

func shutdownReason(cause error) string {
	var sc SignalCause
	if !errors.As(cause, &sc) {
		return "CANCELLED"
	}
	switch sc.Signal {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
