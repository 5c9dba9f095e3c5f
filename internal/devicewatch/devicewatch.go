// Package devicewatch logs udev hotplug events for USB acquisition
// hardware (an amplifier, a DAQ box) through a processor's log sink.
// It has no effect on processing state; it exists so an operator can
// correlate "the headstage was unplugged" with a gap in the sample
// stream in the same trace as everything else.
package devicewatch

import (
	"context"

	"github.com/jochenvg/go-udev"

	dnbcore "github.com/bushlab-ucl/dnbcore/src"
)

// Watch subscribes to udev "usb" subsystem events and forwards each one
// to processor.LogMessage until ctx is cancelled.
func Watch(ctx context.Context, processor *dnbcore.SignalProcessor) error {
	u := udev.Udev{}
	monitor := u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem("usb"); err != nil {
		return err
	}

	deviceCh, _, err := monitor.DeviceChan(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case dev, ok := <-deviceCh:
				if !ok {
					return
				}
				processor.LogMessage("udev: " + dev.Action() + " " + dev.Devpath())
			}
		}
	}()

	return nil
}
