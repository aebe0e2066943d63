// Package find locates USB serial devices by walking /sys, so the vcp
// transport can be wired up without hardcoding a port name.
package find

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Filter narrows the candidate set; the first tty it accepts wins.
type Filter func(*UsbTty) bool

// FTDIFilter matches the FTDI USB-serial bridges common on instrument
// adapters.
func FTDIFilter(ut *UsbTty) bool {
	return strings.Contains(ut.Mfg, "FTDI")
}

// SerialFilter matches a device by its USB serial number.
func SerialFilter(serial string) Filter {
	return func(ut *UsbTty) bool { return ut.Serial == serial }
}

// UsbTty describes one USB serial device found under /sys/class/tty.
type UsbTty struct {
	Dev    string // device name, e.g. ttyUSB0
	Path   string // resolved /sys device path
	Mfg    string
	Prod   string
	Serial string
}

func (u UsbTty) String() string {
	return fmt.Sprintf("dev %s mfg %q prod %q serial %q", u.Dev, u.Mfg, u.Prod, u.Serial)
}

// Find returns the single USB tty accepted by filter, or the only USB tty
// present when filter is nil. Zero or ambiguous matches are errors.
func Find(filter Filter) (string, error) {
	ttys, err := All()
	if err != nil {
		return "", err
	}
	if filter != nil {
		for i := range ttys {
			if filter(&ttys[i]) {
				return ttys[i].Dev, nil
			}
		}
		return "", fmt.Errorf("no matching usb ttys")
	}
	switch len(ttys) {
	case 0:
		return "", fmt.Errorf("no usb ttys found")
	case 1:
		return ttys[0].Dev, nil
	}
	return "", fmt.Errorf("multiple usb ttys: %v", ttys)
}

// All walks /sys/class/tty and reports every tty backed by a USB device.
func All() ([]UsbTty, error) {
	const base = "/sys/class/tty/"
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var ttys []UsbTty
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		abs, err := filepath.EvalSymlinks(filepath.Join(base, e.Name()))
		if err != nil || !strings.Contains(abs, "usb") {
			continue
		}
		dev, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			continue
		}
		// The USB descriptor attributes live one level above the interface
		// directory that the tty's device link points at.
		usb := filepath.Dir(dev)
		ttys = append(ttys, UsbTty{
			Dev:    e.Name(),
			Path:   abs,
			Mfg:    readAttr(usb, "manufacturer"),
			Prod:   readAttr(usb, "product"),
			Serial: readAttr(usb, "serial"),
		})
	}
	return ttys, nil
}

// readAttr reads one sysfs attribute, treating a missing or unreadable file
// as empty.
func readAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return strings.TrimSpace(string(b))
}
