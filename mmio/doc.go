// Package mmio maps memory for volatile mirrors to view: a window of a device
// file such as /dev/mem or /dev/uioN, or anonymous memory for tests and
// simulation.
//
//	r, err := mmio.Open("/dev/mem", 0xfe200000, 0x100)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	gpio := regs.GPIOVolatileAt(r.Base())
package mmio
