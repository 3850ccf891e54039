// Package apu stands in for the NES Audio Processing Unit's register
// surface. Sound synthesis is out of scope for this emulator: the APU
// register window ($4000-$4013, $4015, $4017) accepts writes and answers
// reads with 0, so software that merely pokes the APU during boot or
// between frames keeps running correctly.
package apu

import "github.com/golang/glog"

// APU is a no-op stand-in for the 2A03's sound generation registers.
type APU struct {
	warnedAddr map[uint16]bool
}

// New creates an APU stub.
func New() *APU {
	return &APU{warnedAddr: make(map[uint16]bool)}
}

// Read always returns 0; every distinct address is logged once.
func (a *APU) Read(address uint16) uint8 {
	if !a.warnedAddr[address] {
		a.warnedAddr[address] = true
		glog.Infof("apu: read from $%04X ignored (sound synthesis is not implemented)", address)
	}
	return 0
}

// Write is ignored; every distinct address is logged once.
func (a *APU) Write(address uint16, value uint8) {
	if !a.warnedAddr[address] {
		a.warnedAddr[address] = true
		glog.Infof("apu: write $%02X to $%04X ignored (sound synthesis is not implemented)", value, address)
	}
}
