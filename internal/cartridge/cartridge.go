// Package cartridge implements iNES ROM loading for the NROM board.
//
// Only the subset of iNES 1.0 this emulator supports is accepted: no
// trainer, PRG of exactly 16KiB or 32KiB, and CHR of 8KiB or none (treated
// as CHR RAM); images outside that are rejected at load time. PRG and CHR
// are always mapped directly; the mapper number in the control bytes is
// not examined, so a header naming another mapper is loaded as NROM.
package cartridge

import (
	"fmt"
	"io"
)

const (
	headerSize  = 16
	prgBankSize = 16384
	chrBankSize = 8192

	magic0, magic1, magic2, magic3 = 'N', 'E', 'S', 0x1A
)

// ErrorCode identifies why a ROM was rejected. Each is returned as a
// distinct *LoaderError so callers can switch on it if they need to.
type ErrorCode int

const (
	ErrHeaderRead ErrorCode = iota + 1
	ErrMagicMismatch
	ErrHeaderTailNonZero
	ErrTrainerUnsupported
	ErrTruncatedPRG
	ErrTruncatedCHR
	ErrTrailingData
	ErrZeroPRG
)

func (c ErrorCode) String() string {
	switch c {
	case ErrHeaderRead:
		return "header-read-failure"
	case ErrMagicMismatch:
		return "magic-mismatch"
	case ErrHeaderTailNonZero:
		return "header-tail-nonzero"
	case ErrTrainerUnsupported:
		return "trainer-unsupported"
	case ErrTruncatedPRG:
		return "truncated-prg"
	case ErrTruncatedCHR:
		return "truncated-chr"
	case ErrTrailingData:
		return "trailing-data"
	case ErrZeroPRG:
		return "zero-prg"
	default:
		return "unknown"
	}
}

// LoaderError is returned for every rejected ROM. Detail, when set, is a
// free-form diagnostic (for example the offending header byte).
type LoaderError struct {
	Code   ErrorCode
	Detail string
}

func (e *LoaderError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ines: %s", e.Code)
	}
	return fmt.Sprintf("ines: %s: %s", e.Code, e.Detail)
}

// Mirroring selects how the PPU bus folds the two physical 1KiB nametables
// across the $2000-$2FFF window. This emulator only ever renders with
// horizontal folding (see internal/memory); the flag decoded from the
// header is kept on the cartridge for callers and tests to inspect.
type Mirroring uint8

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
)

func (m Mirroring) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}

// Cartridge is the parsed, validated content of an iNES file: PRG already
// expanded to the full 32KiB CPU window and CHR as a flat 8KiB block ready
// to be copied into the PPU's pattern-table region.
type Cartridge struct {
	PRG       [0x8000]byte
	CHR       [0x2000]byte
	Mirroring Mirroring
}

// Load parses and validates an iNES 1.0 image from r. The returned error,
// when non-nil, is always a *LoaderError.
func Load(r io.Reader) (*Cartridge, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoaderError{Code: ErrHeaderRead, Detail: err.Error()}
	}
	if len(data) < headerSize {
		return nil, &LoaderError{Code: ErrHeaderRead, Detail: "file shorter than the 16-byte header"}
	}

	header := data[:headerSize]
	if header[0] != magic0 || header[1] != magic1 || header[2] != magic2 || header[3] != magic3 {
		return nil, &LoaderError{Code: ErrMagicMismatch}
	}

	prgBanks := int(header[4])
	chrBanks := int(header[5])
	control1 := header[6]
	control2 := header[7]

	for i := 8; i < headerSize; i++ {
		if header[i] != 0 {
			return nil, &LoaderError{Code: ErrHeaderTailNonZero, Detail: fmt.Sprintf("byte %d = 0x%02x", i, header[i])}
		}
	}

	if control1&0x04 != 0 {
		return nil, &LoaderError{Code: ErrTrainerUnsupported}
	}
	if prgBanks == 0 {
		return nil, &LoaderError{Code: ErrZeroPRG}
	}
	if prgBanks > 2 {
		return nil, &LoaderError{Code: ErrTruncatedPRG, Detail: "only 16KiB or 32KiB PRG is supported"}
	}
	if chrBanks > 1 {
		return nil, &LoaderError{Code: ErrTruncatedCHR, Detail: "only 8KiB CHR is supported"}
	}

	prgSize := prgBanks * prgBankSize
	chrSize := chrBanks * chrBankSize
	want := headerSize + prgSize + chrSize
	body := data[headerSize:]

	if len(body) < prgSize {
		return nil, &LoaderError{Code: ErrTruncatedPRG}
	}
	prg := body[:prgSize]
	body = body[prgSize:]

	if len(body) < chrSize {
		return nil, &LoaderError{Code: ErrTruncatedCHR}
	}
	chr := body[:chrSize]
	body = body[chrSize:]

	if len(body) != 0 {
		return nil, &LoaderError{Code: ErrTrailingData, Detail: fmt.Sprintf("%d extra byte(s), want total length %d", len(body), want)}
	}

	cart := &Cartridge{}
	switch {
	case control1&0x08 != 0:
		cart.Mirroring = MirrorFourScreen
	case control1&0x01 != 0:
		cart.Mirroring = MirrorVertical
	default:
		cart.Mirroring = MirrorHorizontal
	}
	_ = control2 // mapper-high nibble/PAL flag: unused by NROM

	// NROM direct mapping: a single 16KiB bank is mirrored across the
	// whole $8000-$FFFF window; a 32KiB image is copied in directly.
	if prgBanks == 1 {
		copy(cart.PRG[:prgBankSize], prg)
		copy(cart.PRG[prgBankSize:], prg)
	} else {
		copy(cart.PRG[:], prg)
	}
	if chrBanks == 1 {
		copy(cart.CHR[:], chr)
	}
	// chrBanks == 0 means CHR RAM on real hardware; this emulator treats
	// it as a zeroed, writable pattern-table region (see internal/memory).

	return cart, nil
}
