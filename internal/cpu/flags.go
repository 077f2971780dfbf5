package cpu

// Status register bit masks
const (
	cFlagMask = 0x01
	zFlagMask = 0x02
	iFlagMask = 0x04
	dFlagMask = 0x08
	bFlagMask = 0x10
	rFlagMask = 0x20
	vFlagMask = 0x40
	nFlagMask = 0x80
)

// Status holds the eight processor status bits as named booleans
type Status struct {
	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode
	B bool // Break
	R bool // Reserved (bit 5)
	V bool // Overflow
	N bool // Negative
}

// Byte packs the flags into the processor status byte
func (s Status) Byte() uint8 {
	var status uint8
	if s.C {
		status |= cFlagMask
	}
	if s.Z {
		status |= zFlagMask
	}
	if s.I {
		status |= iFlagMask
	}
	if s.D {
		status |= dFlagMask
	}
	if s.B {
		status |= bFlagMask
	}
	if s.R {
		status |= rFlagMask
	}
	if s.V {
		status |= vFlagMask
	}
	if s.N {
		status |= nFlagMask
	}
	return status
}

// SetByte unpacks a processor status byte, all eight bits exactly
func (s *Status) SetByte(status uint8) {
	s.C = (status & cFlagMask) != 0
	s.Z = (status & zFlagMask) != 0
	s.I = (status & iFlagMask) != 0
	s.D = (status & dFlagMask) != 0
	s.B = (status & bFlagMask) != 0
	s.R = (status & rFlagMask) != 0
	s.V = (status & vFlagMask) != 0
	s.N = (status & nFlagMask) != 0
}

// String renders the flags as "NV-BDIZC", upper case when set and lower
// case when clear. The reserved bit shows as '-' or '1'.
func (s Status) String() string {
	flags := []byte("nv-bdizc")
	if s.N {
		flags[0] = 'N'
	}
	if s.V {
		flags[1] = 'V'
	}
	if s.R {
		flags[2] = '1'
	}
	if s.B {
		flags[3] = 'B'
	}
	if s.D {
		flags[4] = 'D'
	}
	if s.I {
		flags[5] = 'I'
	}
	if s.Z {
		flags[6] = 'Z'
	}
	if s.C {
		flags[7] = 'C'
	}
	return string(flags)
}

// setZN updates the zero and negative flags from a result byte
func (s *Status) setZN(value uint8) {
	s.Z = value == 0
	s.N = (value & nFlagMask) != 0
}
