package cpu

import (
	"testing"
)

// AddressingTest represents a test case for operand resolution
type AddressingTest struct {
	Name            string
	Mode            AddressingMode
	Setup           func(*CPUTestHelper)
	ExpectedAddress uint16
	ExpectedSize    uint8
}

// TestResolveOperand checks the effective address of every addressing mode
func TestResolveOperand(t *testing.T) {
	tests := []AddressingTest{
		{
			Name:            "Immediate",
			Mode:            Immediate,
			ExpectedAddress: 0x8001,
			ExpectedSize:    2,
		},
		{
			Name:            "ZeroPage",
			Mode:            ZeroPage,
			Setup:           func(h *CPUTestHelper) { h.LoadProgram(0x8001, 0x42) },
			ExpectedAddress: 0x0042,
			ExpectedSize:    2,
		},
		{
			Name: "ZeroPageX_Wraps",
			Mode: ZeroPageX,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0xFF)
				h.CPU.X = 0x01
			},
			ExpectedAddress: 0x0000,
			ExpectedSize:    2,
		},
		{
			Name: "ZeroPageY_Wraps",
			Mode: ZeroPageY,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0xF0)
				h.CPU.Y = 0x20
			},
			ExpectedAddress: 0x0010,
			ExpectedSize:    2,
		},
		{
			Name:            "Absolute",
			Mode:            Absolute,
			Setup:           func(h *CPUTestHelper) { h.LoadProgram(0x8001, 0xCD, 0xAB) },
			ExpectedAddress: 0xABCD,
			ExpectedSize:    3,
		},
		{
			Name: "AbsoluteX_Crosses_Page",
			Mode: AbsoluteX,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0xF0, 0x12)
				h.CPU.X = 0x20
			},
			ExpectedAddress: 0x1310,
			ExpectedSize:    3,
		},
		{
			Name: "AbsoluteY_Wraps_Address_Space",
			Mode: AbsoluteY,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0xFF, 0xFF)
				h.CPU.Y = 0x02
			},
			ExpectedAddress: 0x0001,
			ExpectedSize:    3,
		},
		{
			Name: "Indirect",
			Mode: Indirect,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0x20, 0x01)
				h.Memory.SetBytes(0x0120, 0xFC, 0xBA)
			},
			ExpectedAddress: 0xBAFC,
			ExpectedSize:    3,
		},
		{
			// The pointer's high byte comes from the next page, not $0200
			Name: "Indirect_Pointer_Crosses_Page",
			Mode: Indirect,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0xFF, 0x02)
				h.Memory.SetByte(0x02FF, 0x00)
				h.Memory.SetByte(0x0200, 0x40)
				h.Memory.SetByte(0x0300, 0x50)
			},
			ExpectedAddress: 0x5000,
			ExpectedSize:    3,
		},
		{
			Name: "IndexedIndirect",
			Mode: IndexedIndirect,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0x20)
				h.CPU.X = 0x04
				h.Memory.SetBytes(0x0024, 0x74, 0x20)
			},
			ExpectedAddress: 0x2074,
			ExpectedSize:    2,
		},
		{
			Name: "IndexedIndirect_Index_Wraps",
			Mode: IndexedIndirect,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0xF0)
				h.CPU.X = 0x20
				h.Memory.SetBytes(0x0010, 0x00, 0x44)
			},
			ExpectedAddress: 0x4400,
			ExpectedSize:    2,
		},
		{
			Name: "IndirectIndexed",
			Mode: IndirectIndexed,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0x86)
				h.CPU.Y = 0x10
				h.Memory.SetBytes(0x0086, 0x28, 0x40)
			},
			ExpectedAddress: 0x4038,
			ExpectedSize:    2,
		},
		{
			Name: "IndirectIndexed_Pointer_Wraps",
			Mode: IndirectIndexed,
			Setup: func(h *CPUTestHelper) {
				h.LoadProgram(0x8001, 0xFF)
				h.CPU.Y = 0x01
				h.Memory.SetByte(0x00FF, 0xFF)
				h.Memory.SetByte(0x0000, 0x10)
			},
			ExpectedAddress: 0x1100,
			ExpectedSize:    2,
		},
		{
			Name:            "Relative_Forward",
			Mode:            Relative,
			Setup:           func(h *CPUTestHelper) { h.LoadProgram(0x8001, 0x05) },
			ExpectedAddress: 0x8007,
			ExpectedSize:    2,
		},
		{
			Name:            "Relative_Backward",
			Mode:            Relative,
			Setup:           func(h *CPUTestHelper) { h.LoadProgram(0x8001, 0xF6) },
			ExpectedAddress: 0x7FF8,
			ExpectedSize:    2,
		},
		{
			Name:         "Implied",
			Mode:         Implied,
			ExpectedSize: 1,
		},
		{
			Name:         "Accumulator",
			Mode:         Accumulator,
			ExpectedSize: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			helper := NewCPUTestHelper()
			helper.CPU.ResetTo(0x8000)
			if test.Setup != nil {
				test.Setup(helper)
			}

			op := helper.CPU.resolveOperand(test.Mode)

			if op.Address != test.ExpectedAddress {
				t.Errorf("%s: Expected address 0x%04X, got 0x%04X", test.Name, test.ExpectedAddress, op.Address)
			}
			if op.Size != test.ExpectedSize {
				t.Errorf("%s: Expected size %d, got %d", test.Name, test.ExpectedSize, op.Size)
			}
			if InstructionSize(test.Mode) != test.ExpectedSize {
				t.Errorf("%s: InstructionSize disagrees: %d", test.Name, InstructionSize(test.Mode))
			}
			if helper.CPU.PC != 0x8000 {
				t.Errorf("%s: resolving must not move PC, got 0x%04X", test.Name, helper.CPU.PC)
			}
		})
	}
}

// TestOperandBytesWrap checks the operand fetch at the top of memory
func TestOperandBytesWrap(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.ResetTo(0xFFFE)
	helper.Memory.SetByte(0xFFFF, 0x34)
	helper.Memory.SetByte(0x0000, 0x12)

	op := helper.CPU.resolveOperand(Absolute)
	if op.Byte != 0x34 {
		t.Errorf("Expected operand byte 0x34, got 0x%02X", op.Byte)
	}
	if op.Word != 0x1234 {
		t.Errorf("Expected operand word 0x1234, got 0x%04X", op.Word)
	}
}

// TestZeroPageIndexWrapAllValues checks (zp + X) mod 256 over every pair
func TestZeroPageIndexWrapAllValues(t *testing.T) {
	helper := NewCPUTestHelper()
	for base := 0; base < 256; base++ {
		for index := 0; index < 256; index++ {
			helper.CPU.ResetTo(0x8000)
			helper.Memory.SetByte(0x8001, uint8(base))
			helper.CPU.X = uint8(index)
			helper.CPU.Y = uint8(index)

			expected := uint16((base + index) % 256)
			if op := helper.CPU.resolveOperand(ZeroPageX); op.Address != expected {
				t.Fatalf("ZeroPageX $%02X+%02X: expected $%04X, got $%04X", base, index, expected, op.Address)
			}
			if op := helper.CPU.resolveOperand(ZeroPageY); op.Address != expected {
				t.Fatalf("ZeroPageY $%02X+%02X: expected $%04X, got $%04X", base, index, expected, op.Address)
			}
		}
	}
}
