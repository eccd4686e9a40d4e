package hw

import (
	"fmt"
)

// Disasm disassembles the instruction at pc, without side effects on the bus.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	opcode := c.Bus.Read8(pc, true)
	info := &opcodes[opcode]

	n := operandSize[info.mode]
	buf := make([]byte, 1+n)
	buf[0] = opcode
	for i := range n {
		buf[1+i] = c.Bus.Read8(pc+1+uint16(i), true)
	}

	var oper16 uint16
	switch n {
	case 1:
		oper16 = uint16(buf[1])
	case 2:
		oper16 = uint16(buf[2])<<8 | uint16(buf[1])
	}

	return DisasmOp{
		Opcode: info.mn.String(),
		Oper:   formatOperand(info.mn, info.mode, pc, oper16),
		Buf:    buf,
		PC:     pc,
	}
}

func formatOperand(mn Mnemonic, mode AddrMode, pc, oper uint16) string {
	switch mode {
	case IMP:
		return ""
	case ACC:
		return "A"
	case IMM:
		return fmt.Sprintf("#$%02X", oper)
	case ZPG:
		return fmt.Sprintf("$%02X", oper)
	case ZPX:
		return fmt.Sprintf("$%02X,X", oper)
	case ZPY:
		return fmt.Sprintf("$%02X,Y", oper)
	case ABS:
		if mn == JMP || mn == JSR {
			return fmt.Sprintf("$%04X", oper)
		}
		return formatAddr(oper)
	case ABX:
		return formatAddr(oper) + ",X"
	case ABY:
		return formatAddr(oper) + ",Y"
	case IND:
		return fmt.Sprintf("($%04X)", oper)
	case IZX:
		return fmt.Sprintf("($%02X,X)", oper)
	case IZY:
		return fmt.Sprintf("($%02X),Y", oper)
	case REL:
		return fmt.Sprintf("$%04X", pc+2+uint16(int8(oper)))
	}
	panic(fmt.Sprintf("unexpected addressing mode %d", mode))
}
