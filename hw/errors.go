package hw

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMapper is returned when a cartridge requires a mapper that is
// not emulated.
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// UnimplementedOpcodeError reports an opcode the CPU can't execute. On real
// hardware these opcodes (JAM) lock the CPU up until the next reset, the
// program can't go on.
type UnimplementedOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode $%02X at $%04X", e.Opcode, e.PC)
}
