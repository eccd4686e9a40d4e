package hw

//go:generate go tool stringer -type=Mnemonic,AddrMode -output=opcodes_string.go

// Mnemonic identifies the operation of an instruction. Undocumented opcodes
// use the names found in the NESdev wiki. 0xEB, the undocumented copy of
// SBC immediate, is decoded as SBC.
type Mnemonic uint8

const (
	ADC Mnemonic = iota
	ALR
	ANC
	AND
	ANE
	ARR
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DCP
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	ISC
	JAM
	JMP
	JSR
	LAS
	LAX
	LDA
	LDX
	LDY
	LSR
	LXA
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	RLA
	ROL
	ROR
	RRA
	RTI
	RTS
	SAX
	SBC
	SBX
	SEC
	SED
	SEI
	SHA
	SHX
	SHY
	SLO
	SRE
	STA
	STX
	STY
	TAS
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
)

// AddrMode is the addressing mode of an instruction, defining how the
// operand address is computed.
type AddrMode uint8

const (
	IMP AddrMode = iota // implied
	ACC                 // accumulator
	IMM                 // immediate
	ZPG                 // zero page
	ZPX                 // zero page indexed with X
	ZPY                 // zero page indexed with Y
	ABS                 // absolute
	ABX                 // absolute indexed with X
	ABY                 // absolute indexed with Y
	IND                 // indirect (JMP only)
	IZX                 // indexed indirect, (zp,X)
	IZY                 // indirect indexed, (zp),Y
	REL                 // relative (branches)
)

// operand size in bytes, per addressing mode.
var operandSize = [...]uint8{
	IMP: 0, ACC: 0, IMM: 1, ZPG: 1, ZPX: 1, ZPY: 1,
	ABS: 2, ABX: 2, ABY: 2, IND: 2, IZX: 1, IZY: 1, REL: 1,
}

// access is the kind of memory access performed on the operand. It drives
// the dummy accesses and the page-crossing penalty of indexed modes: only
// reads pay the extra cycle when crossing a page, writes and
// read-modify-writes always perform the dummy read and pay a fixed cost.
type access uint8

const (
	accessNone access = iota
	accessRead
	accessWrite
	accessRMW
)

type opinfo struct {
	mn     Mnemonic
	mode   AddrMode
	cycles uint8 // base cycle count
	access access
}

// Opcode returns the decoding information of an opcode.
func Opcode(op uint8) (mn Mnemonic, mode AddrMode, cycles int) {
	info := &opcodes[op]
	return info.mn, info.mode, int(info.cycles)
}

var opcodes = [256]opinfo{
	0x00: {BRK, IMP, 7, accessNone},
	0x01: {ORA, IZX, 6, accessRead},
	0x02: {JAM, IMP, 2, accessNone},
	0x03: {SLO, IZX, 8, accessRMW},
	0x04: {NOP, ZPG, 3, accessRead},
	0x05: {ORA, ZPG, 3, accessRead},
	0x06: {ASL, ZPG, 5, accessRMW},
	0x07: {SLO, ZPG, 5, accessRMW},
	0x08: {PHP, IMP, 3, accessNone},
	0x09: {ORA, IMM, 2, accessRead},
	0x0A: {ASL, ACC, 2, accessNone},
	0x0B: {ANC, IMM, 2, accessRead},
	0x0C: {NOP, ABS, 4, accessRead},
	0x0D: {ORA, ABS, 4, accessRead},
	0x0E: {ASL, ABS, 6, accessRMW},
	0x0F: {SLO, ABS, 6, accessRMW},
	0x10: {BPL, REL, 2, accessNone},
	0x11: {ORA, IZY, 5, accessRead},
	0x12: {JAM, IMP, 2, accessNone},
	0x13: {SLO, IZY, 8, accessRMW},
	0x14: {NOP, ZPX, 4, accessRead},
	0x15: {ORA, ZPX, 4, accessRead},
	0x16: {ASL, ZPX, 6, accessRMW},
	0x17: {SLO, ZPX, 6, accessRMW},
	0x18: {CLC, IMP, 2, accessNone},
	0x19: {ORA, ABY, 4, accessRead},
	0x1A: {NOP, IMP, 2, accessNone},
	0x1B: {SLO, ABY, 7, accessRMW},
	0x1C: {NOP, ABX, 4, accessRead},
	0x1D: {ORA, ABX, 4, accessRead},
	0x1E: {ASL, ABX, 7, accessRMW},
	0x1F: {SLO, ABX, 7, accessRMW},
	0x20: {JSR, ABS, 6, accessNone},
	0x21: {AND, IZX, 6, accessRead},
	0x22: {JAM, IMP, 2, accessNone},
	0x23: {RLA, IZX, 8, accessRMW},
	0x24: {BIT, ZPG, 3, accessRead},
	0x25: {AND, ZPG, 3, accessRead},
	0x26: {ROL, ZPG, 5, accessRMW},
	0x27: {RLA, ZPG, 5, accessRMW},
	0x28: {PLP, IMP, 4, accessNone},
	0x29: {AND, IMM, 2, accessRead},
	0x2A: {ROL, ACC, 2, accessNone},
	0x2B: {ANC, IMM, 2, accessRead},
	0x2C: {BIT, ABS, 4, accessRead},
	0x2D: {AND, ABS, 4, accessRead},
	0x2E: {ROL, ABS, 6, accessRMW},
	0x2F: {RLA, ABS, 6, accessRMW},
	0x30: {BMI, REL, 2, accessNone},
	0x31: {AND, IZY, 5, accessRead},
	0x32: {JAM, IMP, 2, accessNone},
	0x33: {RLA, IZY, 8, accessRMW},
	0x34: {NOP, ZPX, 4, accessRead},
	0x35: {AND, ZPX, 4, accessRead},
	0x36: {ROL, ZPX, 6, accessRMW},
	0x37: {RLA, ZPX, 6, accessRMW},
	0x38: {SEC, IMP, 2, accessNone},
	0x39: {AND, ABY, 4, accessRead},
	0x3A: {NOP, IMP, 2, accessNone},
	0x3B: {RLA, ABY, 7, accessRMW},
	0x3C: {NOP, ABX, 4, accessRead},
	0x3D: {AND, ABX, 4, accessRead},
	0x3E: {ROL, ABX, 7, accessRMW},
	0x3F: {RLA, ABX, 7, accessRMW},
	0x40: {RTI, IMP, 6, accessNone},
	0x41: {EOR, IZX, 6, accessRead},
	0x42: {JAM, IMP, 2, accessNone},
	0x43: {SRE, IZX, 8, accessRMW},
	0x44: {NOP, ZPG, 3, accessRead},
	0x45: {EOR, ZPG, 3, accessRead},
	0x46: {LSR, ZPG, 5, accessRMW},
	0x47: {SRE, ZPG, 5, accessRMW},
	0x48: {PHA, IMP, 3, accessNone},
	0x49: {EOR, IMM, 2, accessRead},
	0x4A: {LSR, ACC, 2, accessNone},
	0x4B: {ALR, IMM, 2, accessRead},
	0x4C: {JMP, ABS, 3, accessNone},
	0x4D: {EOR, ABS, 4, accessRead},
	0x4E: {LSR, ABS, 6, accessRMW},
	0x4F: {SRE, ABS, 6, accessRMW},
	0x50: {BVC, REL, 2, accessNone},
	0x51: {EOR, IZY, 5, accessRead},
	0x52: {JAM, IMP, 2, accessNone},
	0x53: {SRE, IZY, 8, accessRMW},
	0x54: {NOP, ZPX, 4, accessRead},
	0x55: {EOR, ZPX, 4, accessRead},
	0x56: {LSR, ZPX, 6, accessRMW},
	0x57: {SRE, ZPX, 6, accessRMW},
	0x58: {CLI, IMP, 2, accessNone},
	0x59: {EOR, ABY, 4, accessRead},
	0x5A: {NOP, IMP, 2, accessNone},
	0x5B: {SRE, ABY, 7, accessRMW},
	0x5C: {NOP, ABX, 4, accessRead},
	0x5D: {EOR, ABX, 4, accessRead},
	0x5E: {LSR, ABX, 7, accessRMW},
	0x5F: {SRE, ABX, 7, accessRMW},
	0x60: {RTS, IMP, 6, accessNone},
	0x61: {ADC, IZX, 6, accessRead},
	0x62: {JAM, IMP, 2, accessNone},
	0x63: {RRA, IZX, 8, accessRMW},
	0x64: {NOP, ZPG, 3, accessRead},
	0x65: {ADC, ZPG, 3, accessRead},
	0x66: {ROR, ZPG, 5, accessRMW},
	0x67: {RRA, ZPG, 5, accessRMW},
	0x68: {PLA, IMP, 4, accessNone},
	0x69: {ADC, IMM, 2, accessRead},
	0x6A: {ROR, ACC, 2, accessNone},
	0x6B: {ARR, IMM, 2, accessRead},
	0x6C: {JMP, IND, 5, accessNone},
	0x6D: {ADC, ABS, 4, accessRead},
	0x6E: {ROR, ABS, 6, accessRMW},
	0x6F: {RRA, ABS, 6, accessRMW},
	0x70: {BVS, REL, 2, accessNone},
	0x71: {ADC, IZY, 5, accessRead},
	0x72: {JAM, IMP, 2, accessNone},
	0x73: {RRA, IZY, 8, accessRMW},
	0x74: {NOP, ZPX, 4, accessRead},
	0x75: {ADC, ZPX, 4, accessRead},
	0x76: {ROR, ZPX, 6, accessRMW},
	0x77: {RRA, ZPX, 6, accessRMW},
	0x78: {SEI, IMP, 2, accessNone},
	0x79: {ADC, ABY, 4, accessRead},
	0x7A: {NOP, IMP, 2, accessNone},
	0x7B: {RRA, ABY, 7, accessRMW},
	0x7C: {NOP, ABX, 4, accessRead},
	0x7D: {ADC, ABX, 4, accessRead},
	0x7E: {ROR, ABX, 7, accessRMW},
	0x7F: {RRA, ABX, 7, accessRMW},
	0x80: {NOP, IMM, 2, accessRead},
	0x81: {STA, IZX, 6, accessWrite},
	0x82: {NOP, IMM, 2, accessRead},
	0x83: {SAX, IZX, 6, accessWrite},
	0x84: {STY, ZPG, 3, accessWrite},
	0x85: {STA, ZPG, 3, accessWrite},
	0x86: {STX, ZPG, 3, accessWrite},
	0x87: {SAX, ZPG, 3, accessWrite},
	0x88: {DEY, IMP, 2, accessNone},
	0x89: {NOP, IMM, 2, accessRead},
	0x8A: {TXA, IMP, 2, accessNone},
	0x8B: {ANE, IMM, 2, accessRead},
	0x8C: {STY, ABS, 4, accessWrite},
	0x8D: {STA, ABS, 4, accessWrite},
	0x8E: {STX, ABS, 4, accessWrite},
	0x8F: {SAX, ABS, 4, accessWrite},
	0x90: {BCC, REL, 2, accessNone},
	0x91: {STA, IZY, 6, accessWrite},
	0x92: {JAM, IMP, 2, accessNone},
	0x93: {SHA, IZY, 6, accessWrite},
	0x94: {STY, ZPX, 4, accessWrite},
	0x95: {STA, ZPX, 4, accessWrite},
	0x96: {STX, ZPY, 4, accessWrite},
	0x97: {SAX, ZPY, 4, accessWrite},
	0x98: {TYA, IMP, 2, accessNone},
	0x99: {STA, ABY, 5, accessWrite},
	0x9A: {TXS, IMP, 2, accessNone},
	0x9B: {TAS, ABY, 5, accessWrite},
	0x9C: {SHY, ABX, 5, accessWrite},
	0x9D: {STA, ABX, 5, accessWrite},
	0x9E: {SHX, ABY, 5, accessWrite},
	0x9F: {SHA, ABY, 5, accessWrite},
	0xA0: {LDY, IMM, 2, accessRead},
	0xA1: {LDA, IZX, 6, accessRead},
	0xA2: {LDX, IMM, 2, accessRead},
	0xA3: {LAX, IZX, 6, accessRead},
	0xA4: {LDY, ZPG, 3, accessRead},
	0xA5: {LDA, ZPG, 3, accessRead},
	0xA6: {LDX, ZPG, 3, accessRead},
	0xA7: {LAX, ZPG, 3, accessRead},
	0xA8: {TAY, IMP, 2, accessNone},
	0xA9: {LDA, IMM, 2, accessRead},
	0xAA: {TAX, IMP, 2, accessNone},
	0xAB: {LXA, IMM, 2, accessRead},
	0xAC: {LDY, ABS, 4, accessRead},
	0xAD: {LDA, ABS, 4, accessRead},
	0xAE: {LDX, ABS, 4, accessRead},
	0xAF: {LAX, ABS, 4, accessRead},
	0xB0: {BCS, REL, 2, accessNone},
	0xB1: {LDA, IZY, 5, accessRead},
	0xB2: {JAM, IMP, 2, accessNone},
	0xB3: {LAX, IZY, 5, accessRead},
	0xB4: {LDY, ZPX, 4, accessRead},
	0xB5: {LDA, ZPX, 4, accessRead},
	0xB6: {LDX, ZPY, 4, accessRead},
	0xB7: {LAX, ZPY, 4, accessRead},
	0xB8: {CLV, IMP, 2, accessNone},
	0xB9: {LDA, ABY, 4, accessRead},
	0xBA: {TSX, IMP, 2, accessNone},
	0xBB: {LAS, ABY, 4, accessRead},
	0xBC: {LDY, ABX, 4, accessRead},
	0xBD: {LDA, ABX, 4, accessRead},
	0xBE: {LDX, ABY, 4, accessRead},
	0xBF: {LAX, ABY, 4, accessRead},
	0xC0: {CPY, IMM, 2, accessRead},
	0xC1: {CMP, IZX, 6, accessRead},
	0xC2: {NOP, IMM, 2, accessRead},
	0xC3: {DCP, IZX, 8, accessRMW},
	0xC4: {CPY, ZPG, 3, accessRead},
	0xC5: {CMP, ZPG, 3, accessRead},
	0xC6: {DEC, ZPG, 5, accessRMW},
	0xC7: {DCP, ZPG, 5, accessRMW},
	0xC8: {INY, IMP, 2, accessNone},
	0xC9: {CMP, IMM, 2, accessRead},
	0xCA: {DEX, IMP, 2, accessNone},
	0xCB: {SBX, IMM, 2, accessRead},
	0xCC: {CPY, ABS, 4, accessRead},
	0xCD: {CMP, ABS, 4, accessRead},
	0xCE: {DEC, ABS, 6, accessRMW},
	0xCF: {DCP, ABS, 6, accessRMW},
	0xD0: {BNE, REL, 2, accessNone},
	0xD1: {CMP, IZY, 5, accessRead},
	0xD2: {JAM, IMP, 2, accessNone},
	0xD3: {DCP, IZY, 8, accessRMW},
	0xD4: {NOP, ZPX, 4, accessRead},
	0xD5: {CMP, ZPX, 4, accessRead},
	0xD6: {DEC, ZPX, 6, accessRMW},
	0xD7: {DCP, ZPX, 6, accessRMW},
	0xD8: {CLD, IMP, 2, accessNone},
	0xD9: {CMP, ABY, 4, accessRead},
	0xDA: {NOP, IMP, 2, accessNone},
	0xDB: {DCP, ABY, 7, accessRMW},
	0xDC: {NOP, ABX, 4, accessRead},
	0xDD: {CMP, ABX, 4, accessRead},
	0xDE: {DEC, ABX, 7, accessRMW},
	0xDF: {DCP, ABX, 7, accessRMW},
	0xE0: {CPX, IMM, 2, accessRead},
	0xE1: {SBC, IZX, 6, accessRead},
	0xE2: {NOP, IMM, 2, accessRead},
	0xE3: {ISC, IZX, 8, accessRMW},
	0xE4: {CPX, ZPG, 3, accessRead},
	0xE5: {SBC, ZPG, 3, accessRead},
	0xE6: {INC, ZPG, 5, accessRMW},
	0xE7: {ISC, ZPG, 5, accessRMW},
	0xE8: {INX, IMP, 2, accessNone},
	0xE9: {SBC, IMM, 2, accessRead},
	0xEA: {NOP, IMP, 2, accessNone},
	0xEB: {SBC, IMM, 2, accessRead},
	0xEC: {CPX, ABS, 4, accessRead},
	0xED: {SBC, ABS, 4, accessRead},
	0xEE: {INC, ABS, 6, accessRMW},
	0xEF: {ISC, ABS, 6, accessRMW},
	0xF0: {BEQ, REL, 2, accessNone},
	0xF1: {SBC, IZY, 5, accessRead},
	0xF2: {JAM, IMP, 2, accessNone},
	0xF3: {ISC, IZY, 8, accessRMW},
	0xF4: {NOP, ZPX, 4, accessRead},
	0xF5: {SBC, ZPX, 4, accessRead},
	0xF6: {INC, ZPX, 6, accessRMW},
	0xF7: {ISC, ZPX, 6, accessRMW},
	0xF8: {SED, IMP, 2, accessNone},
	0xF9: {SBC, ABY, 4, accessRead},
	0xFA: {NOP, IMP, 2, accessNone},
	0xFB: {ISC, ABY, 7, accessRMW},
	0xFC: {NOP, ABX, 4, accessRead},
	0xFD: {SBC, ABX, 4, accessRead},
	0xFE: {INC, ABX, 7, accessRMW},
	0xFF: {ISC, ABX, 7, accessRMW},
}
