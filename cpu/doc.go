// Package cpu implements the Intel 8080 processor and assembler of the
// UMPK-80 trainer.
//
// The CPU has seven 8-bit registers (A, B, C, D, E, H, L), a flag register,
// a 16-bit stack pointer and program counter, and an interrupt enable
// flip-flop. Memory and ports are reached through the Bus interface; the CPU
// holds no memory of its own.
//
// The assembler provides Intel style 8080 assembly, supporting macros,
// labels, equates, and compile-time expression evaluation.
package cpu
