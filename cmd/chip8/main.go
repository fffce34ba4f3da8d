// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/loader"
	"github.com/ezrec/chip8/translate"
)

// parseDefines converts NAME=VALUE flags to assembler predefines.
func parseDefines(defines []string) (predefine map[string]string, err error) {
	predefine = map[string]string{}
	for _, define := range defines {
		name, value, ok := strings.Cut(define, "=")
		if !ok || len(name) == 0 {
			err = fmt.Errorf("%v: %w", define, ErrDefineSyntax)
			return
		}
		predefine[name] = value
	}
	return
}

// printRegisters writes the final CPU state. Terminals get the full
// dump; pipes get one vX=NN line per register.
func printRegisters(out io.Writer, c *cpu.Cpu, tty bool) {
	if tty {
		fmt.Fprint(out, c.String())
		return
	}

	for n, val := range c.Register {
		fmt.Fprintf(out, "v%X=%d\n", n, val)
	}
}

func newRunCommand() *cobra.Command {
	var system string
	var program string
	var file string
	var seeds []string
	var defines []string
	var limit int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load memory and registers, then run until halt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator()
			emu.Verbose = verbose
			if cmd.Flags().Changed("limit") {
				emu.Cpu.TickLimit = limit
			}

			if len(file) != 0 {
				var predefine map[string]string
				predefine, err = parseDefines(defines)
				if err != nil {
					return
				}
				var inf *os.File
				inf, err = os.Open(file)
				if err != nil {
					return
				}
				defer inf.Close()
				err = emu.Assemble(inf, predefine)
				if err != nil {
					return fmt.Errorf("%v: %w", file, err)
				}
			}

			if cmd.Flags().Changed("system") {
				emu.Image.System, err = loader.ParseHex(system)
				if err != nil {
					return
				}
			}
			if cmd.Flags().Changed("program") {
				emu.Image.Program, err = loader.ParseHex(program)
				if err != nil {
					return
				}
			}

			err = emu.Image.SetSeeds(seeds...)
			if err != nil {
				return
			}

			err = emu.Reset()
			if err != nil {
				return
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			err = emu.Run(ctx)
			out := cmd.OutOrStdout()
			tty := false
			if f, ok := out.(*os.File); ok {
				tty = term.IsTerminal(int(f.Fd()))
			}
			printRegisters(out, emu.Cpu, tty)

			return
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "Hex bytes for the system region (0x000)")
	cmd.Flags().StringVar(&program, "program", "", "Hex bytes for the program region (0x100)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Assembly source to load")
	cmd.Flags().StringArrayVarP(&seeds, "reg", "r", nil, "Register seed vX=VALUE (repeatable)")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Assembler predefine NAME=VALUE (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", emulator.DEFAULT_TICK_LIMIT, "Tick budget, 0 for unlimited")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")

	return cmd
}

func newAsmCommand() *cobra.Command {
	var defines []string
	var listing bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "asm [file.c8s]",
		Short: "Assemble a source file to region hex strings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			predefine, err := parseDefines(defines)
			if err != nil {
				return
			}

			inf, err := os.Open(args[0])
			if err != nil {
				return
			}
			defer inf.Close()

			emu := emulator.NewEmulator()
			emu.Verbose = verbose
			err = emu.Assemble(inf, predefine)
			if err != nil {
				return fmt.Errorf("%v: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if listing {
				fmt.Fprint(out, emu.Program.String())
				return
			}

			fmt.Fprintf(out, "system:  %X\n", emu.Image.System)
			fmt.Fprintf(out, "program: %X\n", emu.Image.Program)
			return
		},
	}

	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Assembler predefine NAME=VALUE (repeatable)")
	cmd.Flags().BoolVarP(&listing, "list", "l", false, "Print a listing instead of hex")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")

	return cmd
}

func newDisCommand() *cobra.Command {
	var base uint16

	cmd := &cobra.Command{
		Use:   "dis [hex...]",
		Short: "Disassemble hex bytes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			data, err := loader.ParseHex(strings.Join(args, " "))
			if err != nil {
				return
			}

			if int(base)+len(data) > cpu.MEMORY_SIZE {
				return cpu.ErrMemoryWriteOutOfBounds
			}

			fmt.Fprint(cmd.OutOrStdout(), cpu.Disassemble(base, data).String())
			return
		},
	}

	cmd.Flags().Uint16Var(&base, "base", cpu.PROGRAM_BASE, "Load address of the first byte")

	return cmd
}

func main() {
	var lang string

	rootCmd := &cobra.Command{
		Use:           "chip8",
		Short:         "CHIP-8 style CPU core: run, assemble and disassemble",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if len(lang) != 0 {
				translate.SetLanguage(lang)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "Message language (BCP 47), default from locale")

	rootCmd.AddCommand(newRunCommand(), newAsmCommand(), newDisCommand())

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
}
