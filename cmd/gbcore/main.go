// Command gbcore loads a cartridge ROM and an optional boot ROM and drives
// the CPU/MMU core, either for scripted headless runs or as a stepping
// harness for state inspection (§4.8, §6).
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gbcore/internal/cpu"
	"gbcore/internal/mmu"
	"gbcore/internal/state"
)

func banner() {
	fmt.Println("gbcore — cycle-accurate handheld CPU/MMU/cartridge core")
	fmt.Println("Loads a ROM, steps the CPU, and can print a state snapshot for test-ROM style runs.")
}

func main() {
	var romPath string
	var bootRomPath string
	var steps int
	var traceLevel string

	rootCmd := &cobra.Command{
		Use:   "gbcore",
		Short: "Run a cartridge image against the emulation core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(romPath, bootRomPath, steps, traceLevel)
		},
	}
	rootCmd.Flags().StringVar(&romPath, "rom", "", "path to the cartridge ROM image (required)")
	rootCmd.Flags().StringVar(&bootRomPath, "boot-rom", "", "path to a 256-byte boot ROM (defaults to an all-zero stub)")
	rootCmd.Flags().IntVar(&steps, "steps", 0, "run headless for N instructions, then print a final state snapshot")
	rootCmd.Flags().StringVar(&traceLevel, "trace-level", "info", "log verbosity: trace, debug, info, warn, error")
	_ = rootCmd.MarkFlagRequired("rom")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(romPath, bootRomPath string, steps int, traceLevel string) error {
	configureLogging(traceLevel)
	banner()

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	bootRom := make([]byte, mmu.BootRomSize)
	if bootRomPath != "" {
		b, err := os.ReadFile(bootRomPath)
		if err != nil {
			return fmt.Errorf("reading boot rom: %w", err)
		}
		if len(b) != mmu.BootRomSize {
			return fmt.Errorf("boot rom must be exactly %d bytes, got %d", mmu.BootRomSize, len(b))
		}
		copy(bootRom, b)
	}

	m, err := mmu.New(rom, bootRom)
	if err != nil {
		return fmt.Errorf("constructing mmu: %w", err)
	}
	c := cpu.NewWithMMU(m)

	header := m.Cartridge().Header()
	fmt.Printf("Loaded %s (%d bytes), title=%q type=%s\n",
		romPath, len(rom), header.Title, header.CartridgeType)

	if steps <= 0 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		c.Step()
	}

	printSnapshot(state.Capture(c, m))
	return nil
}

// configureLogging sets the package-level zerolog loggers' verbosity and
// picks a console writer only when stdout is an interactive terminal, so
// piped/scripted runs get plain JSON lines instead of ANSI color codes.
func configureLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func printSnapshot(snap state.Snapshot) {
	fmt.Println("\n-- state snapshot --")
	for _, r := range snap.Registers {
		fmt.Printf("  %-3s = %#04x\n", r.Name, r.Value)
	}
	fmt.Printf("  flags: Z=%v N=%v H=%v C=%v\n", snap.Flags.Z, snap.Flags.N, snap.Flags.H, snap.Flags.C)
	fmt.Printf("  IME=%v halted=%v bootMode=%v\n", snap.IME, snap.Halted, snap.BootMode)
	fmt.Printf("  rom bank0=%d bank1=%d ram bank=%d\n", snap.ROMBank0, snap.ROMBank1, snap.RAMBank)
	if snap.SerialASCII != "" {
		fmt.Printf("  serial: %q\n", snap.SerialASCII)
	}
	fmt.Println("  disassembly:")
	for _, l := range snap.Disassembly {
		marker := "  "
		if l.IsPC {
			marker = "->"
		}
		fmt.Printf("  %s %#04x  %-8s %s\n", marker, l.Address, l.HexBytes, l.Mnemonic)
	}
}
