// Command c0vm is a small CLI driver around the vm package: it loads a
// compiled program image and runs it, optionally single-stepping it
// interactively.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/peterh/liner"
	cli "gopkg.in/urfave/cli.v1"

	c0vm "github.com/go-c0vm/c0vm"
	"github.com/go-c0vm/c0vm/internal/flushio"
	"github.com/go-c0vm/c0vm/internal/image"
	"github.com/go-c0vm/c0vm/internal/logio"
	"github.com/go-c0vm/c0vm/internal/nativelib"
)

func main() {
	var log logio.Logger
	log.SetOutput(nopCloser{os.Stderr})

	app := cli.NewApp()
	app.Name = "c0vm"
	app.Usage = "run and inspect compiled C0VM program images"
	app.Commands = []cli.Command{
		runCommand(&log),
		dumpCommand(&log),
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("%v", err)
	}
	os.Exit(log.ExitCode())
}

func runCommand(log *logio.Logger) cli.Command {
	return cli.Command{
		Name:      "run",
		Usage:     "execute a compiled program image",
		ArgsUsage: "<image file>",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "step", Usage: "single-step interactively"},
			cli.IntFlag{Name: "mem-limit", Usage: "heap byte limit (0 = unlimited)"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("run: missing image file argument")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			img, err := image.Decode(f)
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}

			out := flushio.NewWriteFlusher(colorable.NewColorableStdout())
			defer out.Flush()
			opts := []c0vm.Option{
				c0vm.WithNatives(nativelib.Table(out, os.Stdin)),
				c0vm.WithMemLimit(uint(c.Int("mem-limit"))),
				c0vm.WithLogf(log.Leveledf("TRACE")),
			}
			machine := c0vm.New(opts...)

			if c.Bool("step") {
				return stepRun(machine, img, out)
			}

			result, err := machine.Run(context.Background(), img)
			if err != nil {
				red := color.New(color.FgRed, color.Bold)
				red.Fprintf(out, "trap: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "%d\n", result)
			return nil
		},
	}
}

func dumpCommand(log *logio.Logger) cli.Command {
	return cli.Command{
		Name:      "dump",
		Usage:     "print a compiled image's pools without executing it",
		ArgsUsage: "<image file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("dump: missing image file argument")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			img, err := image.Decode(f)
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			out := colorable.NewColorableStdout()
			c0vm.DumpPools(out, img)
			for i, fd := range img.FunctionPool {
				fmt.Fprintf(out, "-- function %d --\n", i)
				c0vm.DumpCode(out, fd.Code)
			}
			return nil
		},
	}
}

// stepRun drives execution one opcode at a time via a liner-backed
// prompt, printing the current frame dump before each step.
func stepRun(machine *c0vm.VM, img *c0vm.Image, out io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	done := false
	stepper := machine.WithStepHook(func() bool {
		machine.DumpFrame(out)
		if done {
			return true
		}
		line, err := ln.Prompt("(c0vm) ")
		if err != nil {
			done = true
			return false
		}
		if line == "q" || line == "quit" {
			return false
		}
		return true
	})
	defer stepper()

	result, err := machine.Run(context.Background(), img)
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(out, "trap: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "%d\n", result)
	return nil
}

type nopCloser struct{ *os.File }

func (nopCloser) Close() error { return nil }
