// Package repl provides a line based debugger front-end. When
// attached to a terminal, line editing and history are provided by
// golang.org/x/term.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/thelolagemann/dmgcore/pkg/debugger"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	"golang.org/x/term"
)

func init() {
	r := New(os.Stdin, os.Stdout)
	debugger.Install("repl", r, []debugger.FrontendOption{
		{
			Name:        "prompt",
			Default:     DefaultPrompt,
			Value:       &r.Prompt,
			Description: "The prompt shown before each command",
			Type:        "string",
		},
	})
}

// DefaultPrompt is the prompt used when none is set.
const DefaultPrompt = "(dmg) "

// REPL reads one command per line and prints each response. An
// empty line repeats the previous command.
type REPL struct {
	Prompt string

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // serialises writes to out
}

// New returns a REPL reading from in and writing to out.
func New(in io.Reader, out io.Writer) *REPL {
	return &REPL{
		Prompt: DefaultPrompt,
		in:     in,
		out:    out,
	}
}

type lineReader interface {
	ReadLine() (string, error)
}

type scanner struct {
	*bufio.Scanner
}

func (s scanner) ReadLine() (string, error) {
	if s.Scan() {
		return s.Text(), nil
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// open returns the line reader and writer for the REPL, switching
// the terminal into raw mode if in is one.
func (r *REPL) open() (lineReader, io.Writer, func(), error) {
	if f, ok := r.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("repl: %w", err)
		}

		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{r.in, r.out}, r.Prompt)
		if w, h, err := term.GetSize(fd); err == nil {
			_ = t.SetSize(w, h)
		}

		return t, t, func() { _ = term.Restore(fd, state) }, nil
	}

	return scanner{bufio.NewScanner(r.in)}, r.out, func() {}, nil
}

// Start implements debugger.Frontend.
func (r *REPL) Start(ctx context.Context, emu emulator.Controller) error {
	lines, w, restore, err := r.open()
	if err != nil {
		return err
	}
	defer restore()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.printEvents(ctx, emu.Events(), w)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	var last *emulator.CommandPacket
	for {
		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("repl: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch strings.TrimSpace(line) {
		case "help", "h", "?":
			r.write(w, debugger.Help+"\n")
			continue
		}

		cmd, err := emulator.ParseCommand(line)
		if errors.Is(err, emulator.ErrEmptyCommand) {
			if last == nil {
				continue
			}
			cmd = *last
		} else if err != nil {
			r.write(w, fmt.Sprintf("error: %v\n", err))
			continue
		}
		last = &cmd

		resp := emu.SendCommand(cmd)
		r.write(w, debugger.Format(resp))

		if cmd.Command == emulator.CommandClose || errors.Is(resp.Error, emulator.ErrClosed) {
			return nil
		}
	}
}

func (r *REPL) printEvents(ctx context.Context, events <-chan emulator.ResponsePacket, w io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.write(w, debugger.Format(ev))
		}
	}
}

func (r *REPL) write(w io.Writer, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(w, s)
}
