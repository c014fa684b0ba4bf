// Package sdr manages the rtl_fm/multimon-ng subprocess pipeline and the
// read loop that turns its output into pager records.
package sdr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// Fixed invocation parameters for the Dutch P2000 FLEX broadcast. These are
// properties of the network, not user configuration: 169.65 MHz carrier,
// FM demodulation at 22050 Hz with the ppm and gain the dongle needs.
var (
	captureArgv = []string{"rtl_fm", "-f", "169.65M", "-M", "fm", "-s", "22050", "-p", "83", "-g", "30"}
	decodeArgv  = []string{"multimon-ng", "-q", "-a", "FLEX", "-t", "raw", "/dev/stdin"}
)

// ErrAlreadyOpen is returned by Open when the connection's stream is live.
var ErrAlreadyOpen = errors.New("connection is already open")

// Conn is the subprocess pipeline as the Reader sees it. Implementations
// include the real rtl_fm/multimon-ng pair and test fakes.
type Conn interface {
	// Open spawns the pipeline. killExisting tears down any lingering
	// processes owned by this connection before respawning.
	Open(ctx context.Context, killExisting bool) error

	// Kill terminates the owned processes and clears the stream. Idempotent.
	Kill()

	// Stream returns the pipeline's output, or nil when not open.
	Stream() io.Reader
}

// Connection owns a capture process (rtl_fm) and a decode process
// (multimon-ng) with the capture output piped into the decoder. The
// decoder's stdout is the connection's stream.
type Connection struct {
	capture *exec.Cmd
	decode  *exec.Cmd
	stdout  io.ReadCloser

	captureArgv []string
	decodeArgv  []string
}

// NewConnection creates an unopened Connection for the P2000 broadcast.
func NewConnection() *Connection {
	return &Connection{
		captureArgv: captureArgv,
		decodeArgv:  decodeArgv,
	}
}

// Open spawns the capture and decode processes with the pipe wired between
// them and exposes the decoder's stdout as the connection's stream. Either
// both processes are running when Open returns nil, or neither is: a
// decoder spawn failure kills and reaps the already-started capture process
// and leaves the connection in its never-opened state.
func (c *Connection) Open(ctx context.Context, killExisting bool) error {
	if killExisting {
		c.Kill()
	}
	if c.stdout != nil {
		return ErrAlreadyOpen
	}

	capture := exec.CommandContext(ctx, c.captureArgv[0], c.captureArgv[1:]...)
	capturePipe, err := capture.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capture stdout pipe: %w", err)
	}

	decode := exec.CommandContext(ctx, c.decodeArgv[0], c.decodeArgv[1:]...)
	decode.Stdin = capturePipe
	decodePipe, err := decode.StdoutPipe()
	if err != nil {
		return fmt.Errorf("decode stdout pipe: %w", err)
	}

	if err := capture.Start(); err != nil {
		return fmt.Errorf("starting capture process: %w", err)
	}
	if err := decode.Start(); err != nil {
		// The capture process is already live; leave no orphan behind.
		_ = capture.Process.Kill()
		_ = capture.Wait()
		return fmt.Errorf("starting decode process: %w", err)
	}

	c.capture = capture
	c.decode = decode
	c.stdout = decodePipe

	slog.Debug("pipeline opened",
		"capture_pid", capture.Process.Pid,
		"decode_pid", decode.Process.Pid,
	)
	return nil
}

// Kill terminates exactly the processes this connection spawned and reaps
// them, then clears the stream so the connection can be reopened. The
// decoder normally exits on its own once the capture side of the pipe
// closes; it is killed as well in case it is wedged. Safe to call on an
// unopened or already-killed connection.
func (c *Connection) Kill() {
	if c.capture != nil {
		if c.capture.Process != nil {
			_ = c.capture.Process.Kill()
		}
		_ = c.capture.Wait()
		c.capture = nil
	}
	if c.decode != nil {
		if c.decode.Process != nil {
			_ = c.decode.Process.Kill()
		}
		_ = c.decode.Wait()
		c.decode = nil
	}
	c.stdout = nil
}

// Stream returns the decoder's stdout, or nil when the connection is not
// open. The stream is a lazy, unbounded-until-EOF sequence of text lines,
// not restartable, consumed by a single reader at a time.
func (c *Connection) Stream() io.Reader {
	if c.stdout == nil {
		return nil
	}
	return c.stdout
}
