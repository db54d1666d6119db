package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Cmd wraps a single external command invocation. Output is streamed to the
// terminal when verbose, otherwise captured and only shown on failure.
type Cmd struct {
	cmd      string
	args     []string
	verbose  bool
	preText  string
	postText string
	output   string
}

func New(c string) *Cmd {
	return &Cmd{
		cmd: c,
	}
}

func (c *Cmd) Arg(args ...string) *Cmd {
	c.args = append(c.args, args...)
	return c
}

func (c *Cmd) SetVerbose(verbosity bool) *Cmd {
	c.verbose = verbosity
	return c
}

func (c *Cmd) PreInfo(msg string) *Cmd {
	c.preText = msg
	return c
}

func (c *Cmd) PostInfo(msg string) *Cmd {
	c.postText = msg
	return c
}

func (c *Cmd) Run(ctx context.Context) error {
	if c.cmd == "" {
		return errors.New("command not set")
	}
	if c.preText != "" {
		log.Info().Msg(c.preText)
	}

	cmd := exec.CommandContext(ctx, c.cmd, c.args...)

	// pipe the commands output to the applications
	var b bytes.Buffer
	if c.verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}

	log.Debug().Str("cmd", c.cmd).Interface("args", c.args).Msg("Running")
	err := cmd.Run()

	if ctx.Err() != nil {
		if ctx.Err() == context.Canceled {
			log.Warn().Str("cmd", c.cmd).Msg("Command was cancelled")
		} else if ctx.Err() == context.DeadlineExceeded {
			log.Warn().Str("cmd", c.cmd).Msg("Command timed out")
		}
		return ctx.Err()
	}

	if err != nil {
		log.Error().Err(err).Str("cmd", c.cmd).Interface("args", c.args).Msg("Could not run command")
		c.output = b.String()
		log.Error().Msg(c.output)
		return err
	}
	c.output = b.String()

	if c.postText != "" {
		log.Info().Msg(c.postText)
	}
	return nil
}

// Output runs the command with stdout and stderr always captured, regardless
// of verbosity, and returns them. Used for queries like `docker image inspect`.
func (c *Cmd) Output(ctx context.Context) (string, error) {
	if c.cmd == "" {
		return "", errors.New("command not set")
	}

	cmd := exec.CommandContext(ctx, c.cmd, c.args...)

	var b bytes.Buffer
	cmd.Stdout = &b
	cmd.Stderr = &b

	log.Debug().Str("cmd", c.cmd).Interface("args", c.args).Msg("Running")
	err := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	c.output = b.String()
	return c.output, err
}

// RunQuiet runs the command discarding all output and logging nothing on
// failure. Used for probes where a non-zero exit is an answer, not an error.
func (c *Cmd) RunQuiet(ctx context.Context) error {
	if c.cmd == "" {
		return errors.New("command not set")
	}

	cmd := exec.CommandContext(ctx, c.cmd, c.args...)

	log.Debug().Str("cmd", c.cmd).Interface("args", c.args).Msg("Probing")
	return cmd.Run()
}

func (c *Cmd) String() string {
	return strings.Trim(fmt.Sprintf("%s %s", c.cmd, strings.Join(c.args, " ")), " ")
}
