package resolver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrz1836/greencli/internal/gdk"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// Console resolves two-factor challenges interactively.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole reads answers from in and writes prompts to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// SelectMethod lists the methods and reads a choice by index. A single
// method is chosen without asking.
func (c *Console) SelectMethod(methods []string) (string, error) {
	switch len(methods) {
	case 0:
		return "", greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"methods": "none offered"})
	case 1:
		return methods[0], nil
	}

	for i, method := range methods {
		_, _ = fmt.Fprintf(c.out, "%d) %s\n", i, method)
	}
	_, _ = fmt.Fprint(c.out, "Select factor: ")

	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	index, err := strconv.Atoi(line)
	if err != nil || index < 0 || index >= len(methods) {
		return "", greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"factor": line})
	}
	return methods[index], nil
}

// Resolve prompts for the code. The answer is passed on unvalidated; the
// backend decides whether it is right.
func (c *Console) Resolve(challenge gdk.TwoFactorChallenge) (string, error) {
	_, _ = fmt.Fprintf(c.out, "Enter 2fa code for action '%s' sent by %s (%s attempts remaining): ",
		challenge.Action, challenge.Method, challenge.AttemptsRemaining)
	return c.readLine()
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

var _ TwoFactorResolver = (*Console)(nil)
