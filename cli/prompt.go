package cli

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
)

// Prompter reads answers from a terminal. Nil streams fall back to the
// process's stdin and stdout.
//
// When stdin is not a terminal, answers are read one line at a time from a
// single buffered reader and no prompt is drawn, so piped input is consumed
// exactly one line per question.
type Prompter struct {
	Stdin  io.Reader
	Stdout io.Writer

	lineReader *bufio.Reader
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (p *Prompter) streams() (io.ReadCloser, io.WriteCloser) {
	var (
		stdin  io.ReadCloser  = os.Stdin
		stdout io.WriteCloser = os.Stdout
	)

	if p.Stdin != nil {
		if rc, ok := p.Stdin.(io.ReadCloser); ok {
			stdin = rc
		} else {
			stdin = io.NopCloser(p.Stdin)
		}
	}

	if p.Stdout != nil {
		if wc, ok := p.Stdout.(io.WriteCloser); ok {
			stdout = wc
		} else {
			stdout = nopWriteCloser{p.Stdout}
		}
	}

	return stdin, stdout
}

// interactive reports whether stdin is a terminal.
func (p *Prompter) interactive() bool {
	var stdin io.Reader = os.Stdin
	if p.Stdin != nil {
		stdin = p.Stdin
	}

	file, ok := stdin.(*os.File)

	return ok && readline.IsTerminal(int(file.Fd()))
}

// readLine reads the next line of a non-interactive stdin without its line
// ending. A final line without a newline is still returned; after it, io.EOF.
func (p *Prompter) readLine() (string, error) {
	if p.lineReader == nil {
		stdin, _ := p.streams()
		p.lineReader = bufio.NewReader(stdin)
	}

	line, err := p.lineReader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a yes/no question. Declining is not an error. Without a
// terminal, a line of "y" or "yes" confirms and end of input declines.
func (p *Prompter) Confirm(label string) (bool, error) {
	if !p.interactive() {
		answer, err := p.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}

			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}

	stdin, stdout := p.streams()

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     stdin,
		Stdout:    stdout,
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// StringEmptyOk asks for a line of text. The empty string is a valid answer.
func (p *Prompter) StringEmptyOk(label string) (string, error) {
	if !p.interactive() {
		return p.readLine()
	}

	stdin, stdout := p.streams()

	prompt := promptui.Prompt{
		Label:  label,
		Stdin:  stdin,
		Stdout: stdout,
	}

	return prompt.Run()
}

// Inputs prompts for one input at a time, only when the consumer asks for
// the next one. The sequence ends on Ctrl-D, Ctrl-C or end of input; any
// other failure is reported through onErr before the sequence ends.
func (p *Prompter) Inputs(label string, onErr func(error)) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			input, err := p.StringEmptyOk(label)
			if err != nil {
				if !isPromptEnd(err) && onErr != nil {
					onErr(err)
				}

				return
			}

			if !yield(input) {
				return
			}
		}
	}
}

func isPromptEnd(err error) bool {
	return errors.Is(err, promptui.ErrEOF) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrAbort) ||
		errors.Is(err, io.EOF)
}
