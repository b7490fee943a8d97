package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Stdio реализует IO поверх терминала или произвольных потоков
type Stdio struct {
	in     *bufio.Reader
	out    io.Writer
	inFile *os.File // nil, если ввод не из файла

	green  *color.Color
	yellow *color.Color
	cyan   *color.Color
}

// NewStdio создает IO для os.Stdin и os.Stdout
func NewStdio() *Stdio {
	s := New(os.Stdin, color.Output)
	s.inFile = os.Stdin
	return s
}

// New создает IO для заданных потоков. Пароль читается как обычная строка.
func New(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:     bufio.NewReader(in),
		out:    out,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

// Success печатает строку зеленым с отметкой
func (s *Stdio) Success(format string, a ...any) {
	_, _ = s.green.Fprintf(s.out, "✓ "+format+"\n", a...)
}

// Warn печатает строку желтым
func (s *Stdio) Warn(format string, a ...any) {
	_, _ = s.yellow.Fprintf(s.out, format+"\n", a...)
}

// Heading печатает заголовок блока
func (s *Stdio) Heading(text string) {
	_, _ = s.cyan.Fprintf(s.out, "=== %s ===\n\n", text)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword читает пароль без эха, если ввод идет с терминала
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	if s.inFile == nil || !term.IsTerminal(int(s.inFile.Fd())) {
		return s.ReadInput(prompt)
	}

	s.Printf("%s", prompt)
	pwBytes, err := term.ReadPassword(int(s.inFile.Fd()))
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}
