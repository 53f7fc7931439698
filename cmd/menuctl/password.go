package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

var errPasswordMismatch = errors.New("passwords do not match")

// swapped in tests
var (
	readPassword = term.ReadPassword //nolint:gochecknoglobals
	isTerminal   = term.IsTerminal   //nolint:gochecknoglobals
)

// promptPassword reads the password without echo and asks for it twice when
// fd is a terminal. Piped input is read as a single line.
func promptPassword(fd int, in io.Reader, w io.Writer) (string, error) {
	if !isTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password error: %w", err)
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	first, err := readHidden(fd, w, "Password: ")
	if err != nil {
		return "", err
	}

	second, err := readHidden(fd, w, "Confirm password: ")
	if err != nil {
		return "", err
	}

	if first != second {
		return "", errPasswordMismatch
	}

	return first, nil
}

func readHidden(fd int, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)

	pw, err := readPassword(fd)
	fmt.Fprintln(w)

	if err != nil {
		return "", fmt.Errorf("read password error: %w", err)
	}

	return string(pw), nil
}
