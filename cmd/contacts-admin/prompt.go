package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword is swapped out in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

// promptNewPassword asks for a password twice without echo.
func promptNewPassword(w io.Writer) (string, error) {
	first, err := prompt(w, "New admin password: ")
	if err != nil {
		return "", err
	}
	second, err := prompt(w, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func prompt(w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
