package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var stdin io.Reader = os.Stdin

func Prompt(message string) (string, error) {
	fmt.Printf("%s: ", BrightWhite(message))
	reader := bufio.NewReader(stdin)
	text, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && text != "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// PromptPassword reads without echo when stdin is a terminal and falls back
// to a plain prompt otherwise (pipes, tests).
func PromptPassword(message string) (string, error) {
	fd := int(os.Stdin.Fd())
	if stdin != os.Stdin || !term.IsTerminal(fd) {
		return Prompt(message)
	}
	fmt.Printf("%s: ", BrightWhite(message))
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

func PromptWithDefault(message, defaultValue string) (string, error) {
	fmt.Printf("%s [%s]: ", BrightWhite(message), Dim(defaultValue))
	reader := bufio.NewReader(stdin)
	text, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && text != "") {
		return "", err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return defaultValue, nil
	}
	return trimmed, nil
}
