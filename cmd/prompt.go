package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// swapped in tests so no real terminal is needed
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errEmptyPassword = errors.New("password must not be empty")

// passwordFlag reads the password from --password when given, otherwise
// prompts for it without echo. Piped stdin is read as one line.
func passwordFlag(cmd *cobra.Command, flagValue string) (string, error) {
	if cmd.Flags().Changed("password") {
		return flagValue, nil
	}
	return readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
}

func readSecret(in io.Reader, out io.Writer, prompt string) (string, error) {
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(out, prompt)
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if len(pw) == 0 {
			return "", errEmptyPassword
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errEmptyPassword
	}
	return line, nil
}
