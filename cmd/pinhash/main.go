// Command pinhash prints a PIN_HASH line for the wakeguard environment.
//
//	echo 4826 | pinhash
//	pinhash 4826
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	pkgauth "github.com/BradenHooton/wakeguard/pkg/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var pin string
	switch len(args) {
	case 0:
		fmt.Fprint(stderr, "Enter PIN (4-6 digits): ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read PIN: %w", err)
		}
		pin = strings.TrimSpace(line)
	case 1:
		pin = strings.TrimSpace(args[0])
	default:
		return errors.New("usage: pinhash [PIN]")
	}

	hash, err := pkgauth.HashPIN(pin)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "PIN_HASH=%s\n", hash)
	fmt.Fprintln(stderr, "Add the line above to your .env file. Keep it secret.")
	return nil
}
