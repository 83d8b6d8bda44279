package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/Lz-Gustavo/beestore"
)

var cli struct {
	Addr string   `help:"Server address." default:"127.0.0.1:1234"`
	Args []string `arg:"" optional:"" help:"Command and arguments for a single one-shot request. If omitted, beestore-cli reads a REPL loop from stdin."`
}

func main() {
	kong.Parse(&cli, kong.Description("beestore-cli sends one request and prints its reply, or drives a REPL when given no arguments."))

	conn, err := net.Dial("tcp", cli.Addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "beestore-cli:", err)
		os.Exit(1)
	}
	defer conn.Close()

	if len(cli.Args) > 0 {
		if err := sendAndPrint(conn, cli.Args); err != nil {
			fmt.Fprintln(os.Stderr, "beestore-cli:", err)
			os.Exit(1)
		}
		return
	}

	repl(conn)
}

// sendAndPrint encodes argv as one request, reads back exactly one reply,
// and prints it in the human-readable per-tag form.
func sendAndPrint(conn net.Conn, argv []string) error {
	b := make([][]byte, len(argv))
	for i, a := range argv {
		b[i] = []byte(a)
	}

	if _, err := conn.Write(beestore.EncodeRequest(b)); err != nil {
		return err
	}
	reply, err := beestore.ReadReply(conn)
	if err != nil {
		return err
	}
	for _, line := range beestore.FormatReply(reply) {
		fmt.Println(line)
	}
	return nil
}

// repl reads one command per line from stdin, a convenience mode absent
// from the wire protocol itself. It stays close to a shell, splitting on
// whitespace rather than supporting quoting.
func repl(conn net.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "beestore> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			argv := strings.Fields(line)
			if err := sendAndPrint(conn, argv); err != nil {
				fmt.Fprintln(os.Stderr, "beestore-cli:", err)
				return
			}
		}
		fmt.Fprint(os.Stderr, "beestore> ")
	}
}
