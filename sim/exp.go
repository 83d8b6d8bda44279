package main

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Lz-Gustavo/beestore"
)

// TestCase reflects the .toml input files under ./input/, configuring load
// scenarios to run against a live beestore-server: a randomized mix over
// the two data domains (strings, sorted sets) the store exposes.
type TestCase struct {
	Name          string
	Addr          string
	NumCmds       int
	PercentWrites int
	PercentZSet   int
	NumDiffKeys   int
	Iterations    int
}

func newTestCase(cfg []byte) (*TestCase, error) {
	tc := &TestCase{}
	if err := toml.Unmarshal(cfg, tc); err != nil {
		return nil, err
	}
	if err := validateTestCase(tc); err != nil {
		return nil, err
	}
	return tc, nil
}

func validateTestCase(tc *TestCase) error {
	if tc.NumCmds <= 0 || tc.NumDiffKeys <= 0 || tc.Iterations <= 0 {
		return errors.New("non-positive config number")
	}
	if tc.PercentWrites < 0 || tc.PercentWrites > 100 {
		return errors.New("invalid write percentage value")
	}
	if tc.PercentZSet < 0 || tc.PercentZSet > 100 {
		return errors.New("invalid zset percentage value")
	}
	if tc.Addr == "" {
		return errors.New("no server address provided")
	}
	return nil
}

// run connects to the configured server once per iteration, sends the
// entire generated batch pipelined (all requests, then all replies), and
// records the elapsed time.
func (tc *TestCase) run() error {
	srand := rand.NewSource(time.Now().UnixNano())
	r := rand.New(srand)

	for i := 0; i < tc.Iterations; i++ {
		conn, err := net.Dial("tcp", tc.Addr)
		if err != nil {
			return err
		}

		cmds := GenerateLoad(r, tc.NumCmds, tc.PercentWrites, tc.PercentZSet, tc.NumDiffKeys)

		start := time.Now()
		for _, c := range cmds {
			if _, err := conn.Write(beestore.EncodeRequest(c.Argv)); err != nil {
				conn.Close()
				return err
			}
		}

		errCount := 0
		for range cmds {
			reply, err := beestore.ReadReply(conn)
			if err != nil {
				conn.Close()
				return err
			}
			if reply.Tag == beestore.TagErr {
				errCount++
			}
		}
		elapsed := time.Since(start)
		conn.Close()

		if err := tc.output(i, elapsed, len(cmds), errCount); err != nil {
			fmt.Println("error encountered during log output:", err.Error(), ", ignoring...")
			continue
		}
	}
	return nil
}

func (tc *TestCase) output(ind int, dur time.Duration, n, errs int) error {
	fmt.Println(
		"\n====================",
		"\n====", tc.Name,
		"\nCommands:", n,
		"\nErrors:", errs,
		"\nDuration:", dur.String(),
		"\nThroughput:", float64(n)/dur.Seconds(), "ops/s",
		"\n====================",
	)

	outF := "./output/"
	fn := fmt.Sprintf("%s%s-iteration-%d.out", outF, tc.Name, ind)
	return dumpResultIntoFile(outF, fn, n, errs, dur)
}

func dumpResultIntoFile(folder, name string, n, errs int, dur time.Duration) error {
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		os.Mkdir(folder, 0744)
	}

	out, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0744)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = fmt.Fprintf(out, "commands=%d errors=%d duration=%s throughput=%f\n",
		n, errs, dur, float64(n)/dur.Seconds())
	return err
}
