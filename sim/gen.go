package main

import (
	"fmt"
	"math/rand"
	"strconv"
)

// OpID indexes the command kinds the generator can emit against a live
// beestore server.
type OpID int8

const (
	OpSet OpID = iota
	OpGet
	OpZAdd
	OpZQuery
)

// GenCommand is one generated request, ready to be framed by
// beestore.EncodeRequest.
type GenCommand struct {
	Op   OpID
	Argv [][]byte
}

// GenerateLoad builds a randomized mix of n commands against diffKeys
// distinct keys. writePercent of the string-domain traffic is SET rather
// than GET; zsetPercent of all traffic targets the sorted-set commands
// (ZADD/ZQUERY) instead of the string commands.
func GenerateLoad(r *rand.Rand, n, writePercent, zsetPercent, diffKeys int) []GenCommand {
	cmds := make([]GenCommand, 0, n)
	for i := 0; i < n; i++ {
		key := strconv.Itoa(r.Intn(diffKeys))

		if r.Intn(100) < zsetPercent {
			if r.Intn(100) < writePercent {
				cmds = append(cmds, GenCommand{
					Op:   OpZAdd,
					Argv: [][]byte{[]byte("zadd"), []byte("load"), []byte(fmt.Sprintf("%f", r.Float64()*1000)), []byte(key)},
				})
			} else {
				cmds = append(cmds, GenCommand{
					Op:   OpZQuery,
					Argv: [][]byte{[]byte("zquery"), []byte("load"), []byte("0"), []byte(key), []byte("0"), []byte("1")},
				})
			}
			continue
		}

		if r.Intn(100) < writePercent {
			cmds = append(cmds, GenCommand{
				Op:   OpSet,
				Argv: [][]byte{[]byte("set"), []byte(key), []byte(strconv.Itoa(r.Int()))},
			})
		} else {
			cmds = append(cmds, GenCommand{
				Op:   OpGet,
				Argv: [][]byte{[]byte("get"), []byte(key)},
			})
		}
	}
	return cmds
}
