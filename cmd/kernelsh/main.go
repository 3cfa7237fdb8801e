// kernelsh is a tiny interactive shell over the storage-engine primitives
// (AA tree, extendible hash, buffer pool), for manual exploration only. It
// is not part of the engine's operational contract; dispatch is a fixed set
// of verbs, not a parser.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/arrowkv/stoat/internal/bufferpool"
	"github.com/arrowkv/stoat/internal/config"
	"github.com/arrowkv/stoat/internal/storage"
	"github.com/arrowkv/stoat/pkg/aatree"
	"github.com/arrowkv/stoat/pkg/exthash"
)

type shell struct {
	tree *aatree.Node
	hash *exthash.HashTable
	pool *bufferpool.Pool
}

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	disk, err := storage.Open(cfg.Storage.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "disk manager: %v\n", err)
		os.Exit(1)
	}
	defer disk.Close()

	sh := &shell{
		hash: exthash.New(cfg.Hash.BucketLimit),
		pool: bufferpool.NewPool(disk, cfg.BufferPool.PoolSize, bufferpool.WithNextPageID(storage.PageId(cfg.BufferPool.NextPageID))),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "stoat> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("type \\help for the verb list")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "\\q" || line == "quit" || line == "exit" {
			return
		}
		sh.dispatch(line)
	}
}

func (sh *shell) dispatch(line string) {
	fields := strings.Fields(line)
	verb := fields[0]
	args := fields[1:]

	switch verb {
	case "\\help":
		fmt.Println(`verbs:
  aa-put <u32>                 insert into the AA tree
  aa-inorder                   print (value, level) pairs in ascending order
  hash-put <u32> <u32>         insert (key, value) into the hash table
  hash-get <u32>                print all values for key
  page-new                     allocate a new page, print its id
  page-fetch <id>               fetch a page, print its id and dirty flag
  page-unpin <id> <true|false>  unpin a page, optionally marking it dirty
  page-flush <id>                flush a page to disk
  page-delete <id>               delete a page from the pool`)
	case "aa-put":
		v, err := parseU32(args, 0)
		if err != nil {
			fmt.Println(err)
			return
		}
		sh.tree = sh.tree.Put(v)
	case "aa-inorder":
		for _, vl := range sh.tree.InOrder() {
			fmt.Printf("%d@%d ", vl.Value, vl.Level)
		}
		fmt.Println()
	case "hash-put":
		k, err := parseU32(args, 0)
		if err != nil {
			fmt.Println(err)
			return
		}
		v, err := parseU32(args, 1)
		if err != nil {
			fmt.Println(err)
			return
		}
		sh.hash.Put(k, v)
	case "hash-get":
		k, err := parseU32(args, 0)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(sh.hash.Get(k))
	case "page-new":
		pg, ok, err := sh.pool.NewPage()
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		if !ok {
			fmt.Println("pool exhausted")
			return
		}
		fmt.Println("page", pg.ID())
	case "page-fetch":
		id, err := parsePageID(args, 0)
		if err != nil {
			fmt.Println(err)
			return
		}
		pg, ok, err := sh.pool.FetchPage(id)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		if !ok {
			fmt.Println("pool exhausted")
			return
		}
		fmt.Println("page", pg.ID(), "dirty", pg.IsDirty())
	case "page-unpin":
		id, err := parsePageID(args, 0)
		if err != nil {
			fmt.Println(err)
			return
		}
		if len(args) < 2 {
			fmt.Println("usage: page-unpin <id> <true|false>")
			return
		}
		dirty, err := strconv.ParseBool(args[1])
		if err != nil {
			fmt.Println("invalid dirty flag:", err)
			return
		}
		ok, err := sh.pool.UnpinPage(id, dirty)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(ok)
	case "page-flush":
		id, err := parsePageID(args, 0)
		if err != nil {
			fmt.Println(err)
			return
		}
		ok, err := sh.pool.FlushPage(id)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(ok)
	case "page-delete":
		id, err := parsePageID(args, 0)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(sh.pool.DeletePage(id))
	default:
		fmt.Printf("unknown verb: %s (try \\help)\n", verb)
	}
}

func parseU32(args []string, idx int) (uint32, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing argument %d", idx)
	}
	v, err := strconv.ParseUint(args[idx], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid u32 %q: %w", args[idx], err)
	}
	return uint32(v), nil
}

func parsePageID(args []string, idx int) (storage.PageId, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing argument %d", idx)
	}
	v, err := strconv.ParseUint(args[idx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid page id %q: %w", args[idx], err)
	}
	return storage.PageId(v), nil
}
