// atomichash-shell is an interactive REPL for exercising an atomichash.Table
// by hand.
//
// Commands:
//
//	add <key> <value> [ttl-ms]   Insert key=value, optional TTL in milliseconds
//	get <key>                    Look up key
//	del <key>                    Delete key
//	stats                        Print table statistics
//	help                         Show this help
//	exit / quit / q              Exit
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/concurrenthash/atomichash/pkg/atomichash"
)

func main() {
	capacity := flag.Uint64P("capacity", "c", 1024, "table capacity (max entries)")
	flag.Parse()

	tbl, err := atomichash.New(atomichash.Options{MaxEntries: *capacity})
	if err != nil {
		fmt.Fprintf(os.Stderr, "atomichash-shell: %v\n", err)
		os.Exit(1)
	}
	defer tbl.Close()

	repl := &REPL{table: tbl, capacity: *capacity}
	if err := repl.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "atomichash-shell: %v\n", err)
		os.Exit(1)
	}
}

// REPL is the interactive command loop.
type REPL struct {
	table    *atomichash.Table
	capacity uint64
	liner    *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".atomichash_shell_history")
}

func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("atomichash-shell (capacity=%d)\n", r.capacity)
	fmt.Println("Type 'help' for available commands.")

	for {
		line, err := r.liner.Prompt("atomichash> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")
				r.saveHistory()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()
			return nil
		case "help", "?":
			r.printHelp()
		case "add", "put":
			r.cmdAdd(args)
		case "get":
			r.cmdGet(args)
		case "del", "delete":
			r.cmdDelete(args)
		case "stats":
			fmt.Print(r.table.Stats().Report(0))
		default:
			fmt.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{"add", "get", "del", "stats", "help", "exit", "quit"}
	var matches []string
	for _, c := range commands {
		if strings.HasPrefix(c, line) {
			matches = append(matches, c)
		}
	}
	return matches
}

func (r *REPL) printHelp() {
	fmt.Println(`commands:
  add <key> <value> [ttl-ms]   insert key=value, optional TTL in milliseconds
  get <key>                    look up key
  del <key>                    delete key
  stats                        print table statistics
  help                         show this help
  exit / quit / q              exit`)
}

func (r *REPL) cmdAdd(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: add <key> <value> [ttl-ms]")
		return
	}
	var ttl time.Duration
	if len(args) >= 3 {
		ms, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			fmt.Printf("invalid ttl-ms: %v\n", err)
			return
		}
		ttl = time.Duration(ms) * time.Millisecond
	}
	res, err := r.table.Add([]byte(args[0]), args[1], ttl, nil, nil)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(res)
}

func (r *REPL) cmdGet(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: get <key>")
		return
	}
	var out any
	res, err := r.table.Get([]byte(args[0]), nil, &out)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if res == atomichash.ResultFound {
		fmt.Printf("%v\n", out)
		return
	}
	fmt.Println(res)
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: del <key>")
		return
	}
	res, err := r.table.Delete([]byte(args[0]), nil, nil)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(res)
}
