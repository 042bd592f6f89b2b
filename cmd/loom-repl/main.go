// Command loom-repl is an interactive shell over the loom engine, useful
// for poking at a buffer's behavior without wiring up a full terminal UI.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/loomtext/loom"
)

// REPL holds the state of the interactive session.
type REPL struct {
	engine *loom.Engine
	buf    *loom.Buffer
	split  *loom.SplitViewState
	reader *bufio.Reader
}

func main() {
	fmt.Println("loom REPL - interactive text engine demo")
	fmt.Println("Type 'help' for available commands, 'quit' to exit")
	fmt.Println()

	repl := &REPL{
		engine: loom.New(),
		reader: bufio.NewReader(os.Stdin),
	}
	defer repl.engine.Close()

	for {
		fmt.Print("loom> ")
		input, err := repl.reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nGoodbye!")
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !repl.handleCommand(input) {
			break
		}
	}
}

func (r *REPL) handleCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		r.printHelp()
	case "quit", "exit":
		fmt.Println("Goodbye!")
		return false
	case "new":
		r.cmdNew(args)
	case "status":
		r.cmdStatus()
	case "caret":
		r.cmdCaret()
	case "move":
		r.cmdMove(args)
	case "insert":
		r.cmdInsert(args)
	case "delete":
		r.cmdDelete(args)
	case "undo":
		r.cmdUndo()
	case "redo":
		r.cmdRedo()
	case "dump":
		r.cmdDump()
	case "line":
		r.cmdLine(args)
	case "marks":
		r.cmdMarks()
	case "stats":
		fmt.Println(r.engine.Stats())
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
	return true
}

func (r *REPL) printHelp() {
	fmt.Print(`
FILE OPERATIONS:
  new <text>        Open a new buffer with the given initial content
  status             Show buffer length, revision, and dirty state

CURSOR OPERATIONS:
  caret              Show the primary cursor's byte position and line
  move <byte>        Move the primary cursor's caret to a byte offset

EDIT OPERATIONS:
  insert <text>      Insert text at the primary cursor
  delete <n>         Delete n bytes starting at the primary cursor
  undo               Undo the most recent edit group
  redo               Redo the most recently undone edit group

INSPECTION:
  dump               Print the whole buffer
  line <n>           Print line n
  marks              List every marker currently in the buffer
  stats              Show engine-wide buffer/split/job counts

OTHER:
  help               Show this help message
  quit, exit         Exit the REPL
`)
}

func (r *REPL) cmdNew(args []string) {
	content := strings.Join(args, " ")
	r.buf = r.engine.OpenBuffer("scratch", []byte(content))
	r.split = r.engine.OpenSplit(r.buf, 24, 80)
	fmt.Printf("Created buffer with %d bytes\n", r.buf.Len())
}

func (r *REPL) requireBuffer() bool {
	if r.buf == nil {
		fmt.Println("No buffer open. Use 'new' first.")
		return false
	}
	return true
}

func (r *REPL) cmdStatus() {
	if !r.requireBuffer() {
		return
	}
	count, exact := r.buf.LineCount()
	fmt.Printf("bytes=%d revision=%d dirty=%v lines=%d (exact=%v)\n",
		r.buf.Len(), r.buf.Revision(), r.buf.Dirty(), count, exact)
}

func (r *REPL) cmdCaret() {
	if !r.requireBuffer() {
		return
	}
	at, err := r.split.Cursors().CaretOf(0)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	line, estimated, err := r.buf.ByteToLine(at)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("byte=%d line=%d (estimated=%v)\n", at, line, estimated)
}

func (r *REPL) cmdMove(args []string) {
	if !r.requireBuffer() || len(args) < 1 {
		fmt.Println("usage: move <byte>")
		return
	}
	at, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := r.split.Cursors().MoveCaret(0, at); err != nil {
		fmt.Println("error:", err)
	}
}

func (r *REPL) cmdInsert(args []string) {
	if !r.requireBuffer() {
		return
	}
	text := strings.Join(args, " ")
	at, err := r.split.Cursors().CaretOf(0)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := r.buf.Insert(at, []byte(text)); err != nil {
		fmt.Println("error:", err)
		return
	}
	_ = r.split.Cursors().MoveCaret(0, at+int64(len(text)))
}

func (r *REPL) cmdDelete(args []string) {
	if !r.requireBuffer() || len(args) < 1 {
		fmt.Println("usage: delete <n>")
		return
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	at, err := r.split.Cursors().CaretOf(0)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	end := at + n
	if end > r.buf.Len() {
		end = r.buf.Len()
	}
	if err := r.buf.Delete(at, end); err != nil {
		fmt.Println("error:", err)
	}
}

func (r *REPL) cmdUndo() {
	if !r.requireBuffer() {
		return
	}
	if err := r.buf.Undo(); err != nil {
		fmt.Println("error:", err)
	}
}

func (r *REPL) cmdRedo() {
	if !r.requireBuffer() {
		return
	}
	if err := r.buf.Redo(); err != nil {
		fmt.Println("error:", err)
	}
}

func (r *REPL) cmdDump() {
	if !r.requireBuffer() {
		return
	}
	b, err := r.buf.Read(0, r.buf.Len())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%q\n", string(b))
}

func (r *REPL) cmdLine(args []string) {
	if !r.requireBuffer() || len(args) < 1 {
		fmt.Println("usage: line <n>")
		return
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	start, err := r.buf.LineToByte(n)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	end, err := r.buf.LineToByte(n + 1)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if end > r.buf.Len() {
		end = r.buf.Len()
	}
	b, err := r.buf.Read(start, end)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%q\n", string(b))
}

func (r *REPL) cmdMarks() {
	if !r.requireBuffer() {
		return
	}
	for _, m := range r.buf.QueryMarkers(0, r.buf.Len()) {
		fmt.Printf("%s [%d,%d) %T\n", m.ID, m.Start, m.End, m.Payload)
	}
}
