package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

func printJSON(w io.Writer, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "error encoding output: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(b))
}

// printLogTail prints the last n lines of the instance log file. A
// missing log is reported, not an error; the instance may simply never
// have been started.
func printLogTail(w io.Writer, path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "no log file at %s\n", path)
			return nil
		}
		return err
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
