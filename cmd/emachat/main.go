// Command emachat is a terminal client for the ema chat backend.
//
// Usage:
//
//	emachat [flags]          start the chat UI
//	emachat schema           print the JSON Schemas of the backend wire bodies
//
// Keys:
//
//	enter    send the pending input
//	ctrl+r   start or stop recording; the transcription is appended to the input
//	ctrl+p   speak or stop the latest assistant message
//	ctrl+t   switch model
//	ctrl+c   quit
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
