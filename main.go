// Package main provides the entry point for the Board Tester application.
package main

import (
	"os"

	"board-tester/internal/cli"
	"board-tester/ui/mainwindow"
)

func main() {
	if err := cli.Execute(mainwindow.Run); err != nil {
		os.Exit(1)
	}
}
