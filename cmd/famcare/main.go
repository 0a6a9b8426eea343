// Command famcare is the FamilyCare command-line tool.
package main

import (
	"os"

	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
