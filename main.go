package main

import (
	"os"

	hue "github.com/dpatterbee/hue/src"
)

func main() {
	os.Exit(hue.Run(os.Args[1:]))
}
