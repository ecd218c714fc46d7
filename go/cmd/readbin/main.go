package main

import (
	"os"

	"github.com/lunixbochs/readbin/go/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args[1:]))
}
