package main

import (
	"github.com/rigforge/rigforge/internal/cli"
)

func main() {
	cli.Execute()
}
