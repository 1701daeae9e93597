package main

import (
	"github.com/trezcool/rollbook/apps/cli"
)

func main() {
	cli.Execute()
}
