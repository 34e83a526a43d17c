package main

import "github.com/devicelab-dev/board-runner/pkg/cli"

func main() {
	cli.Execute()
}
