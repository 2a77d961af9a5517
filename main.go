package main

import "sleepat/internal/cli"

func main() {
	cli.Execute()
}
