package main

import "ezquiz/internal/cli"

func main() {
	cli.Execute()
}
