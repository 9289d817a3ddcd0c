package main

import "tagsync/internal/cli"

func main() {
	cli.Execute()
}
