package main

import "github.com/mvp-joe/test-patience/internal/cli"

func main() {
	cli.Execute()
}
