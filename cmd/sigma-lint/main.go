package main

import "github.com/markuskont/go-sigma-rule-lint/cmd"

func main() {
	cmd.Execute()
}
