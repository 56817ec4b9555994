package main

import "github.com/mcoot/signupgate/internal/cli"

func main() {
	cli.Execute()
}
