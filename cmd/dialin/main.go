package main

import "tangled.org/arabica.social/dialin/internal/cli"

func main() {
	cli.Execute()
}
