package main

import "github.com/pkruglov/abacgen/internal/cli"

func main() {
	cli.Execute()
}
