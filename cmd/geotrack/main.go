package main

import "github.com/benmeehan/geotrack/internal/cli"

func main() {
	cli.Execute()
}
