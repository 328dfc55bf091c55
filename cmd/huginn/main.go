package main

import "github.com/blacktop/huginn/cmd/huginn/cmd"

func main() {
	cmd.Execute()
}
