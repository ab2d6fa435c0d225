package main

import "github.com/jcdickinson/rustdown/cmd"

func main() {
	cmd.Execute()
}
