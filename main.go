package main

import "github.com/jjenkins/poliwatch/cmd"

func main() {
	cmd.Execute()
}
