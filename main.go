package main

import "github.com/mcaldbick/RAM/cmd"

func main() {
	cmd.Execute()
}
