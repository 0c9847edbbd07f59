package main

import "github.com/snoowatch/snoowatch/cmd"

func main() {
	cmd.Execute()
}
