package main

import "github.com/yashshri2111/ysbot/cmd"

func main() {
	cmd.Execute()
}
