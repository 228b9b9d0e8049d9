package main

import "github.com/user/sbsmap/cmd"

func main() {
	cmd.Execute()
}
