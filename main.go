package main

import "github.com/jsphweid/fingerbot/cmd"

func main() {
	cmd.Execute()
}
