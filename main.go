package main

import "github.com/spoolhq/spool/cmd"

func main() {
	cmd.Execute()
}
