package main

import "sitesync/cmd"

func main() {
	cmd.Execute()
}
