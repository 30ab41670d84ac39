package main

import "github.com/twiced-technology-gmbh/lifereset/cmd"

func main() {
	cmd.Execute()
}
