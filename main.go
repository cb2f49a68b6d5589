// Package main provides the plowcrawl CLI entrypoint.
package main

import "os"

func main() {
	os.Exit(Execute())
}
