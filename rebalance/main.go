// Package main is the entry point of the rebalance command line tool.
package main

import "github.com/sarchlab/rebalance/rebalance/cmd"

func main() {
	cmd.Execute()
}
