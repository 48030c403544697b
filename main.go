package main

import (
	"github.com/bulletproofpenguin/predictive-cache/cmd"
)

func main() {
	cmd.Execute()
}
