// The main package for the teamlogos executable.
package main

import (
	"github.com/JakeFAU/team-logo-scraper/cmd"
)

func main() {
	cmd.Execute()
}
