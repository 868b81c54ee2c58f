// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/skillforge/skillforge/cmd/skillforge"

func main() {
	cmd.Execute()
}
