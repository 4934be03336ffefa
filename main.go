// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/ovfconv/ovfconv/cmd/ovfconv"

func main() {
	cmd.Execute()
}
