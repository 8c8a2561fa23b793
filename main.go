// SPDX-License-Identifier: MPL-2.0

package main

import (
	cmd "modkit/cmd/modkit"
)

func main() {
	cmd.Execute()
}
