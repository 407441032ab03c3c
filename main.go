// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/fleetpull/cmd/fleetpull"

var execute = fleetpull.Execute

func main() {
	execute()
}
