/*
Copyright © 2025 Authstack Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package main

import "github.com/halcyonops/authstack/cmd"

func main() {
	cmd.Execute()
}
