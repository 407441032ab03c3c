// SPDX-License-Identifier: MIT
//go:build !unix

package gitx

import "os/exec"

func detachProcessGroup(*exec.Cmd) {}
