//go:build !unix

package git

import "os/exec"

func setProcAttr(*exec.Cmd) {}
