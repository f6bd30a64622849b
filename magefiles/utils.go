//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
)

const versionPkg = "github.com/samcharles93/meshctm/internal/version"

type cmdOptions struct {
	args   []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	fmt.Printf("Executing: %s %s\n", command, strings.Join(opts.args, " "))
	cmd := exec.Command(command, opts.args...)

	streamOutput := mg.Verbose() || opts.stream

	var b bytes.Buffer
	if streamOutput {
		cmd.Stdout = io.MultiWriter(&b, os.Stdout)
		cmd.Stderr = io.MultiWriter(&b, os.Stderr)
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}
	if err := cmd.Run(); err != nil {
		if !streamOutput {
			fmt.Println("... failed command output:")
			fmt.Println(b.String())
		}
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	return b.String(), nil
}

// versionFlags stamps the version package from git. Outside a checkout the
// build falls back to the module build info.
func versionFlags() string {
	flags := []string{"-s", "-w", "-X", versionPkg + ".BuildTime=" + time.Now().UTC().Format(time.RFC3339)}
	if out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output(); err == nil {
		flags = append(flags, "-X", versionPkg+".Version="+strings.TrimSpace(string(out)))
	}
	if out, err := exec.Command("git", "rev-parse", "HEAD").Output(); err == nil {
		flags = append(flags, "-X", versionPkg+".Commit="+strings.TrimSpace(string(out)))
	}
	return strings.Join(flags, " ")
}
