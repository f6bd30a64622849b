//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the meshctm binary into ./bin.
func (Build) CLI() error {
	out := filepath.Join("bin", "meshctm")
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	fmt.Println("Building", out)
	_, err := executeCmd("go", withArgs("build", "-trimpath", "-ldflags", versionFlags(), "-o", out, "./cmd/meshctm"), withStream())
	return err
}

// Installs meshctm into GOBIN.
func (Build) Install() error {
	_, err := executeCmd("go", withArgs("install", "-trimpath", "-ldflags", versionFlags(), "./cmd/meshctm"), withStream())
	return err
}
