//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed with lumen.toml.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "lumen.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed headless for a few frames, dumping BMPs into frames/.
func (Run) Headless() error {
	fmt.Println("Run headless engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "configs/headless.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
