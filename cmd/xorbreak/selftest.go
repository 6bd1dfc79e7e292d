package main

import (
	"errors"
	"fmt"

	"github.com/sara-star-quant/xorbreak/pkg/selftest"
)

func selftestCommand(e *env, args []string) error {
	fs := newFlagSet(e, "selftest", "Run known-answer tests of the codecs, attacks and key derivation.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r := selftest.Run()
	checks := []struct {
		name   string
		passed bool
	}{
		{"codec", r.CodecPassed},
		{"xor", r.XorPassed},
		{"attack", r.AttackPassed},
		{"kdf", r.KDFPassed},
	}
	for _, c := range checks {
		status := "PASS"
		if !c.passed {
			status = "FAIL"
		}
		fmt.Fprintf(e.stdout, "%-7s %s\n", c.name, status)
	}

	if !r.Passed {
		for _, msg := range r.Errors {
			fmt.Fprintln(e.stderr, msg)
		}
		return errors.New("self-tests failed")
	}
	return nil
}
