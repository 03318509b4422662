package compiler_test

import (
	"os"
	"path/filepath"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
)

// testdataDir returns the directory of the Kitten programs used by the
// tests. In Bazel tests it is found through the runfiles, otherwise next to
// the go.mod of the module.
func testdataDir() string {
	if hello, err := bazel.Runfile("testdata/Hello.kit"); err == nil {
		return filepath.Dir(hello)
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "testdata")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
