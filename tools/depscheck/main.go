package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const modulePath = "github.com/discordwell/CnC-Generals-Zero-Hour-sub000"

// layerRules pins the dependency direction between the core packages. The
// engine consumes entity and terrain data through interfaces it defines
// itself, so nav must never import the registry; mapdata sits below both.
var layerRules = map[string][]string{
	modulePath + "/internal/nav": {
		modulePath + "/internal/registry",
		modulePath + "/cmd",
	},
	modulePath + "/internal/mapdata": {
		modulePath + "/internal/nav",
		modulePath + "/internal/registry",
		modulePath + "/logging",
	},
}

type packageInfo struct {
	ImportPath string
	Imports    []string
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	decoder := json.NewDecoder(bytes.NewReader(output))

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
			os.Exit(1)
		}

		for root, forbidden := range layerRules {
			if !strings.HasPrefix(pkg.ImportPath, root) {
				continue
			}
			for _, imp := range pkg.Imports {
				for _, banned := range forbidden {
					if strings.HasPrefix(imp, banned) {
						violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}
