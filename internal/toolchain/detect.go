package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// Detect runs a version command (for example "mvn --version" or
// "go env GOVERSION") and extracts the first X.Y.Z it prints.
func Detect(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("no version command configured")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return "", fmt.Errorf("version command %q not found: %w", argv[0], err)
	}
	// #nosec G204 -- argv comes from the build descriptor, not remote input
	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("version command failed: %w", err)
	}
	v := parseVersionOutput(string(output))
	if v == "" {
		return "", fmt.Errorf("no version found in output %q", strings.TrimSpace(string(output)))
	}
	return v, nil
}

// parseVersionOutput extracts the numeric X.Y.Z from tool output such as
//
//	Apache Maven 3.9.6 (bc0240f3c744dd6b6ec2920b3cd08dcc295161ae)
//	go1.24.11
func parseVersionOutput(output string) string {
	matches := versionPattern.FindStringSubmatch(output)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}
