// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Version is overridden at build time with
// -ldflags "-X github.com/HPInc/azure-pipeline-studio-sub001/pkg/version.Version=..."
var Version = "0.0.0"

// RequireAtLeast fails when the running binary is older than minimum.
func RequireAtLeast(minimum string) error {
	return requireAtLeast(Version, minimum)
}

func requireAtLeast(current, minimum string) error {
	constraint, err := goversion.NewConstraint(">= " + minimum)
	if err != nil {
		return fmt.Errorf("Parsing required version '%s': %s", minimum, err)
	}

	currentVersion, err := goversion.NewVersion(current)
	if err != nil {
		return fmt.Errorf("Parsing version '%s': %s", current, err)
	}

	if !constraint.Check(currentVersion) {
		return fmt.Errorf("pipeline-expand version %s does not meet the minimum required version %s", current, minimum)
	}
	return nil
}
