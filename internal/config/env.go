// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/davetashner/gptservice/internal/llm"
)

// DotEnvFile is the dotenv file loaded from the working directory.
const DotEnvFile = ".env"

// GenericAPIKeyEnvVar is consulted when the provider-specific variable is
// unset.
const GenericAPIKeyEnvVar = "GPTSERVICE_API_KEY"

// LoadDotEnv loads variables from the dotenv file at path into the process
// environment. Variables already set are not overridden. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ResolveAPIKey returns the credential for provider. An explicit value wins;
// otherwise the provider's environment variable is read, then
// GenericAPIKeyEnvVar. The result may be empty, in which case the client
// constructor reports the missing credential.
func ResolveAPIKey(provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(llm.APIKeyEnvVar(provider)); v != "" {
		return v
	}
	return os.Getenv(GenericAPIKeyEnvVar)
}
