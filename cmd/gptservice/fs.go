package main

import "github.com/davetashner/gptservice/internal/testable"

// cmdFS is the file system implementation used by CLI commands.
var cmdFS testable.FileSystem = testable.DefaultFS
