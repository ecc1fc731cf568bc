package types

// Version is the canonical project version.
// The CLI, the history frame format, and the archive record format share
// this version per the lockstep versioning policy.
const Version = "0.3.0"
