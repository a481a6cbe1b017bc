package version

// Version is the archivemaster version, injected at build time.
var Version = "devel"

// Commit is the git commit the binary was built from, injected at build time.
var Commit = ""
