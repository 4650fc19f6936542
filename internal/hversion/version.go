package hversion

// Version is set at build time with -ldflags "-X github.com/hephbuild/rwsched/internal/hversion.Version=..."
var Version = "dev"
