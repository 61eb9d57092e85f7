package pathnorm

import (
	"strings"
)

// DefaultBashRoot is where Git for Windows installs its bash by default.
const DefaultBashRoot = "C:/Program Files/Git"

// Shell describes how the invoking shell mangles a bare "/" argument.
type Shell interface {
	// RootPrefix is what the shell substitutes for "/", or "" if nothing.
	RootPrefix() string
	Name() string
}

// GitBashShell implements Shell for the MSYS2 bash shipped with Git for Windows.
type GitBashShell struct {
	InstallDir string
}

func (s *GitBashShell) RootPrefix() string {
	return s.InstallDir
}

func (s *GitBashShell) Name() string {
	return "git-bash"
}

// NativeShell implements Shell for cmd, PowerShell and POSIX shells, which
// pass "/" through untouched.
type NativeShell struct{}

func (s *NativeShell) RootPrefix() string {
	return ""
}

func (s *NativeShell) Name() string {
	return "native"
}

// DetectShell identifies the invoking shell from its environment.
func DetectShell(getenv func(string) string) Shell {
	// MSYS2 sets MSYSTEM (MINGW64, UCRT64, ...) in every Git Bash session.
	if getenv("MSYSTEM") == "" {
		return &NativeShell{}
	}
	// EXEPATH is the Git install dir, or its bin/ when launched via bash.exe.
	dir := strings.ReplaceAll(getenv("EXEPATH"), `\`, "/")
	dir = strings.TrimSuffix(strings.TrimRight(dir, "/"), "/bin")
	if dir == "" {
		dir = DefaultBashRoot
	}
	return &GitBashShell{InstallDir: dir}
}

// DetectBashRoot returns the root prefix to strip: the configured value if
// set, otherwise whatever the detected shell injects, otherwise the Git for
// Windows default.
func DetectBashRoot(configured string, getenv func(string) string) string {
	if configured != "" {
		return configured
	}
	if prefix := DetectShell(getenv).RootPrefix(); prefix != "" {
		return prefix
	}
	return DefaultBashRoot
}

// DetectPrimaryVolume reads the system drive from the environment.
func DetectPrimaryVolume(getenv func(string) string) string {
	drive := strings.TrimSuffix(strings.TrimSpace(getenv("SystemDrive")), ":")
	if len([]rune(drive)) != 1 {
		return DefaultPrimaryVolume
	}
	return drive
}
