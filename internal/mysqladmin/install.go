package mysqladmin

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Installation is one usable MySQL/MariaDB installation found on the host.
type Installation struct {
	Name       string
	Root       string
	ClientPath string
	DumpPath   string
	ServerPath string
}

// candidateRoot pairs a display name with the bin directory to probe.
type candidateRoot struct {
	name string
	bin  string
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// wellKnownRoots lists the installation layouts probed by discovery:
// the package-manager location plus the common bundled stacks.
func wellKnownRoots() []candidateRoot {
	if runtime.GOOS == "windows" {
		roots := []candidateRoot{
			{name: "XAMPP", bin: `C:\xampp\mysql\bin`},
			{name: "WAMP", bin: `C:\wamp64\bin\mysql`},
			{name: "Laragon", bin: `C:\laragon\bin\mysql`},
			{name: "MySQL Server", bin: `C:\Program Files\MySQL`},
		}
		return expandVersionedRoots(roots)
	}

	return []candidateRoot{
		{name: "system", bin: "/usr/bin"},
		{name: "XAMPP", bin: "/opt/lampp/bin"},
	}
}

// expandVersionedRoots descends one level into roots that hold per-version
// subdirectories (WAMP and the MySQL Server installer lay out
// mysql<version>\bin).
func expandVersionedRoots(roots []candidateRoot) []candidateRoot {
	var out []candidateRoot
	for _, root := range roots {
		if root.name == "XAMPP" || root.name == "Laragon" {
			out = append(out, root)
			continue
		}

		entries, err := os.ReadDir(root.bin)
		if err != nil {
			out = append(out, root)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			out = append(out, candidateRoot{
				name: root.name,
				bin:  filepath.Join(root.bin, entry.Name(), "bin"),
			})
		}
	}
	return out
}

// Discover returns the installations that contain a working client binary.
// extraPath, when non-empty, is probed first as an operator-supplied
// installation directory.
func Discover(extraPath string) []Installation {
	roots := wellKnownRoots()
	if extraPath != "" {
		roots = append([]candidateRoot{{name: "custom", bin: extraPath}}, roots...)
	}
	return discoverIn(roots)
}

func discoverIn(roots []candidateRoot) []Installation {
	var found []Installation
	seen := make(map[string]struct{})

	for _, root := range roots {
		client := filepath.Join(root.bin, executableName("mysql"))
		if !isExecutableFile(client) {
			continue
		}
		if _, dup := seen[client]; dup {
			continue
		}
		seen[client] = struct{}{}

		inst := Installation{
			Name:       root.name,
			Root:       root.bin,
			ClientPath: client,
		}
		if dump := filepath.Join(root.bin, executableName("mysqldump")); isExecutableFile(dump) {
			inst.DumpPath = dump
		}
		if server := filepath.Join(root.bin, executableName("mysqld")); isExecutableFile(server) {
			inst.ServerPath = server
		}
		found = append(found, inst)
	}

	// Fall back to whatever is on PATH when no directory matched.
	if len(found) == 0 {
		if client, err := exec.LookPath(executableName("mysql")); err == nil {
			inst := Installation{Name: "PATH", Root: filepath.Dir(client), ClientPath: client}
			if dump, err := exec.LookPath(executableName("mysqldump")); err == nil {
				inst.DumpPath = dump
			}
			if server, err := exec.LookPath(executableName("mysqld")); err == nil {
				inst.ServerPath = server
			}
			found = append(found, inst)
		}
	}

	return found
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}
