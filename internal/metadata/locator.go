package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gir2go.metadata")

// DefaultGirDirectories are searched after the configured include directories.
var DefaultGirDirectories = []string{
	"/usr/share/gir-1.0",
	"/usr/local/share/gir-1.0",
}

// Locator finds GIR files named "<Namespace>-<version>.gir" in a list of directories.
type Locator struct {
	Directories []string
}

func NewLocator(directories ...string) *Locator {
	dirs := append([]string(nil), directories...)
	dirs = append(dirs, DefaultGirDirectories...)
	return &Locator{Directories: dirs}
}

// Locate returns the path of the GIR file for the given namespace. Without a
// requested version the newest available one is picked.
func (locator *Locator) Locate(namespace string, requested string) (string, error) {
	if locator == nil {
		return "", fmt.Errorf("no GIR directories configured")
	}

	for _, directory := range locator.Directories {
		if requested != "" {
			path := filepath.Join(directory, fmt.Sprintf("%s-%s.gir", namespace, requested))
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
			continue
		}

		if path, found := newestInDirectory(directory, namespace); found {
			return path, nil
		}
	}

	return "", fmt.Errorf("no GIR file for namespace %s (version %q) in %s", namespace, requested, strings.Join(locator.Directories, ", "))
}

func newestInDirectory(directory string, namespace string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(directory, namespace+"-*.gir"))
	if err != nil || len(matches) == 0 {
		return "", false
	}

	paths := make(map[*version.Version]string, len(matches))
	orderedVersions := make([]*version.Version, 0, len(matches))
	for _, match := range matches {
		versionString := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(match), namespace+"-"), ".gir")
		v, err := version.NewVersion(versionString)
		if err != nil {
			log.Debugf("ignoring %s: unparsable version %q", match, versionString)
			continue
		}
		paths[v] = match
		orderedVersions = append(orderedVersions, v)
	}
	if len(orderedVersions) == 0 {
		return "", false
	}

	sort.Sort(version.Collection(orderedVersions))
	return paths[orderedVersions[len(orderedVersions)-1]], true
}

// IsNewerThan reports whether an entity introduced in the given version is
// newer than the target. Empty or unparsable versions never are.
func IsNewerThan(introduced string, target *version.Version) bool {
	if introduced == "" || target == nil {
		return false
	}
	v, err := version.NewVersion(introduced)
	if err != nil {
		return false
	}
	return v.GreaterThan(target)
}
