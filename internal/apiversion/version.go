// Package apiversion models URL-segment API versions ("/api/v1", "/api/v2-beta") and
// the supported/deprecated sets reported to clients.
package apiversion

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	HeaderSupported  = "api-supported-versions"
	HeaderDeprecated = "api-deprecated-versions"
)

var ErrInvalidVersion = errors.New("invalid api version")

type Version struct {
	Major  int
	Minor  int
	Status string
}

func New(major, minor int) Version {
	return Version{Major: major, Minor: minor}
}

// Parse accepts "1", "1.0", "v1", "v1.1" and an optional "-status" suffix.
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if raw == "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	var v Version
	if i := strings.Index(raw, "-"); i >= 0 {
		v.Status = raw[i+1:]
		raw = raw[:i]
		if v.Status == "" {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
	}

	parts := strings.Split(raw, ".")
	if len(parts) > 2 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	v.Major = major

	if len(parts) == 2 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil || minor < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		v.Minor = minor
	}

	return v, nil
}

func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders "major.minor[-status]", the form used in the reporting headers.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d", v.Major, v.Minor)
	if v.Status != "" {
		s += "-" + v.Status
	}
	return s
}

// GroupName renders "v{major}[.minor][-status]"; the minor part is omitted when zero.
// It names both the URL segment and the documentation group.
func (v Version) GroupName() string {
	s := "v" + strconv.Itoa(v.Major)
	if v.Minor != 0 {
		s += "." + strconv.Itoa(v.Minor)
	}
	if v.Status != "" {
		s += "-" + v.Status
	}
	return s
}

func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	case v.Status == o.Status:
		return 0
	case v.Status == "":
		return 1
	case o.Status == "":
		return -1
	default:
		return strings.Compare(v.Status, o.Status)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// Description is what is known about one registered version.
type Description struct {
	Version    Version
	Deprecated bool
}

func (d Description) GroupName() string {
	return d.Version.GroupName()
}

// Set collects the versions the application exposes. Safe for concurrent use.
type Set struct {
	mu       sync.RWMutex
	versions map[string]Description
}

func NewSet() *Set {
	return &Set{versions: make(map[string]Description)}
}

// Add registers v. A version stays deprecated once any registration marks it so.
func (s *Set) Add(v Version, deprecated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := v.GroupName()
	d, ok := s.versions[key]
	if !ok {
		d = Description{Version: v}
	}
	d.Deprecated = d.Deprecated || deprecated
	s.versions[key] = d
}

func (s *Set) Lookup(groupName string) (Description, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.versions[groupName]
	return d, ok
}

func (s *Set) IsDeprecated(v Version) bool {
	d, ok := s.Lookup(v.GroupName())
	return ok && d.Deprecated
}

// Descriptions returns all versions in ascending order.
func (s *Set) Descriptions() []Description {
	s.mu.RLock()
	out := make([]Description, 0, len(s.versions))
	for _, d := range s.versions {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Version.Compare(out[j].Version) < 0
	})
	return out
}

// Supported lists the versions that are not deprecated.
func (s *Set) Supported() []Version {
	var out []Version
	for _, d := range s.Descriptions() {
		if !d.Deprecated {
			out = append(out, d.Version)
		}
	}
	return out
}

func (s *Set) Deprecated() []Version {
	var out []Version
	for _, d := range s.Descriptions() {
		if d.Deprecated {
			out = append(out, d.Version)
		}
	}
	return out
}

func Join(versions []Version) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
