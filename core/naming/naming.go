package naming

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout keeps generated names sortable at one second resolution
const TimestampLayout = "2006-01-02-15-04-05"

// maxNameLength is the platform limit for job, model and endpoint config names
const maxNameLength = 63

// Generator builds unique, human readable resource names
type Generator struct {
	Now    func() time.Time
	Suffix func() string
}

// NewGenerator creates a generator using wall clock time and a random suffix
func NewGenerator() *Generator {
	return &Generator{
		Now:    time.Now,
		Suffix: randomSuffix,
	}
}

// Unique returns "<prefix>-<timestamp>-<suffix>". Two calls in the same second
// still differ through the suffix.
func (g *Generator) Unique(prefix string) string {
	stamp := g.Now().UTC().Format(TimestampLayout)
	suffix := g.Suffix()

	prefix = strings.Trim(prefix, "-")
	room := maxNameLength - len(stamp) - len(suffix) - 2
	if room < 1 {
		room = 1
	}
	if len(prefix) > room {
		prefix = strings.TrimRight(prefix[:room], "-")
	}

	return fmt.Sprintf("%s-%s-%s", prefix, stamp, suffix)
}

// Unique is a convenience wrapper around a default Generator
func Unique(prefix string) string {
	return NewGenerator().Unique(prefix)
}

func randomSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:6]
}
