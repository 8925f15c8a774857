// Package columns rewrites dataset column names into lowercase ASCII
// snake_case identifiers that Athena and Glue accept.
package columns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/dataset"
)

var ErrDuplicateColumn = errors.New("duplicate column after normalization")

// CollisionPolicy decides what happens when two source columns normalize to
// the same name.
type CollisionPolicy int

const (
	// Suffix keeps the first column as is and renames later ones name_1, name_2, ...
	Suffix CollisionPolicy = iota
	// Fail returns ErrDuplicateColumn.
	Fail
)

var (
	// Only lowercase forms are listed; names are lowercased before folding.
	folder = strings.NewReplacer(
		"ñ", "ni",
		"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
		"è", "e", "é", "e", "ê", "e", "ë", "e",
		"ì", "i", "í", "i", "î", "i", "ï", "i",
		"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o",
		"ù", "u", "ú", "u", "û", "u", "ü", "u",
	)

	wordRe       = regexp.MustCompile(`\w+`)
	symbolRe     = regexp.MustCompile(`[- .²º/();]`)
	underscoreRe = regexp.MustCompile(`_+`)
)

// NormalizeName applies, in order: lowercase, diacritic folding, word
// tokenization, symbol replacement, underscore collapse and a single
// trailing then leading underscore strip. Word characters are ASCII
// [0-9A-Za-z_], so anything not folded to ASCII is dropped as a separator.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = folder.Replace(s)
	s = strings.Join(wordRe.FindAllString(s, -1), " ")
	s = symbolRe.ReplaceAllString(s, "_")
	s = underscoreRe.ReplaceAllString(s, "_")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "_")
	s = strings.TrimPrefix(s, "_")
	return s
}

type options struct {
	policy CollisionPolicy
}

type Option func(*options)

func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(o *options) { o.policy = p }
}

// Normalize renames every column of ds in place. Values are not touched.
// A name that normalizes to nothing becomes unnamed_<position>.
func Normalize(ds *dataset.Dataset, opts ...Option) error {
	o := options{policy: Suffix}
	for _, fn := range opts {
		fn(&o)
	}

	names := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		n := NormalizeName(c.Name)
		if n == "" {
			n = fmt.Sprintf("unnamed_%d", i)
		}
		names[i] = n
	}

	resolved, err := resolveCollisions(ds, names, o.policy)
	if err != nil {
		return err
	}
	for i, c := range ds.Columns {
		c.Name = resolved[i]
	}
	return nil
}

func resolveCollisions(ds *dataset.Dataset, names []string, policy CollisionPolicy) ([]string, error) {
	out := make([]string, len(names))
	used := make(map[string]int, len(names))
	for _, n := range names {
		used[n]++
	}

	taken := make(map[string]bool, len(names))
	for i, n := range names {
		if !taken[n] {
			taken[n] = true
			out[i] = n
			continue
		}
		if policy == Fail {
			return nil, fmt.Errorf("%w: %q and %q both become %q",
				ErrDuplicateColumn, firstSource(ds, names, n), ds.Columns[i].Name, n)
		}
		candidate := n
		for k := 1; taken[candidate] || (candidate != n && used[candidate] > 0); k++ {
			candidate = fmt.Sprintf("%s_%d", n, k)
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out, nil
}

func firstSource(ds *dataset.Dataset, names []string, n string) string {
	for i, m := range names {
		if m == n {
			return ds.Columns[i].Name
		}
	}
	return ""
}
