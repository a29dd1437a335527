package ignore

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"sitesync/core/files"
	"sitesync/core/sitemap"
)

// Glob matches the relative path against a glob pattern.
func Glob(pattern string) (sitemap.Predicate, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
	}
	return sitemap.PredicateFunc(func(file files.SourceFile, _ sitemap.Host) (bool, error) {
		return g.Match(file.RelativePath), nil
	}), nil
}

// Regexp matches the relative path against a regular expression.
func Regexp(expr string) (sitemap.Predicate, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore expression %q: %w", expr, err)
	}
	return sitemap.PredicateFunc(func(file files.SourceFile, _ sitemap.Host) (bool, error) {
		return re.MatchString(file.RelativePath), nil
	}), nil
}

// Partials matches files whose name starts with an underscore.
func Partials() sitemap.Predicate {
	return sitemap.PredicateFunc(func(file files.SourceFile, _ sitemap.Host) (bool, error) {
		return strings.HasPrefix(path.Base(file.RelativePath), "_"), nil
	})
}

// Under matches files located below a source-relative directory.
func Under(dir string) sitemap.Predicate {
	prefix := strings.Trim(path.Clean("/"+dir), "/") + "/"
	return sitemap.PredicateFunc(func(file files.SourceFile, _ sitemap.Host) (bool, error) {
		return strings.HasPrefix(file.RelativePath, prefix), nil
	})
}

// Register installs the rules described by cfg.
func Register(rules *sitemap.RuleSet, cfg Config) error {
	if cfg.Partials {
		rules.Register("partials", Partials())
	}
	if dir := strings.TrimSpace(cfg.LayoutsDir); dir != "" {
		rules.Register("layouts", Under(dir))
	}
	for _, pattern := range cfg.Patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		p, err := Glob(pattern)
		if err != nil {
			return err
		}
		rules.Register("pattern:"+pattern, p)
	}
	return nil
}
