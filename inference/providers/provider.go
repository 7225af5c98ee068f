// Package providers - Provider catalog and availability negotiation.
package providers

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownProvider is returned for a provider alias that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNoProviders is returned when none of the requested providers is available.
	ErrNoProviders = errors.New("no requested provider is available")
)

// Prober reports the capability identifiers supported by the runtime.
type Prober interface {
	AvailableProviders() ([]string, error)
}

// Catalog answers which logical providers can run on this process. The
// availability set is captured once at construction and never refreshed.
type Catalog struct {
	available map[Name]bool
}

// NewCatalog queries the prober once.
//
// Arguments:
//   - prober: The runtime to query.
//
// Returns:
//   - *Catalog: The catalog with cached availability.
//   - error: An error if the runtime could not be queried.
func NewCatalog(prober Prober) (*Catalog, error) {
	capabilities, err := prober.AvailableProviders()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query available providers")
	}

	reported := make(map[string]bool, len(capabilities))
	for _, c := range capabilities {
		reported[c] = true
	}

	c := &Catalog{available: make(map[Name]bool, len(known))}
	for _, d := range known {
		c.available[d.Name] = reported[d.Capability]
	}
	return c, nil
}

// IsAvailable reports whether the runtime can use the provider.
func (c *Catalog) IsAvailable(name Name) bool {
	return c.available[name]
}

// Available returns the available providers in canonical order.
func (c *Catalog) Available() []Name {
	var out []Name
	for _, d := range known {
		if c.available[d.Name] {
			out = append(out, d.Name)
		}
	}
	return out
}

// Selection is the outcome of Intersect.
type Selection struct {
	// Providers are the requested providers that will be swept, in order.
	Providers []Name
	// Unavailable were requested but not reported by the runtime.
	Unavailable []Name
	// Excluded were dropped from a group request by the slow-compile policy.
	Excluded []Name
}

// Expand turns a request into logical provider names without consulting
// availability. A request is "all", "gpu", or a comma separated list of names.
// Group requests leave out slow-compiling providers unless includeSlow is set;
// naming such a provider explicitly always keeps it.
//
// Returns:
//   - []Name: The expanded names, deduplicated, in request order.
//   - []Name: Providers left out of a group by the slow-compile policy.
//   - error: ErrUnknownProvider listing the valid aliases.
func Expand(request string, includeSlow bool) ([]Name, []Name, error) {
	var names, excluded []Name
	seen := make(map[Name]bool)
	dropped := make(map[Name]bool)
	add := func(n Name) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	for _, part := range strings.Split(request, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		switch part {
		case "":
			continue
		case GroupAll, GroupGPU:
			for _, d := range known {
				if part == GroupGPU && d.Name == CPU {
					continue
				}
				if d.SlowCompile && !includeSlow {
					if !dropped[d.Name] {
						dropped[d.Name] = true
						excluded = append(excluded, d.Name)
					}
					continue
				}
				add(d.Name)
			}
		default:
			if _, ok := Lookup(Name(part)); !ok {
				return nil, nil, errors.Wrapf(ErrUnknownProvider,
					"provider %q is not registered (valid: %s)", part, strings.Join(ValidAliases(), ", "))
			}
			add(Name(part))
		}
	}

	if len(names) == 0 {
		return nil, nil, errors.Wrapf(ErrUnknownProvider,
			"empty provider request (valid: %s)", strings.Join(ValidAliases(), ", "))
	}
	return names, filterOut(excluded, seen), nil
}

// Intersect returns the requested providers that are also available.
//
// Arguments:
//   - request: "all", "gpu", or a comma separated list of provider names.
//   - includeSlow: Keep slow-compiling providers in group requests.
//
// Returns:
//   - Selection: The sweep providers plus what was dropped and why.
//   - error: ErrUnknownProvider for bad aliases, ErrNoProviders when nothing remains.
func (c *Catalog) Intersect(request string, includeSlow bool) (Selection, error) {
	names, excluded, err := Expand(request, includeSlow)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{Excluded: excluded}
	for _, n := range names {
		if c.available[n] {
			sel.Providers = append(sel.Providers, n)
		} else {
			sel.Unavailable = append(sel.Unavailable, n)
		}
	}

	if len(sel.Providers) == 0 {
		return sel, errors.Wrapf(ErrNoProviders, "requested %q, runtime offers %s", request, joinNames(c.Available()))
	}
	return sel, nil
}

// ValidAliases lists every accepted provider alias.
func ValidAliases() []string {
	out := make([]string, 0, len(known)+2)
	for _, d := range known {
		out = append(out, string(d.Name))
	}
	return append(out, GroupGPU, GroupAll)
}

func filterOut(names []Name, seen map[Name]bool) []Name {
	var out []Name
	for _, n := range names {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}

func joinNames(names []Name) string {
	if len(names) == 0 {
		return "none"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
