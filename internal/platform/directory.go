package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/adamavenir/tern/internal/types"
	"github.com/gobwas/glob"
)

// Built-in section names.
const (
	SectionChannels   = "Channels"
	SectionNew        = "New"
	SectionUnfollowed = "Unfollowed"
)

// Directory turns a flat channel list into sectioned display rows. Channels
// whose name or key matches a hide pattern are left out; collapsed sections
// keep their header but list no channels.
type Directory struct {
	mu        sync.Mutex
	hide      []glob.Glob
	collapsed map[string]bool
}

// NewDirectory compiles hide patterns such as "bot-*" or "slack:*".
func NewDirectory(hide, collapsed []string) (*Directory, error) {
	d := &Directory{collapsed: map[string]bool{}}
	for _, pattern := range hide {
		g, err := glob.Compile(pattern, ':')
		if err != nil {
			return nil, fmt.Errorf("hide pattern %q: %w", pattern, err)
		}
		d.hide = append(d.hide, g)
	}
	for _, name := range collapsed {
		d.collapsed[name] = true
	}
	return d, nil
}

// Toggle flips a section between collapsed and expanded.
func (d *Directory) Toggle(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collapsed[name] {
		delete(d.collapsed, name)
	} else {
		d.collapsed[name] = true
	}
}

// Collapsed reports whether a section is collapsed.
func (d *Directory) Collapsed(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.collapsed[name]
}

// Hidden reports whether a channel matches a hide pattern.
func (d *Directory) Hidden(ch types.Channel) bool {
	for _, g := range d.hide {
		if g.Match(ch.Name) || g.Match(ch.Key()) {
			return true
		}
	}
	return false
}

// Build returns the visible channels and their display rows. Section order
// is Channels, named groups alphabetically, New, Unfollowed; empty sections
// are omitted.
func (d *Directory) Build(all []types.Channel) Listing {
	d.mu.Lock()
	defer d.mu.Unlock()

	sections := map[string][]types.Channel{}
	var groups []string
	for _, ch := range all {
		if d.Hidden(ch) {
			continue
		}
		name := sectionOf(ch)
		if _, seen := sections[name]; !seen && !isBuiltinSection(name) {
			groups = append(groups, name)
		}
		sections[name] = append(sections[name], ch)
	}
	sort.Strings(groups)

	order := append([]string{SectionChannels}, groups...)
	order = append(order, SectionNew, SectionUnfollowed)

	var listing Listing
	for _, name := range order {
		channels := sections[name]
		if len(channels) == 0 {
			continue
		}
		collapsed := d.collapsed[name]
		listing.DisplayItems = append(listing.DisplayItems, types.DisplayItem{
			Kind:      types.DisplayHeader,
			Label:     name,
			Collapsed: collapsed,
		})
		if collapsed {
			continue
		}
		for _, ch := range channels {
			listing.DisplayItems = append(listing.DisplayItems, types.DisplayItem{
				Kind:         types.DisplayChannel,
				Label:        ch.Label(),
				ChannelIndex: len(listing.Channels),
			})
			listing.Channels = append(listing.Channels, ch)
		}
	}
	return listing
}

func sectionOf(ch types.Channel) string {
	switch {
	case ch.Unfollowed:
		return SectionUnfollowed
	case ch.New:
		return SectionNew
	case ch.Group != "":
		return ch.Group
	default:
		return SectionChannels
	}
}

func isBuiltinSection(name string) bool {
	return name == SectionChannels || name == SectionNew || name == SectionUnfollowed
}
